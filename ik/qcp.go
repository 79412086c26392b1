package ik

import (
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// defaultQCPEvalPrecision and defaultQCPEigenvectorPrecision bound the
// Newton iteration and the adjugate-column norm check respectively.
// Grounded on the original implementation's QCP defaults.
const (
	defaultQCPEvalPrecision       = float32(1e-11)
	defaultQCPEigenvectorPrecision = float32(1e-6)
	defaultQCPMaxIterations       = 5
)

// QCP solves the weighted-point-cloud rigid registration problem: given
// two matched sets of points (moved and target) and a per-point weight,
// find the rotation that best aligns moved onto target in the
// least-squares sense. This is the core numeric primitive the bone
// segment solver calls once per bone, per iteration, with the bone's
// current and pinned effector headings. Grounded on the original
// implementation's QCP (itself after Liu & Theobald's Quaternion
// Characteristic Polynomial method).
type QCP struct {
	evalPrec float32
	evecPrec float32
	maxIter  int

	moved  []math32.Vector3
	target []math32.Vector3
	weight []float32
	wsum   float32

	movedCenter  math32.Vector3
	targetCenter math32.Vector3

	sxx, sxy, sxz float32
	syx, syy, syz float32
	szx, szy, szz float32

	e0 float32

	sxzpszx, syzpszy, sxypsyx float32
	syzmszy, sxzmszx, sxymsyx float32
	sxxpsyy, sxxmsyy          float32

	mxEigenV float32

	rmsdCalculated          bool
	transformationCalculated bool
	rmsd                    float32

	// converged reports whether the last solveEigenvalue call's Newton
	// iteration satisfied evalPrec before exhausting maxIter.
	converged bool
}

// NewQCP creates a QCP solver with the original implementation's default
// precision and iteration bounds.
func NewQCP() *QCP {

	return &QCP{
		evalPrec: defaultQCPEvalPrecision,
		evecPrec: defaultQCPEigenvectorPrecision,
		maxIter:  defaultQCPMaxIterations,
	}
}

// Set installs a new pair of weighted point clouds, translating both to
// their weighted centroid if translate is true (the registration then
// solves for rotation only, which is all a bone's local frame needs:
// position is handled by the parent chain).
func (q *QCP) Set(moved, target []math32.Vector3, weight []float32, translate bool) {

	q.moved = moved
	q.target = target
	q.weight = weight
	q.rmsdCalculated = false
	q.transformationCalculated = false
	q.converged = false

	if translate {
		q.movedCenter = weightedCenter(moved, weight)
		q.targetCenter = weightedCenter(target, weight)
		q.wsum = 0
		for _, w := range weight {
			q.wsum += w
		}
		if len(weight) == 0 {
			q.wsum = float32(len(moved))
		}
		translateAll(q.moved, q.movedCenter, -1)
		translateAll(q.target, q.targetCenter, -1)
	} else {
		q.wsum = 0
		if len(weight) > 0 {
			for _, w := range weight {
				q.wsum += w
			}
		} else {
			q.wsum = float32(len(moved))
		}
	}
}

func weightedCenter(points []math32.Vector3, weight []float32) math32.Vector3 {

	var center math32.Vector3
	var wsum float32
	if len(weight) > 0 {
		for i, p := range points {
			center.X += p.X * weight[i]
			center.Y += p.Y * weight[i]
			center.Z += p.Z * weight[i]
			wsum += weight[i]
		}
	} else {
		for _, p := range points {
			center.X += p.X
			center.Y += p.Y
			center.Z += p.Z
		}
		wsum = float32(len(points))
	}
	if wsum == 0 {
		return center
	}
	center.X /= wsum
	center.Y /= wsum
	center.Z /= wsum
	return center
}

func translateAll(points []math32.Vector3, by math32.Vector3, sign float32) {

	for i := range points {
		points[i].X += by.X * sign
		points[i].Y += by.Y * sign
		points[i].Z += by.Z * sign
	}
}

// GetTranslation returns the target centroid minus the moved centroid,
// valid only after Set was called with translate true.
func (q *QCP) GetTranslation() math32.Vector3 {

	var t math32.Vector3
	t.SubVectors(&q.targetCenter, &q.movedCenter)
	return t
}

// GetRMSD returns the root-mean-square deviation between the (possibly
// centroid-translated) point sets after optimal rotation, computing it
// lazily.
func (q *QCP) GetRMSD() float32 {

	if !q.rmsdCalculated {
		q.calcRMSDAndInnerProduct()
		q.rmsdCalculated = true
	}
	return q.rmsd
}

func (q *QCP) calcRMSDAndInnerProduct() {

	if len(q.moved) == 1 {
		q.rmsd = q.moved[0].DistanceTo(&q.target[0])
		return
	}
	q.innerProduct(q.moved, q.target)
	q.solveEigenvalue()
}

// innerProduct accumulates the weighted cross-covariance matrix between
// coords1 and coords2 and the combined sum-of-squares e0, exactly as the
// original implementation's QCP::inner_product.
func (q *QCP) innerProduct(coords1, coords2 []math32.Vector3) {

	var g1, g2 float32
	q.sxx, q.sxy, q.sxz = 0, 0, 0
	q.syx, q.syy, q.syz = 0, 0, 0
	q.szx, q.szy, q.szz = 0, 0, 0

	hasWeight := len(q.weight) > 0
	for i := range coords1 {
		w := float32(1)
		if hasWeight {
			w = q.weight[i]
		}
		x1 := w * coords1[i].X
		y1 := w * coords1[i].Y
		z1 := w * coords1[i].Z

		g1 += x1*coords1[i].X + y1*coords1[i].Y + z1*coords1[i].Z

		x2 := coords2[i].X
		y2 := coords2[i].Y
		z2 := coords2[i].Z

		g2 += w * (x2*x2 + y2*y2 + z2*z2)

		q.sxx += x1 * x2
		q.sxy += x1 * y2
		q.sxz += x1 * z2

		q.syx += y1 * x2
		q.syy += y1 * y2
		q.syz += y1 * z2

		q.szx += z1 * x2
		q.szy += z1 * y2
		q.szz += z1 * z2
	}

	q.e0 = (g1 + g2) * 0.5
}

// solveEigenvalue runs the Newton iteration on the QCP characteristic
// polynomial to find the largest eigenvalue of the key 4x4 matrix, then
// derives the RMSD from it. Grounded on the original implementation's
// QCP::calc_rmsd(real_t).
func (q *QCP) solveEigenvalue() {

	sxx2 := q.sxx * q.sxx
	syy2 := q.syy * q.syy
	szz2 := q.szz * q.szz

	sxy2 := q.sxy * q.sxy
	syz2 := q.syz * q.syz
	sxz2 := q.sxz * q.sxz

	syx2 := q.syx * q.syx
	szy2 := q.szy * q.szy
	szx2 := q.szx * q.szx

	syzSzymSyySzz2 := 2 * (q.syz*q.szy - q.syy*q.szz)
	sxx2Syy2Szz2Syz2Szy2 := syy2 + szz2 - sxx2 + syz2 + szy2

	c2 := -2 * (sxx2 + syy2 + szz2 + sxy2 + syx2 + sxz2 + szx2 + syz2 + szy2)
	c1 := 8 * (q.sxx*q.syz*q.szy + q.syy*q.szx*q.sxz + q.szz*q.sxy*q.syx -
		q.sxx*q.syy*q.szz - q.syz*q.szx*q.sxy - q.szy*q.syx*q.sxz)

	q.sxzpszx = q.sxz + q.szx
	q.syzpszy = q.syz + q.szy
	q.sxypsyx = q.sxy + q.syx
	q.syzmszy = q.syz - q.szy
	q.sxzmszx = q.sxz - q.szx
	q.sxymsyx = q.sxy - q.syx
	q.sxxpsyy = q.sxx + q.syy
	q.sxxmsyy = q.sxx - q.syy

	sxy2Sxz2Syx2Szx2 := sxy2 + sxz2 - syx2 - szx2

	c0 := sxy2Sxz2Syx2Szx2*sxy2Sxz2Syx2Szx2 +
		(sxx2Syy2Szz2Syz2Szy2+syzSzymSyySzz2)*(sxx2Syy2Szz2Syz2Szy2-syzSzymSyySzz2) +
		(-(q.sxzpszx)*(q.syzmszy)+(q.sxymsyx)*(q.sxxmsyy-q.szz))*
			(-(q.sxzmszx)*(q.syzpszy)+(q.sxymsyx)*(q.sxxmsyy+q.szz)) +
		(-(q.sxzpszx)*(q.syzpszy)-(q.sxypsyx)*(q.sxxpsyy-q.szz))*
			(-(q.sxzmszx)*(q.syzmszy)-(q.sxypsyx)*(q.sxxpsyy+q.szz)) +
		(+(q.sxypsyx)*(q.syzpszy)+(q.sxzpszx)*(q.sxxmsyy+q.szz))*
			(-(q.sxymsyx)*(q.syzmszy)+(q.sxzpszx)*(q.sxxpsyy+q.szz)) +
		(+(q.sxypsyx)*(q.syzmszy)+(q.sxzmszx)*(q.sxxmsyy-q.szz))*
			(-(q.sxymsyx)*(q.syzpszy)+(q.sxzmszx)*(q.sxxpsyy-q.szz))

	q.mxEigenV = q.e0
	q.converged = false

	for i := 1; i < q.maxIter+1; i++ {
		oldg := q.mxEigenV
		y := 1 / q.mxEigenV
		y2 := y * y
		delta := (((y*c0+c1)*y+c2)*y2 + 1) / ((y*c1+2*c2)*y2*y + 4)
		q.mxEigenV -= delta

		if math32.Abs(q.mxEigenV-oldg) < math32.Abs(q.evalPrec*q.mxEigenV) {
			q.converged = true
			break
		}
	}

	p := q.wsum
	if p <= 0 {
		p = float32(len(q.moved))
	}
	q.rmsd = math32.Sqrt(math32.Abs(2 * (q.e0 - q.mxEigenV) / p))
}

// Converged reports whether the most recent eigenvalue solve's Newton
// iteration satisfied its precision bound before exhausting maxIter.
func (q *QCP) Converged() bool {

	return q.converged
}

// GetRotation returns the optimal rotation taking moved onto target,
// computing RMSD first if necessary (the eigenvalue it produces is
// needed for the adjugate-matrix eigenvector extraction below).
// Grounded on the original implementation's QCP::calc_rotation.
func (q *QCP) GetRotation() math32.Quaternion {

	q.GetRMSD()

	var result math32.Quaternion
	result.SetIdentity()

	if len(q.moved) == 1 {
		var from, to math32.Vector3
		from = q.moved[0]
		to = q.target[0]
		from.Normalize()
		to.Normalize()
		result.SetFromUnitVectors(&from, &to)
		q.transformationCalculated = true
		return result
	}

	a11 := q.sxxpsyy + q.szz - q.mxEigenV
	a12 := q.syzmszy
	a13 := -q.sxzmszx
	a14 := q.sxymsyx
	a21 := q.syzmszy
	a22 := q.sxxmsyy - q.szz - q.mxEigenV
	a23 := q.sxypsyx
	a24 := q.sxzpszx
	a31 := a13
	a32 := a23
	a33 := q.syy - q.sxx - q.szz - q.mxEigenV
	a34 := q.syzpszy
	a41 := a14
	a42 := a24
	a43 := a34
	a44 := q.szz - q.sxxpsyy - q.mxEigenV

	a3344_4334 := a33*a44 - a43*a34
	a3244_4234 := a32*a44 - a42*a34
	a3243_4233 := a32*a43 - a42*a33
	a3143_4133 := a31*a43 - a41*a33
	a3144_4134 := a31*a44 - a41*a34
	a3142_4132 := a31*a42 - a41*a32

	q1 := a22*a3344_4334 - a23*a3244_4234 + a24*a3243_4233
	q2 := -a21*a3344_4334 + a23*a3144_4134 - a24*a3143_4133
	q3 := a21*a3244_4234 - a22*a3144_4134 + a24*a3142_4132
	q4 := -a21*a3243_4233 + a22*a3143_4133 - a23*a3142_4132

	qsqr := q1*q1 + q2*q2 + q3*q3 + q4*q4

	if qsqr < q.evecPrec {
		q1 = a12*a3344_4334 - a13*a3244_4234 + a14*a3243_4233
		q2 = -a11*a3344_4334 + a13*a3144_4134 - a14*a3143_4133
		q3 = a11*a3244_4234 - a12*a3144_4134 + a14*a3142_4132
		q4 = -a11*a3243_4233 + a12*a3143_4133 - a13*a3142_4132
		qsqr = q1*q1 + q2*q2 + q3*q3 + q4*q4

		if qsqr < q.evecPrec {
			a1324_1423 := a13*a24 - a14*a23
			a1224_1422 := a12*a24 - a14*a22
			a1223_1322 := a12*a23 - a13*a22
			a1124_1421 := a11*a24 - a14*a21
			a1123_1321 := a11*a23 - a13*a21
			a1122_1221 := a11*a22 - a12*a21

			q1 = a42*a1324_1423 - a43*a1224_1422 + a44*a1223_1322
			q2 = -a41*a1324_1423 + a43*a1124_1421 - a44*a1123_1321
			q3 = a41*a1224_1422 - a42*a1124_1421 + a44*a1122_1221
			q4 = -a41*a1223_1322 + a42*a1123_1321 - a43*a1122_1221
			qsqr = q1*q1 + q2*q2 + q3*q3 + q4*q4

			if qsqr < q.evecPrec {
				q1 = a32*a1324_1423 - a33*a1224_1422 + a34*a1223_1322
				q2 = -a31*a1324_1423 + a33*a1124_1421 - a34*a1123_1321
				q3 = a31*a1224_1422 - a32*a1124_1421 + a34*a1122_1221
				q4 = -a31*a1223_1322 + a32*a1123_1321 - a33*a1122_1221
				qsqr = q1*q1 + q2*q2 + q3*q3 + q4*q4

				if qsqr < q.evecPrec {
					// All three candidate adjugate columns degenerate: the
					// point clouds admit no well-defined rotation (e.g.
					// every weight is zero). Identity is the only sane
					// answer.
					q.transformationCalculated = true
					return result
				}
			}
		}
	}

	// prenormalize by the minimum component to avoid floating point
	// errors, per the original implementation.
	min := q1
	if q2 < min {
		min = q2
	}
	if q3 < min {
		min = q3
	}
	if q4 < min {
		min = q4
	}

	result.Set(q2/min, q3/min, q4/min, q1/min)
	result.Normalize()
	q.transformationCalculated = true
	return result
}

// WeightedSuperpose is a convenience entry point combining Set and
// GetRotation.
func (q *QCP) WeightedSuperpose(moved, target []math32.Vector3, weight []float32, translate bool) math32.Quaternion {

	q.Set(moved, target, weight, translate)
	return q.GetRotation()
}
