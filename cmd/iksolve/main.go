// This is a minimum iksolve application showing how to drive the solver
// against an in-memory skeleton and target set, with no rendering
// surface: it loads a yaml rig configuration, builds a synthetic
// three-bone arm, runs a handful of frames, and prints the resulting
// bone poses. For a real host, SkeletonProvider and TargetProvider
// are implemented against the host's own scene graph instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/V-Sekai/many-bone-ik-sub000/ik"
	"github.com/V-Sekai/many-bone-ik-sub000/ikconfig"
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// memSkeleton is a minimal in-memory SkeletonProvider over a flat bone
// list, standing in for a host's real scene-graph skeleton.
type memSkeleton struct {
	names   []string
	parents map[string]string
	local   map[string]ik.Transform
}

func newMemSkeleton() *memSkeleton {

	return &memSkeleton{
		parents: make(map[string]string),
		local:   make(map[string]ik.Transform),
	}
}

func (m *memSkeleton) addBone(name, parent string, origin math32.Vector3) {

	m.names = append(m.names, name)
	if parent != "" {
		m.parents[name] = parent
	}
	t := ik.NewTransform()
	t.Origin = origin
	m.local[name] = t
}

func (m *memSkeleton) BoneNames() []string { return m.names }

func (m *memSkeleton) ParentName(bone string) (string, bool) {

	p, ok := m.parents[bone]
	return p, ok
}

func (m *memSkeleton) RestLocalPose(bone string) (ik.Transform, bool) {

	t, ok := m.local[bone]
	return t, ok
}

func (m *memSkeleton) BonePose(bone string) (ik.Transform, bool) {

	t, ok := m.local[bone]
	return t, ok
}

func (m *memSkeleton) SetBonePose(bone string, t ik.Transform, strength float32, persistent bool) {

	if strength >= 1 {
		m.local[bone] = t
		return
	}
	cur := m.local[bone]
	cur.Origin.Lerp(&t.Origin, strength)
	m.local[bone] = cur
}

func (m *memSkeleton) GlobalTransform() ik.Transform { return ik.NewTransform() }

// memTargets resolves pin target handles (plain strings here) to fixed
// world transforms.
type memTargets struct {
	byName map[string]ik.Transform
}

func (t *memTargets) ResolveGlobalTransform(handle ik.TargetHandle) (ik.Transform, bool) {

	name, ok := handle.(string)
	if !ok {
		return ik.Transform{}, false
	}
	tr, ok := t.byName[name]
	return tr, ok
}

func main() {

	configPath := flag.String("config", "", "path to a yaml rig configuration; a built-in sample is used if empty")
	frames := flag.Int("frames", 8, "number of Execute calls to run")
	flag.Parse()

	skeleton := newMemSkeleton()
	skeleton.addBone("shoulder", "", math32.Vector3{})
	skeleton.addBone("elbow", "shoulder", math32.Vector3{X: 0, Y: -1, Z: 0})
	skeleton.addBone("wrist", "elbow", math32.Vector3{X: 0, Y: -1, Z: 0})

	targets := &memTargets{byName: map[string]ik.Transform{
		"hand_target": {Origin: math32.Vector3{X: 1.2, Y: -1.4, Z: 0.3}, Rotation: *math32.NewQuaternion(0, 0, 0, 1)},
	}}

	var cfg *ikconfig.Config
	if *configPath != "" {
		loaded, err := ikconfig.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "iksolve: loading %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		pin := ikconfig.NewPin("wrist")
		pin.Target = "hand_target"
		cfg = &ikconfig.Config{
			RootBone:            "shoulder",
			IterationsPerFrame:  10,
			DefaultDamp:         0.3,
			StabilizationPasses: 1,
			Pins:                []ikconfig.PinConfig{pin},
		}
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "iksolve: invalid config: %v\n", e)
		}
		os.Exit(1)
	}

	solver := ik.NewSolver()
	solver.SetSkeleton(skeleton)
	solver.SetTargetProvider(targets)
	solver.Configure(cfg)

	for frame := 0; frame < *frames; frame++ {
		if err := solver.Execute(1.0 / 60.0); err != nil {
			fmt.Fprintf(os.Stderr, "iksolve: frame %d: %v\n", frame, err)
			os.Exit(1)
		}
		for _, w := range solver.Warnings() {
			fmt.Fprintf(os.Stderr, "iksolve: frame %d: warning: %v\n", frame, w)
		}
	}

	for _, name := range skeleton.BoneNames() {
		pose, _ := skeleton.BonePose(name)
		fmt.Printf("%-10s origin=(%.4f, %.4f, %.4f)\n", name, pose.Origin.X, pose.Origin.Y, pose.Origin.Z)
	}
}
