// Package dispatch implements a small event dispatcher used to make
// solve-lifecycle events (rebuild, recovered warning, execute complete)
// observable by a host without coupling the solver core to any particular
// logging or telemetry backend.
package dispatch

// Dispatcher implements an event dispatcher.
type Dispatcher struct {
	evmap  map[string][]subscription // maps event name to subscription list
	cancel bool                      // flag informing cancelled dispatch
}

// IDispatcher is the interface satisfied by Dispatcher.
type IDispatcher interface {
	Subscribe(evname string, cb Callback)
	SubscribeID(evname string, id interface{}, cb Callback)
	UnsubscribeID(evname string, id interface{}) int
	Dispatch(evname string, ev interface{}) bool
	ClearSubscriptions()
	CancelDispatch()
}

// Callback is the type of the Dispatcher callback functions.
type Callback func(string, interface{})

type subscription struct {
	id interface{}
	cb func(string, interface{})
}

// New creates and returns a new, initialized Dispatcher.
func New() *Dispatcher {

	d := new(Dispatcher)
	d.Initialize()
	return d
}

// Initialize initializes this event dispatcher.
// Normally used by other types which embed a Dispatcher.
func (d *Dispatcher) Initialize() {

	d.evmap = make(map[string][]subscription)
}

// Subscribe subscribes to receive events with the given name.
// If it is necessary to unsubscribe the event, use SubscribeID instead.
func (d *Dispatcher) Subscribe(evname string, cb Callback) {

	d.SubscribeID(evname, nil, cb)
}

// SubscribeID subscribes to receive events with the given name, tagged
// with an id that can later be used to unsubscribe it.
func (d *Dispatcher) SubscribeID(evname string, id interface{}, cb Callback) {

	d.evmap[evname] = append(d.evmap[evname], subscription{id, cb})
}

// UnsubscribeID unsubscribes from the specified event and subscription id.
// Returns the number of subscriptions removed.
func (d *Dispatcher) UnsubscribeID(evname string, id interface{}) int {

	subs, ok := d.evmap[evname]
	if !ok {
		return 0
	}

	found := 0
	pos := 0
	for pos < len(subs) {
		if subs[pos].id == id {
			copy(subs[pos:], subs[pos+1:])
			subs[len(subs)-1] = subscription{}
			subs = subs[:len(subs)-1]
			found++
		} else {
			pos++
		}
	}
	d.evmap[evname] = subs
	return found
}

// UnsubscribeAllID unsubscribes from all events with the specified subscription id.
// Returns the number of subscriptions removed.
func (d *Dispatcher) UnsubscribeAllID(id interface{}) int {

	total := 0
	for evname := range d.evmap {
		total += d.UnsubscribeID(evname, id)
	}
	return total
}

// Dispatch dispatches the specified event and data to all registered subscribers.
// Returns true if propagation was cancelled by a subscriber.
func (d *Dispatcher) Dispatch(evname string, ev interface{}) bool {

	subs := d.evmap[evname]
	if subs == nil {
		return false
	}

	d.cancel = false
	for i := 0; i < len(subs); i++ {
		subs[i].cb(evname, ev)
		if d.cancel {
			break
		}
	}
	return d.cancel
}

// ClearSubscriptions clears all subscriptions from this dispatcher.
func (d *Dispatcher) ClearSubscriptions() {

	d.evmap = make(map[string][]subscription)
}

// CancelDispatch cancels the propagation of the event currently being dispatched.
func (d *Dispatcher) CancelDispatch() {

	d.cancel = true
}

// Event names emitted by Solver over its lifecycle. Hosts subscribe to
// these to observe solve activity without the core depending on any
// specific logging or telemetry library.
const (
	EventRebuild         = "ik.rebuild"         // shadow skeleton (re)built
	EventWarning         = "ik.warning"         // a recovered SolveError occurred; ev is the error
	EventExecuteComplete = "ik.execute.complete" // an Execute call finished; ev is the *ik.Solver
)
