// Package notify defines the lifecycle notifications exchanged between
// mutation operations and the collection state reducers.
package notify

// Action is an opaque token identifying a notification kind. Tokens only
// need to be unique within the surrounding system.
type Action string

// Notification is one discrete lifecycle message.
type Notification struct {
	Type    Action
	Payload any
}

// Dispatcher delivers notifications to the state-folding pipeline.
type Dispatcher interface {
	Dispatch(n Notification)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(Notification)

// Dispatch calls f(n).
func (f DispatcherFunc) Dispatch(n Notification) {
	f(n)
}

// Multi fans each notification out to several dispatchers in order.
type Multi []Dispatcher

// Dispatch delivers n to every non-nil dispatcher in the slice.
func (m Multi) Dispatch(n Notification) {
	for _, d := range m {
		if d != nil {
			d.Dispatch(n)
		}
	}
}
