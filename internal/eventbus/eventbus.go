// Package eventbus carries optimizer progress from the search loop to
// metrics collectors without coupling the two.
package eventbus

// Event is any value published on the bus.
type Event any

// EventBus is the publish/subscribe contract used by producers and
// collectors.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the untyped bus shared across packages.
type Bus = TypedBus[Event]

var _ EventBus = (*Bus)(nil)

// New creates a Bus with DefaultBuffer slots per subscriber.
func New() *Bus { return NewTyped[Event]() }
