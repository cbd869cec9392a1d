package events

// Publisher receives events after the transaction that produced them commits.
// Publish must not block; a full queue drops the event.
type Publisher interface {
	Publish(event Event) error
}

// Compile-time verification that *Hub implements Publisher
var _ Publisher = (*Hub)(nil)

// Discard is a Publisher that drops everything
type Discard struct{}

// Publish implements Publisher
func (Discard) Publish(Event) error { return nil }
