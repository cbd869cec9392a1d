package events

import "time"

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBoardChanged EventType = "board_changed"
	EventPing         EventType = "ping"
)

// Event represents a committed board change notification
type Event struct {
	Type       EventType `json:"type"`
	BoardID    string    `json:"board_id"`              // For filtering - which board was modified
	Op         string    `json:"op"`                    // Mutation that produced the change, e.g. "card.move"
	EntityID   string    `json:"entity_id,omitempty"`   // Column or card the op targeted
	Timestamp  time.Time `json:"timestamp"`             // When the change committed
	SequenceID int64     `json:"sequence_id,omitempty"` // Monotonically increasing, assigned by the hub
}

// Message wraps events and control messages for the websocket wire protocol
type Message struct {
	Type  string `json:"type"` // "event", "ping"
	Event *Event `json:"event,omitempty"`
}

// BoardChanged builds a change event for a board
func BoardChanged(boardID, op, entityID string) *Event {
	return &Event{
		Type:     EventBoardChanged,
		BoardID:  boardID,
		Op:       op,
		EntityID: entityID,
	}
}
