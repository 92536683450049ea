package core

import "fmt"

// EventType represents the kind of change that occurred.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventUpdated  EventType = "UPDATED"
	EventRemoved  EventType = "REMOVED"
	EventSelected EventType = "SELECTED"
	EventRendered EventType = "RENDERED"
	EventReplaced EventType = "REPLACED"
)

// Event represents a change in the viewer. Topic is a slash-separated
// address ("annotation/3/added", "page/3/rendered", "document/replaced")
// that watchers filter with glob patterns.
type Event struct {
	Topic     string
	Type      EventType
	ID        string // annotation id, if any
	Page      int    // page number, if any
	Timestamp int64  // Unix timestamp
}

// String implements fmt.Stringer (and the lifecycle event contract).
func (e Event) String() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s (%s)", e.Topic, e.Type, e.ID)
	}
	return fmt.Sprintf("%s %s", e.Topic, e.Type)
}
