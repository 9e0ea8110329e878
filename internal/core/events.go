package core

import "time"

type EventType string

const (
	EventActivityLogged  EventType = "activity.logged"
	EventActivityUpdated EventType = "activity.updated"
	EventActivityDeleted EventType = "activity.deleted"
	EventReviewCompleted EventType = "review.completed"
)

// Event notifies that the data behind a user's week changed.
type Event struct {
	Type       EventType
	UserID     string
	EntityID   string
	WeekStart  time.Time
	OccurredAt time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, userID, entityID string, weekStart time.Time) Event {
	return Event{
		Type:       typ,
		UserID:     userID,
		EntityID:   entityID,
		WeekStart:  weekStart,
		OccurredAt: time.Now(),
	}
}

// AffectsOpenReview reports whether consumers should refresh the week's review.
func (e Event) AffectsOpenReview() bool {
	switch e.Type {
	case EventActivityLogged, EventActivityUpdated, EventActivityDeleted:
		return true
	default:
		return false
	}
}
