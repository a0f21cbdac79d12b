package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is one attendee's rating of a single session.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Useful    bool      `json:"useful"`
	Learned   bool      `json:"learned"`
	Explore   bool      `json:"explore"`
	CreatedAt time.Time `json:"created_at"`
}

// EventFeedback is feedback on the whole event: a comment, a 1-5 rating, or both.
type EventFeedback struct {
	ID        uuid.UUID `json:"id"`
	Comment   *string   `json:"comment"`
	Rating    *int      `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
