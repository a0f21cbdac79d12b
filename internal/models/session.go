package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a talk slot on the agenda. StartTime never exceeds EndTime.
type Session struct {
	ID          uuid.UUID `json:"id" yaml:"-"`
	Title       string    `json:"title" yaml:"title"`
	Speaker     *string   `json:"speaker" yaml:"speaker"`
	Room        string    `json:"room" yaml:"room"`
	StartTime   time.Time `json:"start_time" yaml:"start_time"`
	EndTime     time.Time `json:"end_time" yaml:"end_time"`
	Description *string   `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// DisplayTitle returns the title, or a placeholder when the title is blank.
func (s Session) DisplayTitle() string {
	if s.Title == "" {
		return "Ingen tittel"
	}
	return s.Title
}
