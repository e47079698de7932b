package models

import (
	"time"
)

// Note is a free-text note with an optional one-shot reminder. The reminder
// is cleared (set nil) after it fires; notes are the only expiring entity in
// the system.
type Note struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	ReminderAt *time.Time `json:"reminderAt,omitempty"`
}

// ReminderDue reports whether the note's reminder should fire at the given time
func (n *Note) ReminderDue(now time.Time) bool {
	return n.ReminderAt != nil && !n.ReminderAt.After(now)
}

// SaveNoteRequest creates or updates a note
type SaveNoteRequest struct {
	Content    string     `json:"content"`
	ReminderAt *time.Time `json:"reminderAt,omitempty"`
}

// NoteSuggestionRequest asks the AI gateway for an actionable suggestion
type NoteSuggestionRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}
