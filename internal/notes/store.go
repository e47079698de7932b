package notes

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// ErrNoteNotFound marks a lookup for an absent note
var ErrNoteNotFound = errors.New("note not found")

// Store is the in-memory note collection, newest first
type Store struct {
	mu    sync.Mutex
	notes []*models.Note
	now   func() time.Time
}

// NewStore creates an empty note store
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Save creates a note, or updates content and reminder when id matches an
// existing note. Saving refreshes the note's timestamp either way.
func (s *Store) Save(id, content string, reminderAt *time.Time) (*models.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("note content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		for _, n := range s.notes {
			if n.ID == id {
				n.Content = content
				n.ReminderAt = reminderAt
				n.CreatedAt = s.now()
				copied := *n
				return &copied, nil
			}
		}
		return nil, ErrNoteNotFound
	}

	note := &models.Note{
		ID:         "note-" + uuid.New().String(),
		Content:    content,
		CreatedAt:  s.now(),
		ReminderAt: reminderAt,
	}
	s.notes = append([]*models.Note{note}, s.notes...)
	copied := *note
	return &copied, nil
}

// Delete removes a note
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return ErrNoteNotFound
}

// Get returns one note by ID
func (s *Store) Get(id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notes {
		if n.ID == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, ErrNoteNotFound
}

// List returns notes newest first, optionally filtered by a case-insensitive
// content substring.
func (s *Store) List(query string) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(query)
	result := make([]*models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if query != "" && !strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		copied := *n
		result = append(result, &copied)
	}
	return result
}

// PopDueReminders collects notes whose reminder time has passed and clears
// their reminders so each fires exactly once.
func (s *Store) PopDueReminders() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var due []models.Note
	for _, n := range s.notes {
		if n.ReminderAt != nil && !n.ReminderAt.After(now) {
			due = append(due, *n)
			n.ReminderAt = nil
		}
	}
	return due
}
