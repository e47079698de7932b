package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification for client-side styling
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single toast delivered to the dashboard
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the write side used by the session engine, task board and
// reminder poller.
type Notifier interface {
	Notify(level Level, title, message string)
}

// maxRecent bounds the in-memory feed handed to late subscribers
const maxRecent = 100

// Hub is the process-wide notification fan-out. Constructed once at startup
// and shared by every producer; consumers subscribe for live delivery or read
// the recent feed.
type Hub struct {
	mu          sync.Mutex
	recent      []Notification
	subscribers map[chan Notification]struct{}
}

// NewHub creates a new notification hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Notification]struct{}),
	}
}

// Notify records a notification and broadcasts it to all subscribers.
// Slow subscribers are skipped rather than blocked on.
func (h *Hub) Notify(level Level, title, message string) {
	n := Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.recent = append(h.recent, n)
	if len(h.recent) > maxRecent {
		h.recent = h.recent[len(h.recent)-maxRecent:]
	}
	for ch := range h.subscribers {
		select {
		case ch <- n:
		default:
			slog.Debug("dropping notification for slow subscriber", "id", n.ID)
		}
	}
	h.mu.Unlock()

	slog.Info("notification", "level", level, "title", title, "message", message)
}

// Subscribe registers a live delivery channel. The returned cancel function
// must be called when the consumer goes away.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Recent returns a copy of the bounded notification feed, oldest first
func (h *Hub) Recent() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, len(h.recent))
	copy(out, h.recent)
	return out
}
