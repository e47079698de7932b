package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/notify"
)

// Poller fires note reminders on a fixed cycle
type Poller struct {
	store    *Store
	notifier notify.Notifier
	interval time.Duration
}

// NewPoller creates a reminder poller
func NewPoller(store *Store, notifier notify.Notifier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &Poller{
		store:    store,
		notifier: notifier,
		interval: interval,
	}
}

// Start begins the poller in a goroutine
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// run is the main loop. Reminders only fire on ticks, so a reminder set in
// the past still waits for the next cycle.
func (p *Poller) run(ctx context.Context) {
	slog.Info("reminder poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder poller stopped")
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll fires one notification per due reminder
func (p *Poller) Poll() {
	due := p.store.PopDueReminders()
	for _, note := range due {
		slog.Info("note reminder due", "id", note.ID)
		p.notifier.Notify(notify.LevelInfo, "Note Reminder", preview(note.Content))
	}
}

// preview shortens note content for the notification toast. Truncation is by
// rune so a multibyte character at the cut never leaves broken UTF-8.
func preview(content string) string {
	const max = 30
	runes := []rune(content)
	if len(runes) <= max {
		return "\"" + content + "\""
	}
	return "\"" + string(runes[:max]) + "...\""
}
