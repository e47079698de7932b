package taskboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/notify"
)

// Common errors
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrInvalidStatus  = errors.New("invalid task status")
	ErrInvalidRequest = errors.New("invalid task request")
)

// Board owns the kanban task list and the gamified progress counter.
// All mutations persist through the Persister; a persistence failure is
// logged, never surfaced, so the board keeps working from memory.
type Board struct {
	mu       sync.Mutex
	tasks    []*models.Task
	progress models.Progress
	persist  Persister
	notifier notify.Notifier
}

// NewBoard creates a board backed by the given persister
func NewBoard(persist Persister, notifier notify.Notifier) *Board {
	return &Board{
		persist:  persist,
		notifier: notifier,
	}
}

// Load restores the board from the store, falling back to the seed dataset
// when state is absent or unparsable.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tasks, err := b.persist.LoadTasks(ctx)
	switch {
	case err == nil:
		b.tasks = tasks
	case errors.Is(err, ErrNoState):
		slog.Info("no stored tasks, seeding board")
		b.tasks = seedTasks()
	default:
		slog.Warn("stored tasks unusable, seeding board", "error", err)
		b.tasks = seedTasks()
	}

	progress, err := b.persist.LoadProgress(ctx)
	switch {
	case err == nil:
		b.progress = *progress
	case errors.Is(err, ErrNoState):
		b.progress = seedProgress()
	default:
		slog.Warn("stored progress unusable, seeding", "error", err)
		b.progress = seedProgress()
	}

	slog.Info("task board loaded", "tasks", len(b.tasks), "level", b.progress.Level, "xp", b.progress.XP)
	return nil
}

// List returns the tasks, optionally filtered by priority. An empty filter
// returns everything.
func (b *Board) List(priority models.TaskPriority) []*models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]*models.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if priority != "" && t.Priority != priority {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}
	return result
}

// Get returns one task by ID
func (b *Board) Get(id string) (*models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.find(id)
	if t == nil {
		return nil, ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

// Create adds a new task in the To Do column
func (b *Board) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	task := &models.Task{
		ID:       "task-" + uuid.New().String(),
		Title:    req.Title,
		Priority: req.Priority,
		Status:   models.StatusToDo,
		DueDate:  req.DueDate,
		XP:       req.XP,
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	b.mu.Lock()
	b.tasks = append(b.tasks, task)
	b.save(ctx)
	copied := *task
	b.mu.Unlock()

	return &copied, nil
}

// Update edits a task's title, priority, due date and XP. Status changes go
// through Move so the XP accounting stays in one place.
func (b *Board) Update(ctx context.Context, id string, req models.CreateTaskRequest) (*models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task := b.find(id)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	updated := *task
	updated.Title = req.Title
	updated.Priority = req.Priority
	updated.DueDate = req.DueDate
	updated.XP = req.XP
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	*task = updated
	b.save(ctx)
	copied := *task
	return &copied, nil
}

// Delete removes a task from the board
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.tasks {
		if t.ID == id {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			b.save(ctx)
			return nil
		}
	}
	return ErrTaskNotFound
}

// Move shifts a task to another column and settles the XP accounting.
// Moving into Done banks the task's XP, rolling the level over every
// XPPerLevel points with one notification per level gained. Moving out of
// Done takes the XP back, floored at zero; the level is never reduced.
func (b *Board) Move(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	task := b.find(id)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	prev := task.Status
	task.Status = status

	switch {
	case status == models.StatusDone && prev != models.StatusDone:
		b.grantXP(task.XP)
	case status != models.StatusDone && prev == models.StatusDone:
		b.progress.XP -= task.XP
		if b.progress.XP < 0 {
			b.progress.XP = 0
		}
	}

	b.save(ctx)
	copied := *task
	return &copied, nil
}

// AddSubtasks places AI-generated sub-tasks on the board as To Do / Medium
func (b *Board) AddSubtasks(ctx context.Context, subtasks []models.Subtask) []*models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	added := make([]*models.Task, 0, len(subtasks))
	for _, st := range subtasks {
		task := &models.Task{
			ID:       "task-" + uuid.New().String(),
			Title:    st.Title,
			Priority: models.PriorityMedium,
			Status:   models.StatusToDo,
			XP:       st.XP,
		}
		b.tasks = append(b.tasks, task)
		copied := *task
		added = append(added, &copied)
	}
	b.save(ctx)
	return added
}

// Progress returns the current level and XP
func (b *Board) Progress() models.Progress {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

func (b *Board) find(id string) *models.Task {
	for _, t := range b.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// grantXP banks points and rolls levels over. Caller holds the lock.
func (b *Board) grantXP(xp int) {
	b.progress.XP += xp
	for b.progress.XP >= models.XPPerLevel {
		b.progress.XP -= models.XPPerLevel
		b.progress.Level++
		b.notifier.Notify(notify.LevelSuccess, "Level Up!", fmt.Sprintf("You've reached Level %d!", b.progress.Level))
	}
}

// save persists the board best-effort. Caller holds the lock.
func (b *Board) save(ctx context.Context) {
	if err := b.persist.SaveTasks(ctx, b.tasks); err != nil {
		slog.Warn("failed to persist tasks", "error", err)
	}
	if err := b.persist.SaveProgress(ctx, b.progress); err != nil {
		slog.Warn("failed to persist progress", "error", err)
	}
}
