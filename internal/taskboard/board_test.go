package taskboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/notify"
)

// memPersister keeps board state in memory for tests
type memPersister struct {
	mu       sync.Mutex
	tasks    []*models.Task
	progress *models.Progress
	broken   bool
}

func (m *memPersister) LoadTasks(ctx context.Context) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errors.New("store unavailable")
	}
	if m.tasks == nil {
		return nil, ErrNoState
	}
	return m.tasks, nil
}

func (m *memPersister) LoadProgress(ctx context.Context) (*models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errors.New("store unavailable")
	}
	if m.progress == nil {
		return nil, ErrNoState
	}
	return m.progress, nil
}

func (m *memPersister) SaveTasks(ctx context.Context, tasks []*models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = tasks
	return nil
}

func (m *memPersister) SaveProgress(ctx context.Context, progress models.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = &progress
	return nil
}

func (m *memPersister) Close() error { return nil }

// recordingNotifier captures emitted notifications
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(level notify.Level, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, title+": "+message)
}

func (r *recordingNotifier) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func newTestBoard(t *testing.T) (*Board, *recordingNotifier) {
	t.Helper()
	rec := &recordingNotifier{}
	board := NewBoard(&memPersister{}, rec)
	if err := board.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return board, rec
}

func TestSeedFallback(t *testing.T) {
	board, _ := newTestBoard(t)

	tasks := board.List("")
	if len(tasks) != 4 {
		t.Fatalf("expected 4 seed tasks, got %d", len(tasks))
	}
	progress := board.Progress()
	if progress.Level != 1 || progress.XP != 20 {
		t.Errorf("unexpected seed progress: %+v", progress)
	}
}

func TestSeedFallbackOnBrokenStore(t *testing.T) {
	rec := &recordingNotifier{}
	board := NewBoard(&memPersister{broken: true}, rec)
	if err := board.Load(context.Background()); err != nil {
		t.Fatalf("Load should fall back to seed, got error: %v", err)
	}
	if len(board.List("")) != 4 {
		t.Error("expected seed tasks after broken load")
	}
}

func TestMoveIntoDoneRollsOverLevels(t *testing.T) {
	board, rec := newTestBoard(t)
	ctx := context.Background()

	// Bring XP to 80 within level 1
	a, err := board.Create(ctx, models.CreateTaskRequest{Title: "a", Priority: models.PriorityLow, XP: 30})
	if err != nil {
		t.Fatal(err)
	}
	b, err := board.Create(ctx, models.CreateTaskRequest{Title: "b", Priority: models.PriorityLow, XP: 30})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := board.Move(ctx, a.ID, models.StatusDone); err != nil {
		t.Fatal(err)
	}
	if _, err := board.Move(ctx, b.ID, models.StatusDone); err != nil {
		t.Fatal(err)
	}
	if p := board.Progress(); p.Level != 1 || p.XP != 80 {
		t.Fatalf("expected level 1 xp 80, got %+v", p)
	}

	// 80 + 45 rolls over to level 2 with 25 left
	c, err := board.Create(ctx, models.CreateTaskRequest{Title: "c", Priority: models.PriorityLow, XP: 45})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := board.Move(ctx, c.ID, models.StatusDone); err != nil {
		t.Fatal(err)
	}

	p := board.Progress()
	if p.Level != 2 || p.XP != 25 {
		t.Errorf("expected level 2 xp 25, got %+v", p)
	}
	if got := rec.count("Level 2"); got != 1 {
		t.Errorf("expected exactly one level-up notification, got %d", got)
	}
}

func TestMoveOutOfDoneRetractsWithoutDeleveling(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()

	// Seed progress is level 1, xp 20. Retracting a 50 XP task floors at 0
	// and never reduces the level.
	task, err := board.Move(ctx, "task-2", models.StatusInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != models.StatusInProgress {
		t.Errorf("unexpected status: %s", task.Status)
	}

	p := board.Progress()
	if p.XP != 0 {
		t.Errorf("expected xp floored at 0, got %d", p.XP)
	}
	if p.Level != 1 {
		t.Errorf("level must never decrease, got %d", p.Level)
	}
}

func TestMoveWithinDoneGrantsNothing(t *testing.T) {
	board, rec := newTestBoard(t)
	ctx := context.Background()

	before := board.Progress()
	if _, err := board.Move(ctx, "task-1", models.StatusDone); err != nil {
		t.Fatal(err)
	}
	if after := board.Progress(); after != before {
		t.Errorf("Done to Done must not change progress: %+v -> %+v", before, after)
	}
	if len(rec.messages) != 0 {
		t.Errorf("unexpected notifications: %v", rec.messages)
	}
}

func TestMoveValidation(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()

	if _, err := board.Move(ctx, "task-1", "Archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := board.Move(ctx, "missing", models.StatusDone); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestCreateValidatesXPRange(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()

	for _, xp := range []int{0, 4, 51, 200} {
		if _, err := board.Create(ctx, models.CreateTaskRequest{Title: "t", Priority: models.PriorityLow, XP: xp}); err == nil {
			t.Errorf("expected error for xp %d", xp)
		}
	}
	if _, err := board.Create(ctx, models.CreateTaskRequest{Title: "t", Priority: models.PriorityLow, XP: 5}); err != nil {
		t.Errorf("xp 5 should be valid: %v", err)
	}
	if _, err := board.Create(ctx, models.CreateTaskRequest{Title: "t", Priority: models.PriorityLow, XP: 50}); err != nil {
		t.Errorf("xp 50 should be valid: %v", err)
	}
}

func TestPriorityFilter(t *testing.T) {
	board, _ := newTestBoard(t)

	high := board.List(models.PriorityHigh)
	if len(high) != 2 {
		t.Errorf("expected 2 high priority seed tasks, got %d", len(high))
	}
	for _, task := range high {
		if task.Priority != models.PriorityHigh {
			t.Errorf("filter leaked %s task", task.Priority)
		}
	}
	if all := board.List(""); len(all) != 4 {
		t.Errorf("empty filter should return everything, got %d", len(all))
	}
}

func TestAddSubtasks(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()

	added := board.AddSubtasks(ctx, []models.Subtask{
		{Title: "Write schema", XP: 10},
		{Title: "Wire endpoint", XP: 25},
	})
	if len(added) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(added))
	}
	for _, task := range added {
		if task.Status != models.StatusToDo || task.Priority != models.PriorityMedium {
			t.Errorf("subtasks must land as To Do / Medium, got %s / %s", task.Status, task.Priority)
		}
	}
	if len(board.List("")) != 6 {
		t.Error("subtasks not on the board")
	}
}

func TestStatePersistsAcrossLoads(t *testing.T) {
	store := &memPersister{}
	rec := &recordingNotifier{}
	ctx := context.Background()

	board := NewBoard(store, rec)
	if err := board.Load(ctx); err != nil {
		t.Fatal(err)
	}
	task, err := board.Create(ctx, models.CreateTaskRequest{Title: "persisted", Priority: models.PriorityHigh, XP: 10})
	if err != nil {
		t.Fatal(err)
	}

	// Fresh board over the same store sees the saved state
	board2 := NewBoard(store, rec)
	if err := board2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := board2.Get(task.ID); err != nil {
		t.Errorf("task not restored after reload: %v", err)
	}
}
