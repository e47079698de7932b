package models

import (
	"fmt"
)

// TaskPriority represents the priority of a board task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// IsValid returns true if the priority is one of the known values
func (p TaskPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// TaskStatus represents the board column a task sits in
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// IsValid returns true if the status is one of the three fixed columns
func (s TaskStatus) IsValid() bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusDone
}

// TaskStatuses lists the three columns in board order
var TaskStatuses = []TaskStatus{StatusToDo, StatusInProgress, StatusDone}

// XP bounds for a single task
const (
	TaskXPMin = 5
	TaskXPMax = 50
)

// XPPerLevel is the fixed threshold at which the running XP total rolls over
// into a new level.
const XPPerLevel = 100

// Task is a single entry on the kanban board
type Task struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Priority TaskPriority `json:"priority"`
	Status   TaskStatus   `json:"status"`
	DueDate  *string      `json:"dueDate"`
	XP       int          `json:"xp"`
}

// Validate checks user-supplied task fields
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}
	if t.XP < TaskXPMin || t.XP > TaskXPMax {
		return fmt.Errorf("xp must be between %d and %d", TaskXPMin, TaskXPMax)
	}
	return nil
}

// Progress tracks the board-wide gamification state. XP always stays below
// XPPerLevel after rollover.
type Progress struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// CreateTaskRequest represents a request to add or edit a task
type CreateTaskRequest struct {
	Title    string       `json:"title"`
	Priority TaskPriority `json:"priority"`
	DueDate  *string      `json:"dueDate,omitempty"`
	XP       int          `json:"xp"`
}

// MoveTaskRequest moves a task to another column
type MoveTaskRequest struct {
	Status TaskStatus `json:"status"`
}

// Subtask is one entry of an AI task breakdown
type Subtask struct {
	Title string `json:"title"`
	XP    int    `json:"xp"`
}

// BreakdownRequest asks the AI gateway to split a high-level task
type BreakdownRequest struct {
	Title string `json:"title"`
}
