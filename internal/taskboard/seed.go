package taskboard

import "github.com/deepthink-labs/deepthink-engine/internal/models"

func strptr(s string) *string { return &s }

// seedTasks is the starter board used when nothing usable is in the store
func seedTasks() []*models.Task {
	return []*models.Task{
		{ID: "task-1", Title: "Setup project structure", Priority: models.PriorityHigh, Status: models.StatusDone, DueDate: nil, XP: 20},
		{ID: "task-2", Title: "Design the main dashboard", Priority: models.PriorityHigh, Status: models.StatusDone, DueDate: strptr("2024-08-15"), XP: 50},
		{ID: "task-3", Title: "Implement authentication", Priority: models.PriorityMedium, Status: models.StatusInProgress, DueDate: strptr("2024-08-20"), XP: 40},
		{ID: "task-4", Title: "Deploy to staging", Priority: models.PriorityLow, Status: models.StatusToDo, DueDate: nil, XP: 15},
	}
}

// seedProgress matches the seed board: task-1's XP already banked
func seedProgress() models.Progress {
	return models.Progress{Level: 1, XP: 20}
}
