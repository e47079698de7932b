package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Loader manages loading and caching of the built-in scenario catalog.
// The catalog is read-only from every consumer's perspective once loaded.
type Loader struct {
	mu        sync.RWMutex
	scenarios map[string]*models.ScenarioTemplate
	order     []string
}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{
		scenarios: make(map[string]*models.ScenarioTemplate),
	}
}

// LoadFromDir loads all YAML scenario files from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading scenario catalog", "dir", dir)

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)

		// Also check subdirectories (one per job type)
		subMatches, err := filepath.Glob(filepath.Join(dir, "*", pattern))
		if err != nil {
			continue
		}
		files = append(files, subMatches...)
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load scenario", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("scenario catalog loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single scenario from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var scenario models.ScenarioTemplate
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if scenario.ID == "" {
		return fmt.Errorf("scenario id is required")
	}
	if scenario.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if !scenario.Level.IsValid() {
		return fmt.Errorf("invalid scenario level: %s", scenario.Level)
	}
	for i, q := range scenario.Questions {
		if len(q.Options) != models.OptionsPerQuestion {
			return fmt.Errorf("question %d has %d options, expected %d", i, len(q.Options), models.OptionsPerQuestion)
		}
		if q.Type == "" {
			scenario.Questions[i].Type = models.QuestionTypeMultipleChoice
		}
	}

	l.mu.Lock()
	if _, exists := l.scenarios[scenario.ID]; !exists {
		l.order = append(l.order, scenario.ID)
	}
	l.scenarios[scenario.ID] = &scenario
	l.mu.Unlock()

	slog.Debug("scenario loaded", "id", scenario.ID, "job_type", scenario.JobType)
	return nil
}

// Get retrieves a scenario by ID, nil if absent
func (l *Loader) Get(id string) *models.ScenarioTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scenarios[id]
}

// List returns all catalog scenarios in load order
func (l *Loader) List() []*models.ScenarioTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.ScenarioTemplate, 0, len(l.order))
	for _, id := range l.order {
		result = append(result, l.scenarios[id])
	}
	return result
}

// ListByJobType returns catalog scenarios for one job type, in load order
func (l *Loader) ListByJobType(jobType string) []*models.ScenarioTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*models.ScenarioTemplate
	for _, id := range l.order {
		if l.scenarios[id].JobType == jobType {
			result = append(result, l.scenarios[id])
		}
	}
	return result
}

// JobTypes returns the distinct job types present in the catalog, sorted
func (l *Loader) JobTypes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, s := range l.scenarios {
		if !seen[s.JobType] {
			seen[s.JobType] = true
			result = append(result, s.JobType)
		}
	}
	sort.Strings(result)
	return result
}
