package catalog

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Common errors
var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrNotOwner         = errors.New("scenario belongs to another author")
)

// Store holds user-authored scenarios and favorites. Built-in catalog
// scenarios live in the Loader and never pass through here; published
// user scenarios become visible to everyone as community challenges.
type Store struct {
	mu        sync.RWMutex
	scenarios map[string]*models.ScenarioTemplate
	order     []string
	favorites map[string]map[string]bool // userID -> scenarioID set
	now       func() time.Time
}

// NewStore creates a new user scenario store
func NewStore() *Store {
	return &Store{
		scenarios: make(map[string]*models.ScenarioTemplate),
		favorites: make(map[string]map[string]bool),
		now:       time.Now,
	}
}

// clone detaches a scenario from the store so callers never hold the
// internal pointer that Publish mutates.
func clone(sc *models.ScenarioTemplate) *models.ScenarioTemplate {
	copied := *sc
	return &copied
}

// Create saves a new unpublished scenario for the given author
func (s *Store) Create(authorID, authorName string, req models.CreateScenarioRequest) (*models.ScenarioTemplate, error) {
	if req.Name == "" {
		return nil, errors.New("scenario name is required")
	}
	if !req.Level.IsValid() {
		return nil, errors.New("invalid scenario level")
	}
	for _, q := range req.Questions {
		if len(q.Options) != models.OptionsPerQuestion {
			return nil, errors.New("every question needs exactly three options")
		}
	}

	created := s.now()
	scenario := &models.ScenarioTemplate{
		ID:          "user-" + uuid.New().String(),
		Name:        req.Name,
		JobType:     req.JobType,
		Level:       req.Level,
		Description: req.Description,
		Tags:        req.Tags,
		AuthorID:    authorID,
		AuthorName:  authorName,
		IsPublished: false,
		CreatedAt:   &created,
		Questions:   req.Questions,
	}

	s.mu.Lock()
	s.scenarios[scenario.ID] = scenario
	s.order = append(s.order, scenario.ID)
	s.mu.Unlock()

	slog.Info("user scenario created", "id", scenario.ID, "author", authorID)
	return clone(scenario), nil
}

// Get retrieves a user scenario by ID
func (s *Store) Get(id string) (*models.ScenarioTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scenario, ok := s.scenarios[id]
	if !ok {
		return nil, ErrScenarioNotFound
	}
	return clone(scenario), nil
}

// ListByAuthor returns the author's own scenarios, newest first
func (s *Store) ListByAuthor(authorID string) []*models.ScenarioTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.ScenarioTemplate
	for i := len(s.order) - 1; i >= 0; i-- {
		sc := s.scenarios[s.order[i]]
		if sc.AuthorID == authorID {
			result = append(result, clone(sc))
		}
	}
	return result
}

// ListPublished returns all published community scenarios, newest first
func (s *Store) ListPublished() []*models.ScenarioTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.ScenarioTemplate
	for i := len(s.order) - 1; i >= 0; i-- {
		sc := s.scenarios[s.order[i]]
		if sc.IsPublished {
			result = append(result, clone(sc))
		}
	}
	return result
}

// Publish flips a scenario to published. The transition is one-way:
// publishing an already-published scenario is a no-op.
func (s *Store) Publish(authorID, id string) (*models.ScenarioTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenario, ok := s.scenarios[id]
	if !ok {
		return nil, ErrScenarioNotFound
	}
	if scenario.AuthorID != authorID {
		return nil, ErrNotOwner
	}
	if !scenario.IsPublished {
		scenario.IsPublished = true
		slog.Info("user scenario published", "id", id, "author", authorID)
	}
	return clone(scenario), nil
}

// Delete removes the author's own scenario
func (s *Store) Delete(authorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenario, ok := s.scenarios[id]
	if !ok {
		return ErrScenarioNotFound
	}
	if scenario.AuthorID != authorID {
		return ErrNotOwner
	}

	delete(s.scenarios, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ToggleFavorite flips the favorite flag for one scenario and returns the
// new state.
func (s *Store) ToggleFavorite(userID, scenarioID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.favorites[userID]
	if !ok {
		set = make(map[string]bool)
		s.favorites[userID] = set
	}
	if set[scenarioID] {
		delete(set, scenarioID)
		return false
	}
	set[scenarioID] = true
	return true
}

// Favorites returns the user's favorite scenario IDs, sorted
func (s *Store) Favorites(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []string
	for id := range s.favorites[userID] {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
