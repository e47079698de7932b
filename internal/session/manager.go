package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/notify"
	"github.com/deepthink-labs/deepthink-engine/internal/storage"
)

// Common errors
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrScenarioNotFound    = errors.New("scenario not found")
	ErrInvalidState        = errors.New("operation not valid in current session state")
	ErrUnsupportedLanguage = errors.New("unsupported session language")
	ErrOptionRequired      = errors.New("an answer option is required")
	ErrNeedsQuestions      = errors.New("user-authored scenario needs questions")
)

// User-facing failure messages shown on the error screen
const (
	msgQuestionsFailed  = "The AI failed to generate questions for this scenario. Please try a different one or try again."
	msgConnectionFailed = "There was an error connecting to the AI. Please check your connection and try again."
	msgAnalysisFailed   = "The AI failed to analyze your performance. Please try again later."
)

// Cosmetic pre-phase durations. The pre states exist so short loads still
// show the staged loader; the real fetch resolving always wins the race.
const (
	questionPreDelay = 2500 * time.Millisecond
	analysisPreDelay = 4 * time.Second
)

// ScenarioResolver looks up a scenario by ID across the built-in catalog and
// user-authored scenarios.
type ScenarioResolver interface {
	Resolve(id string) (*models.ScenarioTemplate, bool)
}

// Manager defines the interface for live session management
type Manager interface {
	Start(ctx context.Context, req models.StartSessionRequest) (*models.SessionSnapshot, error)
	ChooseLanguage(ctx context.Context, id, language string) (*models.SessionSnapshot, error)
	SubmitAnswer(ctx context.Context, id string, req models.SubmitAnswerRequest) (*models.SessionSnapshot, error)
	Get(ctx context.Context, id string) (*models.SessionSnapshot, error)
	Restart(ctx context.Context, id string) (*models.SessionSnapshot, error)
	Abandon(ctx context.Context, id string) error
	Close()
}

// liveSession is the server-side state of one running session. All fields
// are guarded by the engine mutex.
type liveSession struct {
	id           string
	scenario     *models.ScenarioTemplate
	language     string
	state        models.SessionState
	questions    []models.Question
	answers      []models.Answer
	currentIndex int
	startTime    time.Time
	endTime      time.Time
	elapsed      int
	errMsg       string
	report       *models.AnalysisReport

	// generation invalidates in-flight gateway responses on restart or
	// abandon; a response tagged with a stale generation is discarded.
	generation int
	inFlight   bool

	preTimer     *time.Timer
	tickerCancel context.CancelFunc
}

// Engine implements Manager
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*liveSession

	gateway  ai.Gateway
	resolver ScenarioResolver
	repo     storage.Repository
	notifier notify.Notifier
	userID   string

	baseCtx context.Context
	cancel  context.CancelFunc

	// Injectable for tests
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

// NewEngine creates the session engine
func NewEngine(gateway ai.Gateway, resolver ScenarioResolver, repo storage.Repository, notifier notify.Notifier, userID string) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		sessions:  make(map[string]*liveSession),
		gateway:   gateway,
		resolver:  resolver,
		repo:      repo,
		notifier:  notifier,
		userID:    userID,
		baseCtx:   ctx,
		cancel:    cancel,
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
	return e
}

// Close stops all timers and tickers and invalidates in-flight work
func (e *Engine) Close() {
	e.mu.Lock()
	for _, s := range e.sessions {
		e.teardown(s)
	}
	e.sessions = make(map[string]*liveSession)
	e.mu.Unlock()
	e.cancel()
}

// Start opens a new live session in the chooseLanguage state. The request
// either names a known scenario or carries a full user-authored template.
func (e *Engine) Start(ctx context.Context, req models.StartSessionRequest) (*models.SessionSnapshot, error) {
	scenario := req.Scenario
	if scenario == nil {
		found, ok := e.resolver.Resolve(req.ScenarioID)
		if !ok {
			return nil, ErrScenarioNotFound
		}
		scenario = found
	}
	if scenario.Name == "" || !scenario.Level.IsValid() {
		return nil, ErrScenarioNotFound
	}
	// Manually authored scenarios carry their own question list; built-in
	// catalog entries get questions from the gateway instead.
	if scenario.AuthorID != "" && !scenario.HasQuestions() {
		return nil, ErrNeedsQuestions
	}

	s := &liveSession{
		id:       uuid.New().String(),
		scenario: scenario,
		state:    models.StateChooseLanguage,
	}

	e.mu.Lock()
	e.sessions[s.id] = s
	snap := e.snapshot(s)
	e.mu.Unlock()

	slog.Info("session started", "id", s.id, "scenario", scenario.ID)
	return snap, nil
}

// ChooseLanguage locks in one of the two locales and begins the question
// flow. Scenarios with pre-baked questions skip the gateway and go straight
// to inProgress; everything else enters the staged loading states.
func (e *Engine) ChooseLanguage(ctx context.Context, id, language string) (*models.SessionSnapshot, error) {
	if !models.IsSupportedLanguage(language) {
		return nil, ErrUnsupportedLanguage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.state != models.StateChooseLanguage {
		return nil, ErrInvalidState
	}

	s.language = language

	if s.scenario.HasQuestions() {
		s.questions = s.scenario.Questions
		e.enterInProgress(s)
		return e.snapshot(s), nil
	}

	s.state = models.StatePreLoadingQuestions
	s.errMsg = ""
	s.questions = nil
	s.inFlight = true
	gen := s.generation

	// Cosmetic phase advance, racing the real fetch
	s.preTimer = e.afterFunc(questionPreDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		cur, ok := e.sessions[id]
		if ok && cur.generation == gen && cur.state == models.StatePreLoadingQuestions {
			cur.state = models.StateLoadingQuestions
		}
	})

	go e.fetchQuestions(id, gen, s.scenario, language)

	return e.snapshot(s), nil
}

// fetchQuestions runs the gateway call off the request goroutine. The
// session may be gone or restarted by the time it returns; a generation
// mismatch means the result must be dropped on the floor.
func (e *Engine) fetchQuestions(id string, gen int, scenario *models.ScenarioTemplate, language string) {
	questions, err := e.gateway.GenerateQuestions(e.baseCtx, scenario, language)

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok || s.generation != gen {
		slog.Debug("discarding stale question response", "session", id)
		return
	}

	s.inFlight = false
	e.stopPreTimer(s)

	if err != nil {
		if errors.Is(err, ai.ErrEmptyResult) {
			s.errMsg = msgQuestionsFailed
		} else {
			s.errMsg = msgConnectionFailed
		}
		s.state = models.StateError
		slog.Warn("question generation failed", "session", id, "error", err)
		return
	}

	s.questions = questions
	e.enterInProgress(s)
}

// enterInProgress moves the session to inProgress, captures the start time
// and spins up the per-session elapsed ticker. Caller holds the lock.
func (e *Engine) enterInProgress(s *liveSession) {
	s.state = models.StateInProgress
	s.startTime = e.now()
	s.elapsed = 0
	s.currentIndex = 0
	s.answers = nil

	tctx, cancel := context.WithCancel(e.baseCtx)
	s.tickerCancel = cancel
	go e.runElapsedTicker(tctx, s)
}

// runElapsedTicker updates the session's elapsed seconds once a second
// while it stays inProgress.
func (e *Engine) runElapsedTicker(ctx context.Context, s *liveSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			if s.state == models.StateInProgress {
				s.elapsed = int(e.now().Sub(s.startTime) / time.Second)
			}
			e.mu.Unlock()
		}
	}
}

// SubmitAnswer records the answer to the current question. The option is
// required; the justification is optional free text. Answering the last
// question tears the timer down and starts the analysis flow.
func (e *Engine) SubmitAnswer(ctx context.Context, id string, req models.SubmitAnswerRequest) (*models.SessionSnapshot, error) {
	if req.Option == "" {
		return nil, ErrOptionRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.state != models.StateInProgress {
		return nil, ErrInvalidState
	}

	justification := req.Justification
	if justification == "" {
		justification = "Not provided."
	}
	combined := fmt.Sprintf("Selected Option: %q. User's Justification: %q", req.Option, justification)
	s.answers = append(s.answers, models.Answer{
		QuestionID: s.questions[s.currentIndex].ID,
		Answer:     combined,
	})

	if s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
		return e.snapshot(s), nil
	}

	// Last answer in: freeze the clock and analyze
	s.elapsed = int(e.now().Sub(s.startTime) / time.Second)
	e.stopTicker(s)
	s.state = models.StatePreAnalyzing
	s.errMsg = ""
	s.inFlight = true
	gen := s.generation
	duration := s.elapsed

	s.preTimer = e.afterFunc(analysisPreDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		cur, ok := e.sessions[id]
		if ok && cur.generation == gen && cur.state == models.StatePreAnalyzing {
			cur.state = models.StateAnalyzing
		}
	})

	questions := s.questions
	answers := s.answers
	go e.analyze(id, gen, s.scenario, questions, answers, s.language, duration)

	return e.snapshot(s), nil
}

// analyze runs the performance analysis off the request goroutine
func (e *Engine) analyze(id string, gen int, scenario *models.ScenarioTemplate, questions []models.Question, answers []models.Answer, language string, duration int) {
	report, err := e.gateway.AnalyzePerformance(e.baseCtx, scenario, questions, answers, language, duration)

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok || s.generation != gen {
		slog.Debug("discarding stale analysis response", "session", id)
		return
	}

	s.inFlight = false
	e.stopPreTimer(s)

	if err != nil {
		s.errMsg = msgAnalysisFailed
		s.state = models.StateError
		slog.Warn("analysis failed", "session", id, "error", err)
		return
	}

	if report.OverallScore >= models.HighScoreThreshold {
		e.notifier.Notify(notify.LevelSuccess, "Achievement Unlocked: High Scorer", "You achieved a score of 90 or higher!")
	}

	s.report = report
	s.endTime = e.now()
	s.state = models.StateFinished

	record := &models.Session{
		ID:           s.id,
		ScenarioID:   s.scenario.ID,
		ScenarioName: s.scenario.Name,
		JobType:      s.scenario.JobType,
		Level:        s.scenario.Level,
		UserID:       e.userID,
		StartTime:    s.startTime,
		EndTime:      s.endTime,
		Answers:      answers,
		Score:        report.OverallScore,
		Analysis:     *report,
	}
	if err := e.repo.SaveSession(e.baseCtx, record); err != nil {
		slog.Error("failed to persist session history", "session", id, "error", err)
	}

	slog.Info("session finished", "id", id, "score", report.OverallScore)
}

// Get returns the live view of a session
func (e *Engine) Get(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.snapshot(s), nil
}

// Restart recovers from the error state: answers, timers and any in-flight
// gateway work are discarded and the session returns to chooseLanguage.
func (e *Engine) Restart(ctx context.Context, id string) (*models.SessionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.state != models.StateError {
		return nil, ErrInvalidState
	}

	e.teardown(s)
	s.generation++
	s.inFlight = false
	s.state = models.StateChooseLanguage
	s.language = ""
	s.questions = nil
	s.answers = nil
	s.currentIndex = 0
	s.elapsed = 0
	s.errMsg = ""
	s.report = nil

	slog.Info("session restarted", "id", id)
	return e.snapshot(s), nil
}

// Abandon removes a session. Any in-flight gateway response finds the
// session gone and is discarded.
func (e *Engine) Abandon(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	e.teardown(s)
	delete(e.sessions, id)
	slog.Info("session abandoned", "id", id)
	return nil
}

// teardown stops a session's timers. Caller holds the lock.
func (e *Engine) teardown(s *liveSession) {
	e.stopPreTimer(s)
	e.stopTicker(s)
}

func (e *Engine) stopPreTimer(s *liveSession) {
	if s.preTimer != nil {
		s.preTimer.Stop()
		s.preTimer = nil
	}
}

func (e *Engine) stopTicker(s *liveSession) {
	if s.tickerCancel != nil {
		s.tickerCancel()
		s.tickerCancel = nil
	}
}

// snapshot builds the client view. Caller holds the lock.
func (e *Engine) snapshot(s *liveSession) *models.SessionSnapshot {
	elapsed := s.elapsed
	if s.state == models.StateInProgress {
		elapsed = int(e.now().Sub(s.startTime) / time.Second)
	}

	return &models.SessionSnapshot{
		ID:             s.id,
		ScenarioID:     s.scenario.ID,
		ScenarioName:   s.scenario.Name,
		State:          s.state,
		Language:       s.language,
		Questions:      s.questions,
		CurrentIndex:   s.currentIndex,
		AnsweredCount:  len(s.answers),
		ElapsedSeconds: elapsed,
		ErrorMessage:   s.errMsg,
		Report:         s.report,
	}
}
