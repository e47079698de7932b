package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/notify"
)

// stubGateway scripts the AI gateway for engine tests. Each call blocks on
// its release channel when one is set, so tests can hold a fetch in flight.
type stubGateway struct {
	mu            sync.Mutex
	questions     []models.Question
	questionsErr  error
	report        *models.AnalysisReport
	reportErr     error
	questionCalls int
	analyzeCalls  int
	lastDuration  int
	lastLanguage  string

	questionGate chan struct{}
	analyzeGate  chan struct{}
}

func (g *stubGateway) GenerateQuestions(ctx context.Context, scenario *models.ScenarioTemplate, language string) ([]models.Question, error) {
	g.mu.Lock()
	g.questionCalls++
	g.lastLanguage = language
	gate := g.questionGate
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return g.questions, g.questionsErr
}

func (g *stubGateway) AnalyzePerformance(ctx context.Context, scenario *models.ScenarioTemplate, questions []models.Question, answers []models.Answer, language string, durationSeconds int) (*models.AnalysisReport, error) {
	g.mu.Lock()
	g.analyzeCalls++
	g.lastDuration = durationSeconds
	gate := g.analyzeGate
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return g.report, g.reportErr
}

func (g *stubGateway) GenerateCustomScenario(ctx context.Context, jobType, level, topic string) (*models.ScenarioTemplate, error) {
	return nil, errors.New("not scripted")
}

func (g *stubGateway) SuggestChallenge(ctx context.Context, history []models.Session) (*models.ScenarioTemplate, error) {
	return nil, errors.New("not scripted")
}

func (g *stubGateway) BreakdownTask(ctx context.Context, title string) ([]models.Subtask, error) {
	return nil, errors.New("not scripted")
}

func (g *stubGateway) NoteSuggestion(ctx context.Context, content, language string) (string, error) {
	return "", errors.New("not scripted")
}

// historyRepo records persisted sessions
type historyRepo struct {
	mu    sync.Mutex
	saved []*models.Session
}

func (r *historyRepo) SaveSession(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	return nil
}

func (r *historyRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return nil, nil
}

func (r *historyRepo) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.Session, error) {
	return nil, nil
}

func (r *historyRepo) ListSessionsByJobType(ctx context.Context, userID, jobType string) ([]*models.Session, error) {
	return nil, nil
}

func (r *historyRepo) GetFieldLevels(ctx context.Context, userID string) ([]*models.FieldLevel, error) {
	return nil, nil
}

func (r *historyRepo) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	return nil
}

func (r *historyRepo) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return nil, nil
}

func (r *historyRepo) ActivateSubscription(ctx context.Context, subscriptionID string) error {
	return nil
}

func (r *historyRepo) Ping(ctx context.Context) error { return nil }
func (r *historyRepo) Close() error                   { return nil }

type engineNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *engineNotifier) Notify(level notify.Level, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
}

func (n *engineNotifier) count(title string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, t := range n.titles {
		if t == title {
			c++
		}
	}
	return c
}

type mapResolver map[string]*models.ScenarioTemplate

func (m mapResolver) Resolve(id string) (*models.ScenarioTemplate, bool) {
	s, ok := m[id]
	return s, ok
}

func zeroDayScenario() *models.ScenarioTemplate {
	return &models.ScenarioTemplate{
		ID:          "it-security-breach",
		Name:        "Zero-Day Vulnerability",
		JobType:     "Information Technology",
		Level:       models.LevelSpecialist,
		Description: "A zero-day exploit is discovered in your main application framework.",
		Tags:        []string{"Cybersecurity"},
	}
}

func fiveQuestions() []models.Question {
	qs := make([]models.Question, models.QuestionsPerSession)
	for i := range qs {
		qs[i] = models.Question{
			ID:      i + 1,
			Type:    models.QuestionTypeMultipleChoice,
			Text:    fmt.Sprintf("Question %d", i+1),
			Options: []string{"Option A", "Option B", "Option C"},
		}
	}
	return qs
}

func goodReport(score int) *models.AnalysisReport {
	breakdown := make([]models.QuestionFeedback, models.QuestionsPerSession)
	for i := range breakdown {
		breakdown[i] = models.QuestionFeedback{
			QuestionText: fmt.Sprintf("Question %d", i+1),
			UserAnswer:   "Option A",
			AIFeedback:   "Reasonable.",
		}
	}
	return &models.AnalysisReport{
		OverallScore:          score,
		Strengths:             []string{"decisive"},
		Weaknesses:            []string{"hasty"},
		Optimizations:         []string{"slow down"},
		ResponseSpeedAnalysis: "quick",
		QuestionBreakdown:     breakdown,
	}
}

type testEnv struct {
	engine   *Engine
	gateway  *stubGateway
	repo     *historyRepo
	notifier *engineNotifier
	timers   []func()
	clock    time.Time
	clockMu  sync.Mutex
}

func newTestEnv(t *testing.T, resolver ScenarioResolver) *testEnv {
	t.Helper()
	env := &testEnv{
		gateway:  &stubGateway{},
		repo:     &historyRepo{},
		notifier: &engineNotifier{},
		clock:    time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
	env.engine = NewEngine(env.gateway, resolver, env.repo, env.notifier, "user-123")
	env.engine.now = func() time.Time {
		env.clockMu.Lock()
		defer env.clockMu.Unlock()
		return env.clock
	}
	// Capture cosmetic timers instead of scheduling them
	env.engine.afterFunc = func(d time.Duration, f func()) *time.Timer {
		env.timers = append(env.timers, f)
		return time.AfterFunc(time.Hour, func() {})
	}
	t.Cleanup(env.engine.Close)
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.clockMu.Lock()
	env.clock = env.clock.Add(d)
	env.clockMu.Unlock()
}

func (env *testEnv) firePendingTimers() {
	timers := env.timers
	env.timers = nil
	for _, f := range timers {
		f()
	}
}

// waitForState polls until the session leaves its loading states
func waitForState(t *testing.T, env *testEnv, id string, want models.SessionState) *models.SessionSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := env.engine.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if snap.State == want {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	snap, _ := env.engine.Get(context.Background(), id)
	t.Fatalf("session never reached %s, stuck in %s", want, snap.State)
	return nil
}

func TestFullSessionFlow(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questions = fiveQuestions()
	env.gateway.report = goodReport(92)
	ctx := context.Background()

	snap, err := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if snap.State != models.StateChooseLanguage {
		t.Fatalf("expected chooseLanguage, got %s", snap.State)
	}

	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatalf("ChooseLanguage failed: %v", err)
	}

	snap = waitForState(t, env, snap.ID, models.StateInProgress)
	if len(snap.Questions) != models.QuestionsPerSession {
		t.Fatalf("expected %d questions, got %d", models.QuestionsPerSession, len(snap.Questions))
	}
	if snap.CurrentIndex != 0 {
		t.Errorf("index should start at 0, got %d", snap.CurrentIndex)
	}

	// Answer the first four questions
	for i := 0; i < 4; i++ {
		snap, err = env.engine.SubmitAnswer(ctx, snap.ID, models.SubmitAnswerRequest{Option: "Option A"})
		if err != nil {
			t.Fatalf("SubmitAnswer %d failed: %v", i, err)
		}
		if snap.State != models.StateInProgress {
			t.Fatalf("expected inProgress after answer %d, got %s", i, snap.State)
		}
		if snap.CurrentIndex != i+1 {
			t.Errorf("expected index %d, got %d", i+1, snap.CurrentIndex)
		}
	}

	// Two minutes on the clock, then the last answer triggers analysis
	env.advance(2 * time.Minute)
	snap, err = env.engine.SubmitAnswer(ctx, snap.ID, models.SubmitAnswerRequest{Option: "Option B", Justification: "isolate first"})
	if err != nil {
		t.Fatalf("final SubmitAnswer failed: %v", err)
	}
	if snap.State != models.StatePreAnalyzing {
		t.Fatalf("expected preAnalyzing, got %s", snap.State)
	}

	snap = waitForState(t, env, snap.ID, models.StateFinished)
	if snap.Report == nil || snap.Report.OverallScore != 92 {
		t.Fatalf("unexpected report: %+v", snap.Report)
	}
	if env.gateway.lastDuration != 120 {
		t.Errorf("expected 120s duration passed to analysis, got %d", env.gateway.lastDuration)
	}

	// Exactly one high scorer notification
	if got := env.notifier.count("Achievement Unlocked: High Scorer"); got != 1 {
		t.Errorf("expected exactly one high scorer notification, got %d", got)
	}

	// History record persisted
	if len(env.repo.saved) != 1 {
		t.Fatalf("expected 1 saved session, got %d", len(env.repo.saved))
	}
	record := env.repo.saved[0]
	if record.Score != 92 || record.ScenarioName != "Zero-Day Vulnerability" || record.JobType != "Information Technology" {
		t.Errorf("unexpected history record: %+v", record)
	}
	if len(record.Answers) != models.QuestionsPerSession {
		t.Errorf("expected %d answers, got %d", models.QuestionsPerSession, len(record.Answers))
	}
	if !strings.Contains(record.Answers[4].Answer, `Selected Option: "Option B"`) ||
		!strings.Contains(record.Answers[4].Answer, "isolate first") {
		t.Errorf("answer text lost the option or justification: %s", record.Answers[4].Answer)
	}
	if !strings.Contains(record.Answers[0].Answer, "Not provided.") {
		t.Errorf("missing justification placeholder: %s", record.Answers[0].Answer)
	}

	// One breakdown entry per answer, in question order
	if len(record.Analysis.QuestionBreakdown) != len(record.Answers) {
		t.Fatalf("expected %d breakdown entries, got %d", len(record.Answers), len(record.Analysis.QuestionBreakdown))
	}
	for i, fb := range record.Analysis.QuestionBreakdown {
		if want := fmt.Sprintf("Question %d", i+1); fb.QuestionText != want {
			t.Errorf("breakdown entry %d out of order: got %q, want %q", i, fb.QuestionText, want)
		}
	}
}

func TestNoHighScorerNotificationBelowThreshold(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questions = fiveQuestions()
	env.gateway.report = goodReport(89)
	ctx := context.Background()

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatal(err)
	}
	waitForState(t, env, snap.ID, models.StateInProgress)
	for i := 0; i < models.QuestionsPerSession; i++ {
		if _, err := env.engine.SubmitAnswer(ctx, snap.ID, models.SubmitAnswerRequest{Option: "Option A"}); err != nil {
			t.Fatal(err)
		}
	}
	waitForState(t, env, snap.ID, models.StateFinished)

	if got := env.notifier.count("Achievement Unlocked: High Scorer"); got != 0 {
		t.Errorf("score 89 must not notify, got %d notifications", got)
	}
}

func TestPreBakedQuestionsBypassGateway(t *testing.T) {
	scenario := zeroDayScenario()
	scenario.ID = "user-challenge"
	scenario.Questions = fiveQuestions()
	env := newTestEnv(t, mapResolver{})
	ctx := context.Background()

	snap, err := env.engine.Start(ctx, models.StartSessionRequest{Scenario: scenario})
	if err != nil {
		t.Fatal(err)
	}
	snap, err = env.engine.ChooseLanguage(ctx, snap.ID, "Indonesian Native")
	if err != nil {
		t.Fatal(err)
	}

	if snap.State != models.StateInProgress {
		t.Fatalf("pre-baked scenario should go straight to inProgress, got %s", snap.State)
	}
	if env.gateway.questionCalls != 0 {
		t.Errorf("gateway must not be called for pre-baked questions, got %d calls", env.gateway.questionCalls)
	}
}

func TestAuthoredScenarioWithoutQuestionsCannotStart(t *testing.T) {
	scenario := zeroDayScenario()
	scenario.ID = "user-empty-challenge"
	scenario.AuthorID = "user-123"
	env := newTestEnv(t, mapResolver{"user-empty-challenge": scenario})
	ctx := context.Background()

	if _, err := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "user-empty-challenge"}); !errors.Is(err, ErrNeedsQuestions) {
		t.Errorf("expected ErrNeedsQuestions, got %v", err)
	}

	inline := zeroDayScenario()
	inline.AuthorID = "user-123"
	if _, err := env.engine.Start(ctx, models.StartSessionRequest{Scenario: inline}); !errors.Is(err, ErrNeedsQuestions) {
		t.Errorf("expected ErrNeedsQuestions for inline scenario, got %v", err)
	}
}

func TestCosmeticPhaseAdvanceAndResolutionWins(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questions = fiveQuestions()
	gate := make(chan struct{})
	env.gateway.questionGate = gate
	ctx := context.Background()

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	snap, err := env.engine.ChooseLanguage(ctx, snap.ID, "English")
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != models.StatePreLoadingQuestions {
		t.Fatalf("expected preLoadingQuestions, got %s", snap.State)
	}

	// The fixed-delay timer fires while the fetch is still out
	env.firePendingTimers()
	snap, _ = env.engine.Get(ctx, snap.ID)
	if snap.State != models.StateLoadingQuestions {
		t.Fatalf("expected loadingQuestions after timer, got %s", snap.State)
	}

	close(gate)
	snap = waitForState(t, env, snap.ID, models.StateInProgress)

	// A late timer firing must not knock the session out of inProgress
	env.firePendingTimers()
	snap, _ = env.engine.Get(ctx, snap.ID)
	if snap.State != models.StateInProgress {
		t.Errorf("late cosmetic timer changed state to %s", snap.State)
	}
}

func TestQuestionFailureTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"empty result", ai.ErrEmptyResult, msgQuestionsFailed},
		{"transport error", errors.New("dial tcp: connection refused"), msgConnectionFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
			env.gateway.questionsErr = tc.err
			ctx := context.Background()

			snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
			if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
				t.Fatal(err)
			}
			snap = waitForState(t, env, snap.ID, models.StateError)
			if snap.ErrorMessage != tc.wantMsg {
				t.Errorf("expected %q, got %q", tc.wantMsg, snap.ErrorMessage)
			}
		})
	}
}

func TestAnalysisFailure(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questions = fiveQuestions()
	env.gateway.reportErr = errors.New("http 500")
	ctx := context.Background()

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatal(err)
	}
	waitForState(t, env, snap.ID, models.StateInProgress)
	for i := 0; i < models.QuestionsPerSession; i++ {
		if _, err := env.engine.SubmitAnswer(ctx, snap.ID, models.SubmitAnswerRequest{Option: "Option A"}); err != nil {
			t.Fatal(err)
		}
	}

	snap = waitForState(t, env, snap.ID, models.StateError)
	if snap.ErrorMessage != msgAnalysisFailed {
		t.Errorf("unexpected error message: %q", snap.ErrorMessage)
	}
	if len(env.repo.saved) != 0 {
		t.Error("failed analysis must not persist history")
	}
}

func TestRestartFromError(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questionsErr = ai.ErrEmptyResult
	ctx := context.Background()

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatal(err)
	}
	waitForState(t, env, snap.ID, models.StateError)

	snap, err := env.engine.Restart(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if snap.State != models.StateChooseLanguage {
		t.Errorf("expected chooseLanguage after restart, got %s", snap.State)
	}
	if snap.Language != "" || snap.AnsweredCount != 0 || snap.ErrorMessage != "" {
		t.Errorf("restart must reset the attempt: %+v", snap)
	}

	// A second run can now succeed
	env.gateway.questionsErr = nil
	env.gateway.questions = fiveQuestions()
	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatal(err)
	}
	waitForState(t, env, snap.ID, models.StateInProgress)
}

func TestRestartOnlyFromError(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	ctx := context.Background()

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	if _, err := env.engine.Restart(ctx, snap.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestStaleResponseDiscardedAfterAbandon(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questions = fiveQuestions()
	gate := make(chan struct{})
	env.gateway.questionGate = gate
	ctx := context.Background()

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})
	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatal(err)
	}

	if err := env.engine.Abandon(ctx, snap.ID); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	close(gate)

	// Give the in-flight goroutine time to return and be discarded
	time.Sleep(20 * time.Millisecond)
	if _, err := env.engine.Get(ctx, snap.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("abandoned session must stay gone, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	env := newTestEnv(t, mapResolver{"it-security-breach": zeroDayScenario()})
	env.gateway.questions = fiveQuestions()
	ctx := context.Background()

	if _, err := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "missing"}); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("expected ErrScenarioNotFound, got %v", err)
	}

	snap, _ := env.engine.Start(ctx, models.StartSessionRequest{ScenarioID: "it-security-breach"})

	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "Klingon"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if _, err := env.engine.SubmitAnswer(ctx, snap.ID, models.SubmitAnswerRequest{Option: "A"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("answers before inProgress must fail, got %v", err)
	}

	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); err != nil {
		t.Fatal(err)
	}
	// Second language selection while the first is in flight
	if _, err := env.engine.ChooseLanguage(ctx, snap.ID, "English"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState for double start, got %v", err)
	}

	waitForState(t, env, snap.ID, models.StateInProgress)
	if _, err := env.engine.SubmitAnswer(ctx, snap.ID, models.SubmitAnswerRequest{Option: ""}); !errors.Is(err, ErrOptionRequired) {
		t.Errorf("expected ErrOptionRequired, got %v", err)
	}
}
