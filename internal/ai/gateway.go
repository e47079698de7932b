package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Common errors. ErrEmptyResult covers "the AI produced nothing usable"
// (zero or malformed items) as opposed to a transport failure.
var (
	ErrEmptyResult = errors.New("ai gateway returned no usable result")
)

// Gateway is the generative AI backend consumed by the core. Calls are
// potentially slow, potentially failing remote operations; callers must never
// issue overlapping requests for the same session and must not retry
// automatically.
type Gateway interface {
	// GenerateQuestions returns exactly 5 multiple-choice questions with 3
	// options each, in the requested language.
	GenerateQuestions(ctx context.Context, scenario *models.ScenarioTemplate, language string) ([]models.Question, error)

	// AnalyzePerformance produces the structured report for a finished
	// question run.
	AnalyzePerformance(ctx context.Context, scenario *models.ScenarioTemplate, questions []models.Question, answers []models.Answer, language string, durationSeconds int) (*models.AnalysisReport, error)

	// GenerateCustomScenario builds a scenario template from a user request
	GenerateCustomScenario(ctx context.Context, jobType, level, topic string) (*models.ScenarioTemplate, error)

	// SuggestChallenge tailors a new scenario to weaknesses observed in the
	// user's session history.
	SuggestChallenge(ctx context.Context, history []models.Session) (*models.ScenarioTemplate, error)

	// BreakdownTask splits a high-level task into 3-7 sub-tasks with XP
	// estimates in the 5-50 range.
	BreakdownTask(ctx context.Context, title string) ([]models.Subtask, error)

	// NoteSuggestion returns one actionable suggestion for a note
	NoteSuggestion(ctx context.Context, content, language string) (string, error)
}

// ValidateQuestions checks the question-generation contract: a non-empty
// ordered list of exactly QuestionsPerSession questions, each multiple-choice
// with exactly OptionsPerQuestion options.
func ValidateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return ErrEmptyResult
	}
	if len(questions) != models.QuestionsPerSession {
		return fmt.Errorf("%w: expected %d questions, got %d", ErrEmptyResult, models.QuestionsPerSession, len(questions))
	}
	for i, q := range questions {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrEmptyResult, i)
		}
		if len(q.Options) != models.OptionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options, expected %d", ErrEmptyResult, i, len(q.Options), models.OptionsPerQuestion)
		}
	}
	return nil
}

// ValidateReport checks the analysis contract: an overall score in 0-100 and
// exactly one questionBreakdown entry per submitted answer. The breakdown is
// schema-ordered, so matching lengths keeps it aligned with the answer list.
func ValidateReport(report *models.AnalysisReport, answerCount int) error {
	if report == nil {
		return ErrEmptyResult
	}
	if report.OverallScore < 0 || report.OverallScore > 100 {
		return fmt.Errorf("%w: overall score %d out of range", ErrEmptyResult, report.OverallScore)
	}
	if len(report.QuestionBreakdown) != answerCount {
		return fmt.Errorf("%w: breakdown has %d entries for %d answers", ErrEmptyResult, len(report.QuestionBreakdown), answerCount)
	}
	return nil
}

// ValidateSubtasks checks the task-breakdown contract
func ValidateSubtasks(subtasks []models.Subtask) error {
	if len(subtasks) == 0 {
		return ErrEmptyResult
	}
	for i, st := range subtasks {
		if st.Title == "" {
			return fmt.Errorf("%w: subtask %d has no title", ErrEmptyResult, i)
		}
		if st.XP < models.TaskXPMin || st.XP > models.TaskXPMax {
			return fmt.Errorf("%w: subtask %d xp %d outside %d-%d", ErrEmptyResult, i, st.XP, models.TaskXPMin, models.TaskXPMax)
		}
	}
	return nil
}
