package ai

import (
	"errors"
	"testing"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

func reportWithBreakdown(score, entries int) *models.AnalysisReport {
	breakdown := make([]models.QuestionFeedback, entries)
	for i := range breakdown {
		breakdown[i] = models.QuestionFeedback{
			QuestionText: "What next?",
			UserAnswer:   "Option A",
			AIFeedback:   "Sound choice.",
		}
	}
	return &models.AnalysisReport{
		OverallScore:      score,
		Strengths:         []string{"calm"},
		Weaknesses:        []string{"slow"},
		QuestionBreakdown: breakdown,
	}
}

func TestValidateReport(t *testing.T) {
	if err := ValidateReport(reportWithBreakdown(92, 5), 5); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}

	if err := ValidateReport(nil, 5); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("nil report: expected ErrEmptyResult, got %v", err)
	}
	if err := ValidateReport(reportWithBreakdown(101, 5), 5); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("out-of-range score: expected ErrEmptyResult, got %v", err)
	}
	if err := ValidateReport(reportWithBreakdown(-1, 5), 5); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("negative score: expected ErrEmptyResult, got %v", err)
	}

	// One breakdown entry per submitted answer, no more, no fewer.
	if err := ValidateReport(reportWithBreakdown(92, 3), 5); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("short breakdown: expected ErrEmptyResult, got %v", err)
	}
	if err := ValidateReport(reportWithBreakdown(92, 6), 5); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("long breakdown: expected ErrEmptyResult, got %v", err)
	}
	if err := ValidateReport(reportWithBreakdown(92, 0), 0); err != nil {
		t.Errorf("empty breakdown for zero answers should pass, got %v", err)
	}
}

func TestValidateQuestions(t *testing.T) {
	questions := make([]models.Question, models.QuestionsPerSession)
	for i := range questions {
		questions[i] = models.Question{
			ID:      i + 1,
			Type:    models.QuestionTypeMultipleChoice,
			Text:    "What next?",
			Options: []string{"a", "b", "c"},
		}
	}
	if err := ValidateQuestions(questions); err != nil {
		t.Fatalf("valid questions rejected: %v", err)
	}

	if err := ValidateQuestions(nil); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("empty list: expected ErrEmptyResult, got %v", err)
	}
	if err := ValidateQuestions(questions[:3]); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("short list: expected ErrEmptyResult, got %v", err)
	}

	broken := make([]models.Question, models.QuestionsPerSession)
	copy(broken, questions)
	broken[2].Options = []string{"a"}
	if err := ValidateQuestions(broken); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("bad option count: expected ErrEmptyResult, got %v", err)
	}
}
