package models

import (
	"time"
)

// SessionState represents the current state of a live session.
// Progression is strictly linear; the only cycle is an explicit restart from
// the error state back to choosing a language.
type SessionState string

const (
	StateChooseLanguage      SessionState = "chooseLanguage"
	StatePreLoadingQuestions SessionState = "preLoadingQuestions"
	StateLoadingQuestions    SessionState = "loadingQuestions"
	StateInProgress          SessionState = "inProgress"
	StatePreAnalyzing        SessionState = "preAnalyzing"
	StateAnalyzing           SessionState = "analyzing"
	StateFinished            SessionState = "finished"
	StateError               SessionState = "error"
)

// IsTerminal returns true if the session has reached a final state.
// The error state is terminal for the attempt but allows restart.
func (s SessionState) IsTerminal() bool {
	return s == StateFinished || s == StateError
}

// IsLoading returns true while a gateway call (or its cosmetic pre-phase)
// is in flight.
func (s SessionState) IsLoading() bool {
	return s == StatePreLoadingQuestions || s == StateLoadingQuestions ||
		s == StatePreAnalyzing || s == StateAnalyzing
}

// SessionLanguages are the exactly two supported locales
var SessionLanguages = []string{"English", "Indonesian Native"}

// IsSupportedLanguage reports whether lang is one of the two locales
func IsSupportedLanguage(lang string) bool {
	for _, l := range SessionLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Answer pairs a question with the user's combined answer text (selected
// option plus optional justification). One answer per question, in order.
type Answer struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

// Session is the historical record written once a session finishes.
// Read-only afterward.
type Session struct {
	ID           string         `json:"id"`
	ScenarioID   string         `json:"scenarioId"`
	ScenarioName string         `json:"scenarioName"`
	JobType      string         `json:"jobType"`
	Level        ScenarioLevel  `json:"level"`
	UserID       string         `json:"userId"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      time.Time      `json:"endTime"`
	Answers      []Answer       `json:"answers"`
	Score        int            `json:"score"`
	Analysis     AnalysisReport `json:"analysis"`
}

// FieldLevel is the aggregate mastery level for one job type, computed as
// floor(sum(scores)/100) + 1 over that field's session history.
type FieldLevel struct {
	JobType string `json:"jobType"`
	TotalXP int    `json:"totalXp"`
	Level   int    `json:"level"`
}

// StartSessionRequest represents a request to open a live session.
// Scenario may carry a full user-authored template (custom challenge); when
// absent, ScenarioID must name a catalog or user scenario.
type StartSessionRequest struct {
	ScenarioID string            `json:"scenario_id,omitempty"`
	Scenario   *ScenarioTemplate `json:"scenario,omitempty"`
}

// ChooseLanguageRequest selects the session locale and starts the question flow
type ChooseLanguageRequest struct {
	Language string `json:"language"`
}

// SubmitAnswerRequest records the answer to the current question.
// Option is required; Justification is optional free text.
type SubmitAnswerRequest struct {
	Option        string `json:"option"`
	Justification string `json:"justification,omitempty"`
}

// SessionSnapshot is the live view of a session returned to the client
type SessionSnapshot struct {
	ID             string          `json:"id"`
	ScenarioID     string          `json:"scenario_id"`
	ScenarioName   string          `json:"scenario_name"`
	State          SessionState    `json:"state"`
	Language       string          `json:"language,omitempty"`
	Questions      []Question      `json:"questions,omitempty"`
	CurrentIndex   int             `json:"current_index"`
	AnsweredCount  int             `json:"answered_count"`
	ElapsedSeconds int             `json:"elapsed_seconds"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Report         *AnalysisReport `json:"report,omitempty"`
}
