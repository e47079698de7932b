package models

import (
	"time"
)

// ScenarioLevel represents the difficulty tier of a scenario
type ScenarioLevel string

const (
	LevelNewbie     ScenarioLevel = "Newbie"
	LevelExpert     ScenarioLevel = "Expert"
	LevelSpecialist ScenarioLevel = "Specialist"
)

// IsValid returns true if the level is one of the known tiers
func (l ScenarioLevel) IsValid() bool {
	return l == LevelNewbie || l == LevelExpert || l == LevelSpecialist
}

// QuestionTypeMultipleChoice is the only question type produced by the AI
// gateway; every question carries exactly OptionsPerQuestion options.
const QuestionTypeMultipleChoice = "multiple-choice"

const (
	// QuestionsPerSession is the fixed number of questions generated per session
	QuestionsPerSession = 5
	// OptionsPerQuestion is the fixed number of options per question
	OptionsPerQuestion = 3
)

// Question is a single multiple-choice question within a session
type Question struct {
	ID      int      `json:"id" yaml:"id"`
	Type    string   `json:"type" yaml:"type"`
	Text    string   `json:"text" yaml:"text"`
	Options []string `json:"options" yaml:"options"`
}

// ScenarioTemplate describes a training scenario. Built-in catalog entries are
// immutable; user-authored scenarios may carry a pre-baked question list and
// a one-way unpublished → published transition.
type ScenarioTemplate struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	JobType     string        `json:"jobType" yaml:"job_type"`
	Level       ScenarioLevel `json:"level" yaml:"level"`
	Description string        `json:"description" yaml:"description"`
	Tags        []string      `json:"tags" yaml:"tags"`
	AuthorID    string        `json:"authorId,omitempty" yaml:"author_id"`
	AuthorName  string        `json:"authorName,omitempty" yaml:"author_name"`
	IsPublished bool          `json:"isPublished,omitempty" yaml:"is_published"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty" yaml:"-"`
	Questions   []Question    `json:"questions,omitempty" yaml:"questions"`
}

// HasQuestions returns true if the scenario carries a pre-baked question list
func (s *ScenarioTemplate) HasQuestions() bool {
	return len(s.Questions) > 0
}

// CreateScenarioRequest represents a request to save a user-authored scenario
type CreateScenarioRequest struct {
	Name        string        `json:"name"`
	JobType     string        `json:"jobType"`
	Level       ScenarioLevel `json:"level"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Questions   []Question    `json:"questions,omitempty"`
}

// GenerateScenarioRequest asks the AI gateway for a custom scenario
type GenerateScenarioRequest struct {
	JobType string `json:"jobType"`
	Level   string `json:"level"`
	Topic   string `json:"topic"`
}
