// Package models defines data structures used throughout the worldquest backend.
package models

import (
	"time"
)

// QuestionSource identifies where a question came from.
type QuestionSource string

const (
	// SourceDataset is for questions produced by the fallback template generator
	SourceDataset QuestionSource = "dataset"
	// SourceAI is for questions produced by the generation backend
	SourceAI QuestionSource = "ai"
	// SourceManual is for hand-authored questions
	SourceManual QuestionSource = "manual"
)

// Difficulty bounds for questions.
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// ChoiceCount is the number of answer choices every question carries.
const ChoiceCount = 4

// Question represents a country trivia question
type Question struct {
	ID             int            `json:"id" yaml:"id"`
	Country        string         `json:"country" yaml:"country"`
	Category       string         `json:"category" yaml:"category"`
	MetricKey      string         `json:"metric_key,omitempty" yaml:"metric_key,omitempty"`
	Prompt         string         `json:"prompt" yaml:"prompt"`
	Choices        []string       `json:"choices" yaml:"choices"`
	CorrectIndex   int            `json:"correct_index" yaml:"correct_index"`
	Explanation    string         `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	DidYouKnow     string         `json:"did_you_know,omitempty" yaml:"did_you_know,omitempty"`
	SurprisingFact string         `json:"surprising_fact,omitempty" yaml:"surprising_fact,omitempty"`
	Insight        string         `json:"insight,omitempty" yaml:"insight,omitempty"`
	Difficulty     int            `json:"difficulty" yaml:"difficulty"`
	Source         QuestionSource `json:"source" yaml:"source"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
}

// CorrectAnswer returns the choice at the correct index, or "" when the
// index is out of range.
func (q *Question) CorrectAnswer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
		return ""
	}
	return q.Choices[q.CorrectIndex]
}

// QuestionDraft is a raw candidate question before validation and repair.
// The field names mirror the JSON keys the generation backend is asked to
// produce.
type QuestionDraft struct {
	DidYouKnow     string   `json:"did_you_know"`
	Prompt         string   `json:"prompt"`
	Choices        []string `json:"choices"`
	CorrectIndex   int      `json:"correct_index"`
	Explanation    string   `json:"explanation,omitempty"`
	SurprisingFact string   `json:"surprising_fact,omitempty"`
	Insight        string   `json:"insight,omitempty"`
	Difficulty     int      `json:"difficulty"`
	Category       string   `json:"category,omitempty"`
}

// Country represents a country known to the system
type Country struct {
	ID         int       `json:"id" yaml:"id"`
	ISO2       string    `json:"iso2" yaml:"iso2"`
	Name       string    `json:"name" yaml:"name"`
	Region     string    `json:"region,omitempty" yaml:"region,omitempty"`
	OrderIndex int       `json:"order_index" yaml:"order_index"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Fact represents a standalone fun fact about a country
type Fact struct {
	ID        int            `json:"id" yaml:"id"`
	Country   string         `json:"country" yaml:"country"`
	Text      string         `json:"text" yaml:"text"`
	Source    QuestionSource `json:"source" yaml:"source"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// QuizResponse is the payload served for a country quiz request
type QuizResponse struct {
	Country   string     `json:"country"`
	Questions []Question `json:"questions"`
	FunFact   string     `json:"fun_fact,omitempty"`
}
