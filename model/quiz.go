// model/quiz.go
package model

import (
	"time"

	"github.com/fazalrahmanedv/quizsync/shared"
)

// Country is a reference lookup record. Rows are created once during the
// first successful sync and are read-only afterwards; the store is truth
// for this table.
type Country struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index"`
	Flag      string    `json:"flag"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Quiz is a single multiple-choice question. The full table is replaced on
// every successful content sync; the network is truth for this table.
// Session-local flags (HasBookmarked, Answered, Skipped, SelectedOption,
// RemainingSeconds) are carried across a resync by remote UUID.
type Quiz struct {
	ID            string  `json:"id" gorm:"primaryKey"`
	UUID          *string `json:"uuid" gorm:"index"` // remote identifier, may be absent
	Question      string  `json:"question" gorm:"type:text"`
	QuestionType  string  `json:"question_type"` // text, htmlText, image
	Option1       string  `json:"option1"`
	Option2       string  `json:"option2"`
	Option3       string  `json:"option3"`
	Option4       string  `json:"option4"`
	CorrectOption int     `json:"correct_option"` // 0-based, normalized from the 1-based wire value
	Sort          int     `json:"sort"`

	HasBookmarked    bool `json:"has_bookmarked" gorm:"default:false"`
	Answered         bool `json:"answered" gorm:"default:false"`
	Skipped          bool `json:"skipped" gorm:"default:false"`
	SelectedOption   *int `json:"selected_option"`
	RemainingSeconds *int `json:"remaining_seconds"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationship
	Solution *QuizSolution `json:"solution" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

// QuizSolution is owned by exactly one Quiz and is destroyed with it.
type QuizSolution struct {
	ID          string `json:"id" gorm:"primaryKey"`
	QuizID      string `json:"quiz_id" gorm:"not null;index"`
	ContentType string `json:"content_type"` // text, htmlText, image
	ContentData string `json:"content_data" gorm:"type:text"`
	Downloaded  bool   `json:"downloaded" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Options returns the four answer options in order.
func (q *Quiz) Options() [4]string {
	return [4]string{q.Option1, q.Option2, q.Option3, q.Option4}
}

// ImageURL returns the question's media URL when the question itself is an
// image, otherwise "".
func (q *Quiz) ImageURL() string {
	if q.QuestionType == shared.QuestionTypeImage {
		return q.Question
	}
	return ""
}

// SolutionData returns the owned solution's content, or "" when the
// solution is missing.
func (q *Quiz) SolutionData() string {
	if q.Solution == nil {
		return ""
	}
	return q.Solution.ContentData
}
