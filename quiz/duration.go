package quiz

import (
	"strings"

	"github.com/fazalrahmanedv/quizsync/shared"
)

const (
	// DefaultQuestionSeconds is the timer budget for image questions and
	// anything the estimator cannot read.
	DefaultQuestionSeconds = 60

	minQuestionSeconds = 15
	maxQuestionSeconds = 180
)

// DurationEstimator derives a per-question countdown budget from the
// prompt. Text-like prompts get a reading-time estimate from word count
// and average word length; other kinds get the fixed default.
type DurationEstimator struct{}

func (DurationEstimator) EstimateSeconds(questionType, text string) int {
	if questionType != shared.QuestionTypeText && questionType != shared.QuestionTypeHtmlText {
		return DefaultQuestionSeconds
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return DefaultQuestionSeconds
	}

	totalLen := 0
	for _, w := range words {
		totalLen += len([]rune(w))
	}
	avgWordLen := float64(totalLen) / float64(len(words))

	// Reading budget: a fixed floor plus per-word time, weighted by how
	// long the words run relative to typical prose.
	seconds := 10.0 + float64(len(words))*0.9*(avgWordLen/4.7)

	switch {
	case seconds < minQuestionSeconds:
		return minQuestionSeconds
	case seconds > maxQuestionSeconds:
		return maxQuestionSeconds
	}
	return int(seconds)
}
