package shared

const (
	QuestionTypeText     = "text"
	QuestionTypeHtmlText = "htmlText"
	QuestionTypeImage    = "image"
)

// ValidQuestionType reports whether t is one of the known question kinds.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeText, QuestionTypeHtmlText, QuestionTypeImage:
		return true
	}
	return false
}
