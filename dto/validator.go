package dto

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func GetValidator() *validator.Validate {
	return validate
}

// PlayableQuiz is the subset of quiz fields a question must carry before it
// may enter a session: non-empty prompt and options, a correct option inside
// the answer range and a non-empty solution.
type PlayableQuiz struct {
	Question      string `validate:"required"`
	Option1       string `validate:"required"`
	Option2       string `validate:"required"`
	Option3       string `validate:"required"`
	Option4       string `validate:"required"`
	CorrectOption int    `validate:"min=0,max=3"`
	SolutionData  string `validate:"required"`
}

// Valid reports whether the projection passes the playability rules.
func (p PlayableQuiz) Valid() bool {
	return validate.Struct(p) == nil
}
