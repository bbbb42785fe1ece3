// Package quiz holds the per-session state machine consuming synced
// content: answer, bookmark and countdown state keyed by question index.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/fazalrahmanedv/quizsync/dto"
	"github.com/fazalrahmanedv/quizsync/model"
	log "github.com/sirupsen/logrus"
)

// MinPlayableCount is the smallest valid quiz set a session may start with.
const MinPlayableCount = 5

var ErrNotEnoughQuizzes = errors.New("not enough playable quizzes")

// Store is the slice of the persistence layer the session writes through:
// bookmark toggles immediately, answer and timer state as it changes.
type Store interface {
	UpdateBookmark(quizID string, bookmarked bool) error
	SaveQuizState(quizID string, selected *int, remaining *int, answered, skipped bool) error
}

type itemState struct {
	selected   *int
	answered   bool
	timedOut   bool
	bookmarked bool
	remaining  int
}

// Session runs one quiz over a list fixed at construction. All per-item
// state lives here behind accessors; answered items never un-answer.
type Session struct {
	store     Store
	quizzes   []model.Quiz
	estimator DurationEstimator

	current    int
	maxReached int
	paused     bool
	states     []itemState
}

// NewSession builds a session over the playable subset of quizzes in their
// given order. Fails when fewer than MinPlayableCount items survive the
// validity filter.
func NewSession(quizzes []model.Quiz, store Store) (*Session, error) {
	valid := Playable(quizzes)
	if len(valid) < MinPlayableCount {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughQuizzes, MinPlayableCount, len(valid))
	}
	return newSession(valid, store), nil
}

// NewShuffledSession picks MinPlayableCount playable quizzes at random.
func NewShuffledSession(quizzes []model.Quiz, store Store) (*Session, error) {
	valid := Playable(quizzes)
	if len(valid) < MinPlayableCount {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughQuizzes, MinPlayableCount, len(valid))
	}
	rand.Shuffle(len(valid), func(i, j int) {
		valid[i], valid[j] = valid[j], valid[i]
	})
	return newSession(valid[:MinPlayableCount], store), nil
}

func newSession(quizzes []model.Quiz, store Store) *Session {
	s := &Session{
		store:   store,
		quizzes: quizzes,
		states:  make([]itemState, len(quizzes)),
	}
	for i := range quizzes {
		s.states[i] = s.initialState(&quizzes[i])
	}
	return s
}

func (s *Session) initialState(q *model.Quiz) itemState {
	st := itemState{
		bookmarked: q.HasBookmarked,
		remaining:  s.estimator.EstimateSeconds(q.QuestionType, q.Question),
	}
	// Previously persisted state wins over a fresh estimate.
	if q.RemainingSeconds != nil {
		st.remaining = *q.RemainingSeconds
	}
	if q.Answered && q.SelectedOption != nil {
		st.answered = true
		st.selected = q.SelectedOption
	}
	if q.Skipped {
		st.timedOut = true
	}
	return st
}

// Playable filters quizzes down to the ones carrying enough data to be
// presented.
func Playable(quizzes []model.Quiz) []model.Quiz {
	valid := make([]model.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		p := dto.PlayableQuiz{
			Question:      q.Question,
			Option1:       q.Option1,
			Option2:       q.Option2,
			Option3:       q.Option3,
			Option4:       q.Option4,
			CorrectOption: q.CorrectOption,
			SolutionData:  q.SolutionData(),
		}
		if p.Valid() {
			valid = append(valid, q)
		}
	}
	return valid
}

// ==================== ACCESSORS ====================

func (s *Session) Count() int {
	return len(s.quizzes)
}

func (s *Session) Index() int {
	return s.current
}

// MaxIndexReached is the highest index ever visited, for progress reporting.
func (s *Session) MaxIndexReached() int {
	return s.maxReached
}

func (s *Session) Current() *model.Quiz {
	return &s.quizzes[s.current]
}

func (s *Session) SelectedAnswer() (int, bool) {
	st := s.states[s.current]
	if st.selected == nil {
		return 0, false
	}
	return *st.selected, true
}

func (s *Session) Answered() bool {
	return s.states[s.current].answered
}

// InputDisabled reports whether the current item accepts no further input:
// already answered, or its timer ran out.
func (s *Session) InputDisabled() bool {
	st := s.states[s.current]
	return st.answered || st.timedOut || st.remaining <= 0
}

func (s *Session) RemainingSeconds() int {
	return s.states[s.current].remaining
}

func (s *Session) Bookmarked() bool {
	return s.states[s.current].bookmarked
}

// TimerActive reports whether Tick will currently decrement.
func (s *Session) TimerActive() bool {
	return !s.paused && !s.InputDisabled()
}

// ==================== TIMER ====================

// Tick advances the current item's countdown by one second. At zero the
// item auto-submits as a timeout and stops accepting input.
func (s *Session) Tick() {
	if !s.TimerActive() {
		return
	}
	st := &s.states[s.current]
	st.remaining--
	if st.remaining <= 0 {
		st.timedOut = true
		s.persistCurrent()
	}
}

func (s *Session) pauseCurrent() {
	s.paused = true
	s.persistCurrent()
}

func (s *Session) resumeCurrent() {
	if !s.InputDisabled() {
		s.paused = false
	}
}

// ==================== ANSWERING ====================

// SelectAnswer records a terminal answer for the current item. Selecting
// is refused once input is disabled.
func (s *Session) SelectAnswer(option int) error {
	if option < 0 || option > 3 {
		return fmt.Errorf("option index %d out of range", option)
	}
	if s.InputDisabled() {
		return errors.New("answer already submitted")
	}

	st := &s.states[s.current]
	st.selected = &option
	st.answered = true
	s.persistCurrent()
	return nil
}

// ==================== NAVIGATION ====================

// Next pauses and snapshots the current timer, then moves forward one item
// and restores its persisted state.
func (s *Session) Next() {
	s.pauseCurrent()
	if s.current < len(s.quizzes)-1 {
		s.current++
		if s.current > s.maxReached {
			s.maxReached = s.current
		}
	}
	s.resumeCurrent()
}

// Previous pauses and snapshots the current timer, then moves back one item.
func (s *Session) Previous() {
	s.pauseCurrent()
	if s.current > 0 {
		s.current--
	}
	s.resumeCurrent()
}

// ==================== BOOKMARKS ====================

// ToggleBookmark flips the current item's bookmark and persists it
// immediately, never batched.
func (s *Session) ToggleBookmark() error {
	st := &s.states[s.current]
	st.bookmarked = !st.bookmarked
	return s.store.UpdateBookmark(s.quizzes[s.current].ID, st.bookmarked)
}

// ==================== SCORING ====================

// CorrectCount counts items whose selected option matches the correct one.
func (s *Session) CorrectCount() int {
	correct := 0
	for i, st := range s.states {
		if st.selected != nil && *st.selected == s.quizzes[i].CorrectOption {
			correct++
		}
	}
	return correct
}

// Score is the percentage of correctly answered items over all items.
func (s *Session) Score() float64 {
	if len(s.quizzes) == 0 {
		return 0
	}
	return float64(s.CorrectCount()) / float64(len(s.quizzes)) * 100
}

// SolutionMessage renders the verdict plus solution text for the current
// item once an answer exists.
func (s *Session) SolutionMessage() string {
	st := s.states[s.current]
	if st.selected == nil {
		return ""
	}

	verdict := "Incorrect!"
	if *st.selected == s.Current().CorrectOption {
		verdict = "Correct!"
	}

	solution := s.Current().SolutionData()
	if solution == "" {
		solution = "No solution available."
	}
	return verdict + " " + solution
}

// Reset wipes all per-item state and returns to the first item.
func (s *Session) Reset() {
	s.current = 0
	s.maxReached = 0
	s.paused = false
	for i := range s.quizzes {
		s.states[i] = itemState{
			bookmarked: s.states[i].bookmarked,
			remaining:  s.estimator.EstimateSeconds(s.quizzes[i].QuestionType, s.quizzes[i].Question),
		}
	}
}

func (s *Session) persistCurrent() {
	if s.store == nil {
		return
	}
	st := s.states[s.current]
	remaining := st.remaining
	err := s.store.SaveQuizState(s.quizzes[s.current].ID, st.selected, &remaining, st.answered, st.timedOut)
	if err != nil {
		log.WithError(err).Warn("Failed to persist quiz state")
	}
}
