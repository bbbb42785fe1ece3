package repositories

import (
	"time"

	"github.com/fazalrahmanedv/quizsync/model"
	"github.com/fazalrahmanedv/quizsync/shared"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type QuizRepository struct {
	BaseRepository
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== COUNTRY METHODS ====================

// GetCountries returns every stored country sorted by display name.
// Fail-soft: a query error yields an empty slice.
func (ds *QuizRepository) GetCountries() []model.Country {
	return Fetch[model.Country](&ds.BaseRepository, Query{Sort: "name asc"})
}

func (ds *QuizRepository) SaveCountries(countries []model.Country) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if len(countries) == 0 {
		return nil
	}

	now := time.Now()
	for i := range countries {
		if countries[i].ID == "" {
			id, _ := uuid.NewV7()
			countries[i].ID = id.String()
		}
		countries[i].CreatedAt = now
		countries[i].UpdatedAt = now
	}

	return ds.db.Create(&countries).Error
}

// ==================== QUIZ METHODS ====================

func (ds *QuizRepository) GetQuiz(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := ds.db.Preload("Solution").Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetQuizzes returns every stored quiz with its solution, in sort order.
func (ds *QuizRepository) GetQuizzes() []model.Quiz {
	var quizzes []model.Quiz
	if err := ds.db.Preload("Solution").Order("sort asc").Find(&quizzes).Error; err != nil {
		log.WithError(err).Warn("Failed to load quizzes, returning empty result")
		return nil
	}
	return quizzes
}

// GetPlayableQuizzes returns the validity-filtered quiz set: non-empty
// question and options, correct option inside the answer range and a
// non-empty solution. Invalid rows stay persisted, they are only excluded
// from the view.
func (ds *QuizRepository) GetPlayableQuizzes() []model.Quiz {
	var quizzes []model.Quiz
	err := ds.db.
		Joins("JOIN quiz_solutions ON quiz_solutions.quiz_id = quizzes.id").
		Where("quizzes.question <> ''").
		Where("quizzes.option1 <> '' AND quizzes.option2 <> '' AND quizzes.option3 <> '' AND quizzes.option4 <> ''").
		Where("quizzes.correct_option BETWEEN 0 AND 3").
		Where("quiz_solutions.content_data <> ''").
		Preload("Solution").
		Order("quizzes.sort asc").
		Find(&quizzes).Error
	if err != nil {
		log.WithError(err).Warn("Failed to load playable quizzes, returning empty result")
		return nil
	}
	return quizzes
}

// GetImageQuizzes returns quizzes whose question is a media URL.
func (ds *QuizRepository) GetImageQuizzes() []model.Quiz {
	return Fetch[model.Quiz](&ds.BaseRepository, Query{
		Predicate: "question_type = ?",
		Args:      []interface{}{shared.QuestionTypeImage},
	})
}

// GetImageSolutions returns solutions whose content is a media URL.
func (ds *QuizRepository) GetImageSolutions() []model.QuizSolution {
	return Fetch[model.QuizSolution](&ds.BaseRepository, Query{
		Predicate: "content_type = ?",
		Args:      []interface{}{shared.QuestionTypeImage},
	})
}

// GetBookmarkedQuizzes returns the user's bookmarked quizzes in sort order.
func (ds *QuizRepository) GetBookmarkedQuizzes() []model.Quiz {
	var quizzes []model.Quiz
	err := ds.db.Preload("Solution").
		Where("has_bookmarked = ?", true).
		Order("sort asc").
		Find(&quizzes).Error
	if err != nil {
		log.WithError(err).Warn("Failed to load bookmarked quizzes, returning empty result")
		return nil
	}
	return quizzes
}

// SessionFlags is the session-local state of one quiz, snapshotted before a
// content wipe and re-applied to re-inserted rows with the same remote UUID.
type SessionFlags struct {
	HasBookmarked    bool
	Answered         bool
	Skipped          bool
	SelectedOption   *int
	RemainingSeconds *int
}

// GetSessionFlags snapshots session-local flags keyed by remote UUID. Rows
// without a remote UUID cannot be matched after a resync and are skipped.
func (ds *QuizRepository) GetSessionFlags() map[string]SessionFlags {
	flags := make(map[string]SessionFlags)
	for _, quiz := range Fetch[model.Quiz](&ds.BaseRepository, Query{Predicate: "uuid IS NOT NULL"}) {
		flags[*quiz.UUID] = SessionFlags{
			HasBookmarked:    quiz.HasBookmarked,
			Answered:         quiz.Answered,
			Skipped:          quiz.Skipped,
			SelectedOption:   quiz.SelectedOption,
			RemainingSeconds: quiz.RemainingSeconds,
		}
	}
	return flags
}

// DeleteAllQuizzes removes every quiz and solution. Solutions go first so
// the owning side never dangles mid-delete.
func (ds *QuizRepository) DeleteAllQuizzes() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.QuizSolution{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&model.Quiz{}).Error
	})
}

// SaveQuizzes persists a freshly mapped batch in one transaction. A failed
// save leaves nothing persisted for the batch.
func (ds *QuizRepository) SaveQuizzes(quizzes []model.Quiz) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if len(quizzes) == 0 {
		return nil
	}

	now := time.Now()
	for i := range quizzes {
		if quizzes[i].ID == "" {
			id, _ := uuid.NewV7()
			quizzes[i].ID = id.String()
		}
		quizzes[i].CreatedAt = now
		quizzes[i].UpdatedAt = now

		if sol := quizzes[i].Solution; sol != nil {
			if sol.ID == "" {
				id, _ := uuid.NewV7()
				sol.ID = id.String()
			}
			sol.QuizID = quizzes[i].ID
			sol.CreatedAt = now
			sol.UpdatedAt = now
		}
	}

	return ds.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&quizzes).Error
	})
}

// UpdateBookmark flips the bookmark flag of one quiz. Called on every
// toggle, never batched.
func (ds *QuizRepository) UpdateBookmark(quizID string, bookmarked bool) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	return ds.db.Model(&model.Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"has_bookmarked": bookmarked,
			"updated_at":     time.Now(),
		}).Error
}

// SaveQuizState persists the answer and timer state of one quiz.
func (ds *QuizRepository) SaveQuizState(quizID string, selected *int, remaining *int, answered, skipped bool) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	return ds.db.Model(&model.Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"selected_option":   selected,
			"remaining_seconds": remaining,
			"answered":          answered,
			"skipped":           skipped,
			"updated_at":        time.Now(),
		}).Error
}

// MarkSolutionDownloaded records that a solution's media blob reached the
// durable cache tier.
func (ds *QuizRepository) MarkSolutionDownloaded(solutionID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	return ds.db.Model(&model.QuizSolution{}).
		Where("id = ?", solutionID).
		Update("downloaded", true).Error
}
