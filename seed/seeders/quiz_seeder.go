package seeders

import (
	"log"
	"time"

	"github.com/fazalrahmanedv/quizsync/model"
	"github.com/fazalrahmanedv/quizsync/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizSeeder handles seeding starter quiz content
type QuizSeeder struct {
	db *gorm.DB
}

// NewQuizSeeder creates a new quiz seeder
func NewQuizSeeder(db *gorm.DB) *QuizSeeder {
	return &QuizSeeder{db: db}
}

// SeedQuizzes fills an empty store with starter questions so the first
// offline run still has a playable set. A later online sync replaces the
// whole set, so an already populated store is left untouched.
func (s *QuizSeeder) SeedQuizzes() error {
	var count int64
	if err := s.db.Model(&model.Quiz{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Quizzes already seeded (%d rows), skipping", count)
		return nil
	}

	quizzes := s.getStarterQuizzes()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&quizzes).Error
	})
	if err != nil {
		log.Printf("Error creating quizzes: %v", err)
		return err
	}

	log.Printf("Seeded %d quizzes", len(quizzes))
	return nil
}

func (s *QuizSeeder) getStarterQuizzes() []model.Quiz {
	now := time.Now()

	starters := []struct {
		question string
		options  [4]string
		correct  int
		solution string
	}{
		{
			question: "Which planet is known as the Red Planet?",
			options:  [4]string{"Venus", "Mars", "Jupiter", "Mercury"},
			correct:  1,
			solution: "Mars appears red because of iron oxide dust covering its surface.",
		},
		{
			question: "What is the largest ocean on Earth?",
			options:  [4]string{"Atlantic", "Indian", "Arctic", "Pacific"},
			correct:  3,
			solution: "The Pacific Ocean covers about a third of the Earth's surface.",
		},
		{
			question: "Which gas do plants absorb from the atmosphere?",
			options:  [4]string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"},
			correct:  2,
			solution: "Plants take in carbon dioxide for photosynthesis and release oxygen.",
		},
		{
			question: "How many continents are there on Earth?",
			options:  [4]string{"Five", "Six", "Seven", "Eight"},
			correct:  2,
			solution: "The seven continents are Africa, Antarctica, Asia, Australia, Europe, North America and South America.",
		},
		{
			question: "What is the chemical symbol for gold?",
			options:  [4]string{"Go", "Gd", "Ag", "Au"},
			correct:  3,
			solution: "Au comes from aurum, the Latin word for gold.",
		},
		{
			question: "Which country hosts the city of Kyoto?",
			options:  [4]string{"China", "Japan", "South Korea", "Thailand"},
			correct:  1,
			solution: "Kyoto was the imperial capital of Japan for over a thousand years.",
		},
	}

	quizzes := make([]model.Quiz, 0, len(starters))
	for i, st := range starters {
		quizID, _ := uuid.NewV7()
		solutionID, _ := uuid.NewV7()

		quizzes = append(quizzes, model.Quiz{
			ID:            quizID.String(),
			Question:      st.question,
			QuestionType:  shared.QuestionTypeText,
			Option1:       st.options[0],
			Option2:       st.options[1],
			Option3:       st.options[2],
			Option4:       st.options[3],
			CorrectOption: st.correct,
			Sort:          i + 1,
			CreatedAt:     now,
			UpdatedAt:     now,
			Solution: &model.QuizSolution{
				ID:          solutionID.String(),
				QuizID:      quizID.String(),
				ContentType: shared.QuestionTypeText,
				ContentData: st.solution,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		})
	}
	return quizzes
}
