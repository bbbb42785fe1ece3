package seeders

import (
	"log"

	"github.com/fazalrahmanedv/quizsync/model"
	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.migrate(); err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	countrySeeder := NewCountrySeeder(s.db)
	if err := countrySeeder.SeedCountries(); err != nil {
		log.Printf("Country seeding failed: %v", err)
		return err
	}

	quizSeeder := NewQuizSeeder(s.db)
	if err := quizSeeder.SeedQuizzes(); err != nil {
		log.Printf("Quiz seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) migrate() error {
	return s.db.AutoMigrate(
		&model.Country{},
		&model.Quiz{},
		&model.QuizSolution{},
	)
}

// SeedCountriesOnly seeds only countries
func (s *MainSeeder) SeedCountriesOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	countrySeeder := NewCountrySeeder(s.db)
	return countrySeeder.SeedCountries()
}

// SeedQuizzesOnly seeds only quizzes
func (s *MainSeeder) SeedQuizzesOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	quizSeeder := NewQuizSeeder(s.db)
	return quizSeeder.SeedQuizzes()
}
