package seeders

import (
	"log"
	"time"

	"github.com/fazalrahmanedv/quizsync/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CountrySeeder handles seeding the reference country list
type CountrySeeder struct {
	db *gorm.DB
}

// NewCountrySeeder creates a new country seeder
func NewCountrySeeder(db *gorm.DB) *CountrySeeder {
	return &CountrySeeder{db: db}
}

// SeedCountries fills the store with a starter country list so a first run
// works before the network has ever been reachable. The list never updates
// from the network once the store is non-empty, so seeding is idempotent.
func (s *CountrySeeder) SeedCountries() error {
	var count int64
	if err := s.db.Model(&model.Country{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Countries already seeded (%d rows), skipping", count)
		return nil
	}

	countries := s.getCountries()
	if err := s.db.Create(&countries).Error; err != nil {
		log.Printf("Error creating countries: %v", err)
		return err
	}

	log.Printf("Seeded %d countries", len(countries))
	return nil
}

func (s *CountrySeeder) getCountries() []model.Country {
	now := time.Now()

	names := []struct {
		name string
		flag string
	}{
		{"Brazil", "🇧🇷"},
		{"Canada", "🇨🇦"},
		{"France", "🇫🇷"},
		{"Germany", "🇩🇪"},
		{"India", "🇮🇳"},
		{"Japan", "🇯🇵"},
		{"Kenya", "🇰🇪"},
		{"Mexico", "🇲🇽"},
		{"United Kingdom", "🇬🇧"},
		{"United States", "🇺🇸"},
	}

	countries := make([]model.Country, 0, len(names))
	for _, n := range names {
		id, _ := uuid.NewV7()
		countries = append(countries, model.Country{
			ID:        id.String(),
			Name:      n.name,
			Flag:      n.flag,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return countries
}
