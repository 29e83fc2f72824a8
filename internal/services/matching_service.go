package services

import (
	"context"
	"fmt"

	"github.com/justsurfingit/placement-portal/internal/eligibility"
	"github.com/justsurfingit/placement-portal/internal/models"
	"gorm.io/gorm"
)

// MatcherService resolves criteria to eligible students. By default the filter runs
// in the database; with InMemory set it loads the whole roster and applies
// eligibility.Match, which is what the original dashboard did.
type MatcherService struct {
	DB       *gorm.DB
	InMemory bool
}

func NewMatcherService(db *gorm.DB, inMemory bool) *MatcherService {
	return &MatcherService{DB: db, InMemory: inMemory}
}

func (s *MatcherService) EligibleStudents(ctx context.Context, c eligibility.Criteria) ([]models.StudentProfile, error) {
	return s.eligibleOn(s.DB.WithContext(ctx), c)
}

// eligibleOn lets the posting flow match inside its own transaction.
func (s *MatcherService) eligibleOn(db *gorm.DB, c eligibility.Criteria) ([]models.StudentProfile, error) {
	if !s.InMemory {
		return studentsMatching(db, c)
	}
	if !c.HasClauses() {
		// No need to load the roster to learn that nobody matches.
		return []models.StudentProfile{}, nil
	}
	roster, err := loadRoster(db)
	if err != nil {
		return nil, err
	}
	return eligibility.Match(c, roster), nil
}

// Roster returns every student profile ordered by email.
func (s *MatcherService) Roster(ctx context.Context) ([]models.StudentProfile, error) {
	return loadRoster(s.DB.WithContext(ctx))
}

func loadRoster(db *gorm.DB) ([]models.StudentProfile, error) {
	var roster []models.StudentProfile
	if err := db.Order("email").Find(&roster).Error; err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}
