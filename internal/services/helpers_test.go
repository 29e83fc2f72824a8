package services

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/database"
	"github.com/justsurfingit/placement-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated SQLite database with foreign keys enforced.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "placement.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// testRoster covers every branch used in the tests and both sides of each bound.
func testRoster() []models.StudentProfile {
	return []models.StudentProfile{
		{Email: "a@x", FullName: "Asha", CGPA: 8.0, Branch: branch.CSE, Backlogs: 0, YearGap: 0},
		{Email: "b@x", FullName: "Bilal", CGPA: 6.5, Branch: branch.ECE, Backlogs: 0, YearGap: 0},
		{Email: "c@x", FullName: "Chen", CGPA: 7.5, Branch: branch.IT, Backlogs: 1, YearGap: 0},
		{Email: "d@x", FullName: "Divya", CGPA: 9.1, Branch: branch.MECH, Backlogs: 0, YearGap: 2},
		{Email: "e@x", FullName: "Emeka", CGPA: 7.0, Branch: branch.CSE, Backlogs: 2, YearGap: 1},
		{Email: "f@x", FullName: "Farah", CGPA: 7.0, Branch: branch.EEE, Backlogs: 0, YearGap: 0},
	}
}

func seedRoster(t *testing.T, db *gorm.DB, roster []models.StudentProfile) {
	t.Helper()
	for _, p := range roster {
		user := models.User{Email: p.Email, PasswordHash: "x", Role: models.RoleStudent}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("seed user %s: %v", p.Email, err)
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed profile %s: %v", p.Email, err)
		}
	}
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(n int) *int           { return &n }
func ptrString(s string) *string  { return &s }

func emailsOf(students []models.StudentProfile) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Email
	}
	return out
}
