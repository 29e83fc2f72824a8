package services

import (
	"context"
	"fmt"

	"github.com/justsurfingit/placement-portal/internal/eligibility"
	"github.com/justsurfingit/placement-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Links are written in batches of this size so large rosters stay under driver
// placeholder limits.
const linkBatchSize = 500

// JobService is the job/eligibility store. Jobs and links are only ever inserted.
type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB: db,
	}
}

// PostJob inserts job and one eligibility link per email in a single transaction.
// If anything fails nothing is written and job.ID is reset to zero.
func (s *JobService) PostJob(ctx context.Context, job *models.Job, eligibleEmails []string) (uint, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertJobWithLinks(tx, job, eligibleEmails)
	})
	if err != nil {
		job.ID = 0
		return 0, err
	}
	return job.ID, nil
}

func insertJobWithLinks(tx *gorm.DB, job *models.Job, emails []string) error {
	if err := tx.Omit(clause.Associations).Create(job).Error; err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	if len(emails) == 0 {
		return nil
	}

	links := make([]models.Eligibility, len(emails))
	for i, email := range emails {
		links[i] = models.Eligibility{JobID: job.ID, StudentEmail: email}
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(links, linkBatchSize).Error; err != nil {
		return fmt.Errorf("insert eligibility links for job %d: %w", job.ID, err)
	}
	return nil
}

// JobsForStudent returns every job the student was linked to, newest first.
func (s *JobService) JobsForStudent(ctx context.Context, email string) ([]models.Job, error) {
	jobs := []models.Job{}
	err := s.DB.WithContext(ctx).
		Joins("JOIN eligibility ON eligibility.job_id = jobs.id").
		Where("eligibility.student_email = ?", email).
		Order("jobs.id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("jobs for %s: %w", email, err)
	}
	return jobs, nil
}

// EligibleEmails returns the emails linked to a job, sorted.
func (s *JobService) EligibleEmails(ctx context.Context, jobID uint) ([]string, error) {
	var emails []string
	err := s.DB.WithContext(ctx).Model(&models.Eligibility{}).
		Where("job_id = ?", jobID).
		Order("student_email").
		Pluck("student_email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("eligible emails for job %d: %w", jobID, err)
	}
	return emails, nil
}

// StudentsMatching answers the eligibility rule inside the database. It returns the
// same students as eligibility.Match over the full roster, ordered by email.
func (s *JobService) StudentsMatching(ctx context.Context, c eligibility.Criteria) ([]models.StudentProfile, error) {
	return studentsMatching(s.DB.WithContext(ctx), c)
}

func studentsMatching(db *gorm.DB, c eligibility.Criteria) ([]models.StudentProfile, error) {
	students := []models.StudentProfile{}
	if !c.HasClauses() {
		return students, nil
	}
	if err := db.Scopes(CriteriaScope(c)).Order("email").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("query matching students: %w", err)
	}
	return students, nil
}

// CriteriaScope adds one WHERE clause per present criterion. It does not apply the
// empty-criteria guard; callers must.
func CriteriaScope(c eligibility.Criteria) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.MinCGPA != nil {
			db = db.Where("cgpa >= ?", *c.MinCGPA)
		}
		if c.MaxBacklogs != nil {
			db = db.Where("backlogs <= ?", *c.MaxBacklogs)
		}
		if c.MaxYearGap != nil {
			db = db.Where("year_gap <= ?", *c.MaxYearGap)
		}
		if len(c.Branches) > 0 {
			db = db.Where("branch IN ?", c.BranchStrings())
		}
		return db
	}
}
