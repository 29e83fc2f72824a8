package models

import (
	"time"

	"github.com/justsurfingit/placement-portal/internal/branch"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is the login record. Hashing and verification live in internal/auth.
type User struct {
	Email        string    `gorm:"primaryKey;size:255" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `gorm:"column:hashed_password;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null" json:"role"`

	// Declared here so the foreign key lands on student_profiles.email.
	Profile *StudentProfile `gorm:"foreignKey:Email;references:Email" json:"-"`
}

// StudentProfile is keyed by the owning user's email and cannot exist without that
// user. The four matching columns are indexed so eligibility filters can be
// answered by the store.
type StudentProfile struct {
	Email       string      `gorm:"primaryKey;size:255" json:"email"`
	CreatedAt   time.Time   `json:"created_at"`
	RollNumber  string      `gorm:"size:32" json:"roll_number"`
	FullName    string      `json:"full_name"`
	CGPA        float64     `gorm:"column:cgpa;index" json:"cgpa"`
	Branch      branch.Code `gorm:"size:16;index" json:"branch"`
	Class10Perc float64     `gorm:"column:class_10_perc" json:"class_10_perc"`
	Class12Perc float64     `gorm:"column:class_12_perc" json:"class_12_perc"`
	YearGap     int         `gorm:"column:year_gap;index" json:"year_gap"`
	Backlogs    int         `gorm:"column:backlogs;index" json:"backlogs"`
}

// Job is an append-only posting. Criteria holds the criteria JSON exactly as it was
// matched, for audit and redisplay.
type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CompanyName string         `gorm:"not null" json:"company_name"`
	Description string         `gorm:"type:text" json:"description"`
	Criteria    datatypes.JSON `json:"criteria"`
	PostedBy    string         `gorm:"size:255;index" json:"posted_by"`
	SourceURL   string         `json:"source_url,omitempty"`

	// Display only, never used for matching.
	CTC                *string `json:"ctc"`
	Stipend            *string `json:"stipend"`
	LastDate           *string `json:"last_date"`
	CompanyDescription *string `gorm:"type:text" json:"company_description"`
}

// Eligibility links one job to one student who satisfied its criteria at post time.
type Eligibility struct {
	JobID        uint   `gorm:"primaryKey;autoIncrement:false" json:"job_id"`
	StudentEmail string `gorm:"primaryKey;size:255" json:"student_email"`

	Job     *Job            `gorm:"foreignKey:JobID" json:"-"`
	Student *StudentProfile `gorm:"foreignKey:StudentEmail;references:Email" json:"-"`
}

func (Eligibility) TableName() string { return "eligibility" }
