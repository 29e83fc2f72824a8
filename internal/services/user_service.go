package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/placement-portal/internal/auth"
	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownBranch      = errors.New("unrecognized branch")
	ErrInvalidProfile     = errors.New("invalid student profile")
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// StudentSignup is the data needed to create a student account.
type StudentSignup struct {
	Email       string
	Password    string
	RollNumber  string
	FullName    string
	CGPA        float64
	Branch      string // free text, normalized on insert
	Class10Perc float64
	Class12Perc float64
	Backlogs    int
	YearGap     int
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindUser returns the user record for email, or ErrUserNotFound.
func (s *UserService) FindUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Profile returns the student profile for email, or ErrUserNotFound.
func (s *UserService) Profile(ctx context.Context, email string) (*models.StudentProfile, error) {
	var p models.StudentProfile
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// RegisterStudent creates the user and the profile in one transaction.
func (s *UserService) RegisterStudent(ctx context.Context, in StudentSignup) (*models.StudentProfile, error) {
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidProfile)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.registerStudentHashed(ctx, in, hash)
}

// registerStudentHashed is split out so bulk imports can hash a shared password once.
func (s *UserService) registerStudentHashed(ctx context.Context, in StudentSignup, hash string) (*models.StudentProfile, error) {
	profile, err := buildProfile(in)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: profile.Email, PasswordHash: hash, Role: models.RoleStudent}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user); err != nil {
			return err
		}
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// RegisterAdmin creates an admin account with no student profile.
func (s *UserService) RegisterAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidProfile)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := createUser(s.DB.WithContext(ctx), user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks the password and returns the user. Unknown emails and wrong
// passwords give the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindUser(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func createUser(tx *gorm.DB, user *models.User) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func buildProfile(in StudentSignup) (*models.StudentProfile, error) {
	email := normalizeEmail(in.Email)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidProfile)
	case in.CGPA < 0 || in.CGPA > 10:
		return nil, fmt.Errorf("%w: cgpa must be between 0 and 10", ErrInvalidProfile)
	case in.Class10Perc < 0 || in.Class10Perc > 100 || in.Class12Perc < 0 || in.Class12Perc > 100:
		return nil, fmt.Errorf("%w: percentages must be between 0 and 100", ErrInvalidProfile)
	case in.Backlogs < 0 || in.YearGap < 0:
		return nil, fmt.Errorf("%w: backlogs and year gap cannot be negative", ErrInvalidProfile)
	}

	code, ok := branch.Normalize(in.Branch)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBranch, in.Branch)
	}

	return &models.StudentProfile{
		Email:       email,
		RollNumber:  strings.TrimSpace(in.RollNumber),
		FullName:    strings.TrimSpace(in.FullName),
		CGPA:        in.CGPA,
		Branch:      code,
		Class10Perc: in.Class10Perc,
		Class12Perc: in.Class12Perc,
		YearGap:     in.YearGap,
		Backlogs:    in.Backlogs,
	}, nil
}
