package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/justsurfingit/placement-portal/internal/auth"
)

// Columns every roster CSV must carry. The rest default to zero when absent.
var requiredImportColumns = []string{"email", "branch", "cgpa"}

// ImportRowError describes one CSV row that was skipped.
type ImportRowError struct {
	Line  int // 1-based, header is line 1
	Email string
	Err   error
}

func (e ImportRowError) Error() string {
	if e.Email == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Email, e.Err)
}

type ImportReport struct {
	Imported int
	Errors   []ImportRowError
}

// ImportService bulk-loads student accounts from a roster export.
type ImportService struct {
	Users *UserService
}

func NewImportService(users *UserService) *ImportService {
	return &ImportService{Users: users}
}

// ImportStudentsCSV creates one student per row. Every account gets defaultPassword.
// Bad rows are recorded in the report and skipped; only an unreadable header or an
// I/O failure aborts the import.
func (s *ImportService) ImportStudentsCSV(ctx context.Context, r io.Reader, defaultPassword string) (*ImportReport, error) {
	if defaultPassword == "" {
		return nil, errors.New("default password must not be empty")
	}
	hash, err := auth.HashPassword(defaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredImportColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	report := &ImportReport{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Errors = append(report.Errors, ImportRowError{Line: line, Err: err})
				continue
			}
			return report, fmt.Errorf("read line %d: %w", line, err)
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		in, err := signupFromRow(get)
		if err == nil {
			_, err = s.Users.registerStudentHashed(ctx, in, hash)
		}
		if err != nil {
			report.Errors = append(report.Errors, ImportRowError{Line: line, Email: get("email"), Err: err})
			continue
		}
		report.Imported++
		if report.Imported%50 == 0 {
			log.Printf("[import] %d students imported...", report.Imported)
		}
	}
	log.Printf("[import] done: %d imported, %d skipped", report.Imported, len(report.Errors))
	return report, nil
}

func signupFromRow(get func(string) string) (StudentSignup, error) {
	in := StudentSignup{
		Email:      get("email"),
		RollNumber: get("roll_number"),
		FullName:   get("full_name"),
		Branch:     get("branch"),
	}
	var err error
	if in.CGPA, err = parseFloatField(get, "cgpa"); err != nil {
		return in, err
	}
	if in.Class10Perc, err = parseFloatField(get, "class_10_perc"); err != nil {
		return in, err
	}
	if in.Class12Perc, err = parseFloatField(get, "class_12_perc"); err != nil {
		return in, err
	}
	if in.Backlogs, err = parseIntField(get, "backlogs"); err != nil {
		return in, err
	}
	if in.YearGap, err = parseIntField(get, "year_gap"); err != nil {
		return in, err
	}
	return in, nil
}

func parseFloatField(get func(string) string, name string) (float64, error) {
	v := get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidProfile, name, v)
	}
	return f, nil
}

func parseIntField(get func(string) string, name string) (int, error) {
	v := get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a whole number", ErrInvalidProfile, name, v)
	}
	return n, nil
}
