package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/justsurfingit/placement-portal/internal/models"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// Notifier tells eligible students about a new job. Failures never undo a post.
type Notifier interface {
	NotifyEligible(ctx context.Context, job *models.Job, emails []string) error
}

// NopNotifier is used when Gmail is disabled.
type NopNotifier struct{}

func (NopNotifier) NotifyEligible(context.Context, *models.Job, []string) error { return nil }

// EmailService sends job notifications through the Gmail API.
type EmailService struct {
	GmailClient *gmail.Service
	From        string
	// retry settings, shortened in tests
	Attempts int
	Backoff  time.Duration
}

func NewEmailService(client *gmail.Service, from string) *EmailService {
	return &EmailService{
		GmailClient: client,
		From:        from,
		Attempts:    3,
		Backoff:     time.Second,
	}
}

// NotifyEligible sends one message per student. It keeps going after a failed send
// and returns the joined errors at the end.
func (s *EmailService) NotifyEligible(ctx context.Context, job *models.Job, emails []string) error {
	if s.GmailClient == nil {
		log.Println("⚠️ Gmail notifications disabled (no client). Check credentials.")
		return nil
	}

	log.Printf("📧 Notifying %d students about job %d (%s)", len(emails), job.ID, job.CompanyName)
	var errs []error
	sent := 0
	for _, to := range emails {
		msg := &gmail.Message{Raw: buildMessage(s.From, to, job)}
		err := retry(ctx, s.Attempts, s.Backoff, func() error {
			_, e := s.GmailClient.Users.Messages.Send("me", msg).Context(ctx).Do()
			return e
		})
		if err != nil {
			log.Printf("❌ Notification to %s failed: %v", to, err)
			errs = append(errs, fmt.Errorf("notify %s: %w", to, err))
			continue
		}
		sent++
	}
	log.Printf("✅ Sent %d/%d notifications for job %d", sent, len(emails), job.ID)
	return errors.Join(errs...)
}

// buildMessage returns a base64url encoded RFC 2822 message as the Gmail API expects.
func buildMessage(from, to string, job *models.Job) string {
	var body strings.Builder
	fmt.Fprintf(&body, "You are eligible for a new opening at %s.\r\n\r\n", job.CompanyName)
	if job.CTC != nil {
		fmt.Fprintf(&body, "CTC: %s\r\n", *job.CTC)
	}
	if job.Stipend != nil {
		fmt.Fprintf(&body, "Stipend: %s\r\n", *job.Stipend)
	}
	if job.LastDate != nil {
		fmt.Fprintf(&body, "Last date to apply: %s\r\n", *job.LastDate)
	}
	body.WriteString("\r\nOpen the placement portal to see the full description.\r\n")

	var raw strings.Builder
	if from != "" {
		fmt.Fprintf(&raw, "From: %s\r\n", headerValue(from))
	}
	fmt.Fprintf(&raw, "To: %s\r\n", headerValue(to))
	fmt.Fprintf(&raw, "Subject: %s\r\n", headerValue("New placement opportunity: "+job.CompanyName))
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	raw.WriteString(body.String())

	return base64.URLEncoding.EncodeToString([]byte(raw.String()))
}

// --- HELPERS ---

// headerValue folds line breaks into spaces so a value cannot start a new header,
// then RFC 2047 encodes it if it is not plain ASCII.
func headerValue(s string) string {
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
	return mime.QEncoding.Encode("utf-8", s)
}

// retry executes a function with exponential backoff
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		// Bad requests and auth failures will not get better on retry
		if isPermanentAPIError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isPermanentAPIError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != http.StatusTooManyRequests
	}
	return false
}
