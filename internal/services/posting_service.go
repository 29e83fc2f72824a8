package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/justsurfingit/placement-portal/internal/eligibility"
	"github.com/justsurfingit/placement-portal/internal/events"
	"github.com/justsurfingit/placement-portal/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNoCriteria         = errors.New("criteria contain no eligibility rules")
	ErrNoEligibleStudents = errors.New("no students satisfy the criteria")
	ErrMissingDescription = errors.New("a job description or URL is required")
	ErrMissingCompany     = errors.New("company name is required")
)

// PageFetcher turns a job posting URL into plain text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PostingService runs the admin flow: extract criteria, preview the eligible
// students, then publish the job with its links.
type PostingService struct {
	DB        *gorm.DB
	Extractor CriteriaExtractor
	Fetcher   PageFetcher
	Matcher   *MatcherService
	Events    events.Publisher
	Notifier  Notifier

	notifying sync.WaitGroup
}

func NewPostingService(db *gorm.DB, extractor CriteriaExtractor, fetcher PageFetcher, matcher *MatcherService, pub events.Publisher, notifier Notifier) *PostingService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PostingService{
		DB:        db,
		Extractor: extractor,
		Fetcher:   fetcher,
		Matcher:   matcher,
		Events:    pub,
		Notifier:  notifier,
	}
}

type PreviewRequest struct {
	CompanyName string
	Description string
	URL         string
}

type Preview struct {
	Description string
	Extraction  *Extraction
	Eligible    []models.StudentProfile
}

// Preview extracts criteria and lists who would be eligible. Nothing is written.
func (s *PostingService) Preview(ctx context.Context, req PreviewRequest) (*Preview, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" && req.URL != "" {
		if s.Fetcher == nil {
			return nil, fmt.Errorf("%w: fetching is not configured", ErrFetchFailed)
		}
		text, err := s.Fetcher.Fetch(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		desc = text
	}
	if desc == "" {
		return nil, ErrMissingDescription
	}

	ext, err := s.Extractor.ExtractCriteria(ctx, desc)
	if err != nil {
		return nil, err
	}
	students, err := s.Matcher.EligibleStudents(ctx, ext.Criteria)
	if err != nil {
		return nil, err
	}
	log.Printf("[posting] preview for %q: %d eligible", req.CompanyName, len(students))

	return &Preview{Description: desc, Extraction: ext, Eligible: students}, nil
}

type PublishRequest struct {
	CompanyName string
	Description string
	SourceURL   string
	PostedBy    string
	Criteria    eligibility.Criteria
}

type PublishResult struct {
	Job             *models.Job
	EligibleEmails  []string
	DroppedBranches []string
}

// Publish re-normalizes the criteria, matches against the current roster and writes
// the job and its links in one transaction. Event and email side effects run after
// commit and never fail the call; emails are sent in the background.
func (s *PostingService) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return nil, ErrMissingCompany
	}

	c, dropped := req.Criteria.Normalized()
	if len(dropped) > 0 {
		log.Printf("[posting] dropped unrecognized branches for %q: %q", company, dropped)
	}
	if err := checkCriteriaRanges(c); err != nil {
		return nil, err
	}
	if !c.HasClauses() {
		return nil, ErrNoCriteria
	}

	criteriaJSON, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode criteria: %w", err)
	}
	job := &models.Job{
		CompanyName:        company,
		Description:        req.Description,
		Criteria:           datatypes.JSON(criteriaJSON),
		PostedBy:           req.PostedBy,
		SourceURL:          req.SourceURL,
		CTC:                c.CTC,
		Stipend:            c.Stipend,
		LastDate:           c.LastDate,
		CompanyDescription: c.CompanyDescription,
	}

	var emails []string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students, err := s.Matcher.eligibleOn(tx, c)
		if err != nil {
			return err
		}
		if len(students) == 0 {
			return ErrNoEligibleStudents
		}
		emails = eligibility.Emails(students)
		return insertJobWithLinks(tx, job, emails)
	})
	if err != nil {
		job.ID = 0
		return nil, err
	}
	log.Printf("[posting] job %d for %q posted with %d eligible students", job.ID, company, len(emails))

	// The request may end before delivery does.
	s.afterPost(context.WithoutCancel(ctx), job, emails)
	return &PublishResult{Job: job, EligibleEmails: emails, DroppedBranches: dropped}, nil
}

func (s *PostingService) afterPost(ctx context.Context, job *models.Job, emails []string) {
	evt := events.JobPosted{
		Type:          events.ChannelJobPosted,
		JobID:         job.ID,
		CompanyName:   job.CompanyName,
		PostedBy:      job.PostedBy,
		EligibleCount: len(emails),
	}
	if err := s.Events.Publish(ctx, events.ChannelJobPosted, evt); err != nil {
		log.Printf("[posting] warning: event publish failed for job %d: %v", job.ID, err)
	}

	posted := *job
	s.notifying.Add(1)
	go func() {
		defer s.notifying.Done()
		if err := s.Notifier.NotifyEligible(ctx, &posted, emails); err != nil {
			log.Printf("[posting] warning: notifications incomplete for job %d: %v", posted.ID, err)
		}
	}()
}

// Wait blocks until every notification batch started by Publish has finished.
func (s *PostingService) Wait() {
	s.notifying.Wait()
}
