package services

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/eligibility"
	"github.com/justsurfingit/placement-portal/internal/events"
	"github.com/justsurfingit/placement-portal/internal/models"
)

type stubExtractor struct {
	ext  *Extraction
	err  error
	seen string
}

func (s *stubExtractor) ExtractCriteria(_ context.Context, jd string) (*Extraction, error) {
	s.seen = jd
	return s.ext, s.err
}

type stubFetcher struct{ text string }

func (f stubFetcher) Fetch(context.Context, string) (string, error) { return f.text, nil }

type recordingPublisher struct {
	channels []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload any) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return p.err
}

type recordingNotifier struct {
	jobID  uint
	emails []string
	err    error
}

func (n *recordingNotifier) NotifyEligible(_ context.Context, job *models.Job, emails []string) error {
	n.jobID = job.ID
	n.emails = emails
	return n.err
}

func newTestPosting(t *testing.T, inMemory bool) (*PostingService, *recordingPublisher, *recordingNotifier, *stubExtractor) {
	t.Helper()
	db := newTestDB(t)
	seedRoster(t, db, testRoster())
	pub := &recordingPublisher{}
	notifier := &recordingNotifier{}
	ext := &stubExtractor{}
	svc := NewPostingService(db, ext, stubFetcher{text: "fetched description"}, NewMatcherService(db, inMemory), pub, notifier)
	return svc, pub, notifier, ext
}

func TestPreview(t *testing.T) {
	svc, _, _, ext := newTestPosting(t, false)
	ext.ext = &Extraction{Criteria: eligibility.Criteria{MinCGPA: ptrFloat(7.5)}}

	p, err := svc.Preview(context.Background(), PreviewRequest{CompanyName: "Acme", Description: "  CGPA 7.5+  "})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if ext.seen != "CGPA 7.5+" {
		t.Errorf("extractor saw %q", ext.seen)
	}
	if !slices.Equal(emailsOf(p.Eligible), []string{"a@x", "c@x", "d@x"}) {
		t.Errorf("eligible = %v", emailsOf(p.Eligible))
	}
	if n := countRows(t, svc.DB, &models.Job{}); n != 0 {
		t.Errorf("preview wrote %d jobs", n)
	}
}

func TestPreview_FromURL(t *testing.T) {
	svc, _, _, ext := newTestPosting(t, false)
	ext.ext = &Extraction{Criteria: eligibility.Criteria{}}

	p, err := svc.Preview(context.Background(), PreviewRequest{CompanyName: "Acme", URL: "https://acme.example/jobs/1"})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if ext.seen != "fetched description" || p.Description != "fetched description" {
		t.Errorf("extractor saw %q", ext.seen)
	}
	if len(p.Eligible) != 0 {
		t.Errorf("empty criteria matched %v", emailsOf(p.Eligible))
	}
}

func TestPreview_Errors(t *testing.T) {
	svc, _, _, ext := newTestPosting(t, false)
	if _, err := svc.Preview(context.Background(), PreviewRequest{CompanyName: "Acme"}); !errors.Is(err, ErrMissingDescription) {
		t.Errorf("no description: err = %v", err)
	}

	ext.err = ErrNoJSONObject
	if _, err := svc.Preview(context.Background(), PreviewRequest{Description: "jd"}); !errors.Is(err, ErrNoJSONObject) {
		t.Errorf("extractor failure: err = %v", err)
	}
}

func TestPublish(t *testing.T) {
	for _, inMemory := range []bool{false, true} {
		svc, pub, notifier, _ := newTestPosting(t, inMemory)
		ctx := context.Background()

		res, err := svc.Publish(ctx, PublishRequest{
			CompanyName: "Acme",
			Description: "SDE role",
			PostedBy:    "tpo@x",
			Criteria: eligibility.Criteria{
				MinCGPA:  ptrFloat(7.0),
				Branches: []branch.Code{"computer science", "Information Technology", "Underwater Basket Weaving"},
				CTC:      ptrString("12 LPA"),
			},
		})
		if err != nil {
			t.Fatalf("inMemory=%v Publish: %v", inMemory, err)
		}

		if !slices.Equal(res.EligibleEmails, []string{"a@x", "c@x", "e@x"}) {
			t.Errorf("inMemory=%v eligible = %v", inMemory, res.EligibleEmails)
		}
		if !slices.Equal(res.DroppedBranches, []string{"Underwater Basket Weaving"}) {
			t.Errorf("dropped = %v", res.DroppedBranches)
		}
		if res.Job.CTC == nil || *res.Job.CTC != "12 LPA" {
			t.Errorf("CTC not copied onto job: %+v", res.Job)
		}

		var stored eligibility.Criteria
		if err := json.Unmarshal(res.Job.Criteria, &stored); err != nil {
			t.Fatalf("stored criteria: %v", err)
		}
		if !slices.Equal(stored.Branches, []branch.Code{branch.CSE, branch.IT}) {
			t.Errorf("stored branches = %v, want normalized codes", stored.Branches)
		}

		links, err := NewJobService(svc.DB).EligibleEmails(ctx, res.Job.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(links, res.EligibleEmails) {
			t.Errorf("links = %v, want %v", links, res.EligibleEmails)
		}

		if len(pub.channels) != 1 || pub.channels[0] != events.ChannelJobPosted {
			t.Fatalf("events = %v", pub.channels)
		}
		evt := pub.payloads[0].(events.JobPosted)
		if evt.JobID != res.Job.ID || evt.EligibleCount != 3 || evt.PostedBy != "tpo@x" {
			t.Errorf("event = %+v", evt)
		}
		svc.Wait()
		if notifier.jobID != res.Job.ID || len(notifier.emails) != 3 {
			t.Errorf("notifier got job %d emails %v", notifier.jobID, notifier.emails)
		}
	}
}

func TestPublish_SideEffectFailuresAreIgnored(t *testing.T) {
	svc, pub, notifier, _ := newTestPosting(t, false)
	pub.err = errors.New("redis down")
	notifier.err = errors.New("gmail down")

	res, err := svc.Publish(context.Background(), PublishRequest{
		CompanyName: "Acme",
		Criteria:    eligibility.Criteria{MaxBacklogs: ptrInt(0)},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	svc.Wait()
	if res.Job.ID == 0 {
		t.Error("job should be committed despite side-effect failures")
	}
	if notifier.jobID != res.Job.ID {
		t.Errorf("notifier saw job %d, want %d", notifier.jobID, res.Job.ID)
	}
}

// blockingNotifier holds every send until release is closed.
type blockingNotifier struct {
	release chan struct{}
	ctxErr  error
	emails  []string
}

func (n *blockingNotifier) NotifyEligible(ctx context.Context, _ *models.Job, emails []string) error {
	<-n.release
	n.ctxErr = ctx.Err()
	n.emails = emails
	return nil
}

func TestPublish_NotificationsOutliveRequest(t *testing.T) {
	svc, _, _, _ := newTestPosting(t, false)
	notifier := &blockingNotifier{release: make(chan struct{})}
	svc.Notifier = notifier

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Publish(ctx, PublishRequest{
		CompanyName: "Acme",
		Criteria:    eligibility.Criteria{MaxBacklogs: ptrInt(0)},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	// Publish returned while the notifier is still blocked; now the client goes away.
	cancel()
	close(notifier.release)
	svc.Wait()

	if notifier.ctxErr != nil {
		t.Errorf("notification context was cancelled with the request: %v", notifier.ctxErr)
	}
	if !slices.Equal(notifier.emails, res.EligibleEmails) {
		t.Errorf("notified %v, want %v", notifier.emails, res.EligibleEmails)
	}
}

func TestPublish_Guards(t *testing.T) {
	tests := []struct {
		name string
		req  PublishRequest
		want error
	}{
		{
			name: "no company",
			req:  PublishRequest{Criteria: eligibility.Criteria{MinCGPA: ptrFloat(7)}},
			want: ErrMissingCompany,
		},
		{
			name: "display fields only",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{CTC: ptrString("5 LPA")}},
			want: ErrNoCriteria,
		},
		{
			name: "every branch unrecognized",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{Branches: []branch.Code{"Marketing"}}},
			want: ErrNoCriteria,
		},
		{
			name: "negative cgpa",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{MinCGPA: ptrFloat(-3)}},
			want: ErrCriteriaShape,
		},
		{
			name: "cgpa above scale",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{MinCGPA: ptrFloat(10.5)}},
			want: ErrCriteriaShape,
		},
		{
			name: "negative backlogs",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{MaxBacklogs: ptrInt(-1)}},
			want: ErrCriteriaShape,
		},
		{
			name: "negative year gap",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{MinCGPA: ptrFloat(6), MaxYearGap: ptrInt(-2)}},
			want: ErrCriteriaShape,
		},
		{
			name: "nobody qualifies",
			req:  PublishRequest{CompanyName: "Acme", Criteria: eligibility.Criteria{MinCGPA: ptrFloat(9.9)}},
			want: ErrNoEligibleStudents,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, pub, _, _ := newTestPosting(t, false)
			res, err := svc.Publish(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Errorf("result = %+v, want nil", res)
			}
			if n := countRows(t, svc.DB, &models.Job{}); n != 0 {
				t.Errorf("jobs = %d, want 0", n)
			}
			if len(pub.channels) != 0 {
				t.Errorf("events published on failure: %v", pub.channels)
			}
		})
	}
}
