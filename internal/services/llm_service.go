package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/justsurfingit/placement-portal/internal/eligibility"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

var (
	// ErrLLMUnavailable covers a missing credential, an unconfigured client and a
	// failed call.
	ErrLLMUnavailable = errors.New("language model unavailable")
	// ErrNoJSONObject means the reply held no parseable JSON object.
	ErrNoJSONObject = errors.New("model reply contained no JSON object")
	// ErrCriteriaShape means the JSON parsed but a key had the wrong type or range.
	ErrCriteriaShape = errors.New("unexpected criteria shape")
)

// Job descriptions longer than this are cut before being sent to the model.
const maxDescriptionBytes = 20000

// CriteriaExtractor turns job-description text into eligibility criteria.
type CriteriaExtractor interface {
	ExtractCriteria(ctx context.Context, jobDescription string) (*Extraction, error)
}

// Extraction is the result of one successful ExtractCriteria call.
type Extraction struct {
	Criteria        eligibility.Criteria `json:"criteria"`
	Diagnostic      string               `json:"diagnostic"`
	DroppedBranches []string             `json:"dropped_branches,omitempty"`
}

type LLMService struct {
	Client llms.Model
}

// NewGeminiModel creates the Gemini client used in production.
func NewGeminiModel(ctx context.Context, apiKey, model string) (llms.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrLLMUnavailable)
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create Gemini client: %w", ErrLLMUnavailable, err)
	}
	return llm, nil
}

// NewLLMService wraps client. A nil client is allowed; every extraction then fails
// with ErrLLMUnavailable instead of taking the server down.
func NewLLMService(client llms.Model) *LLMService {
	return &LLMService{Client: client}
}

const criteriaExtractionPrompt = `
You are an expert campus-placement data extractor. Read the job description below and
extract the eligibility rules and job details.

### OUTPUT SCHEMA:
Return ONLY one JSON object with exactly these keys:
{
    "cgpa": "Minimum CGPA on a 10 point scale as a number (e.g. 7.5), or null",
    "branches": ["Allowed branches, e.g. CSE, ECE, IT, Mechanical. Use [] when all branches are allowed or none are named"],
    "backlogs": "Maximum number of ACTIVE backlogs allowed as an integer (e.g. 0), or null",
    "year_gap": "Maximum allowed year gap as an integer (e.g. 1), or null",
    "ctc": "CTC offered as text (e.g. '12 LPA'), or null",
    "stipend": "Internship stipend as text (e.g. '30k/month'), or null",
    "last_date": "Last date to apply as text, or null",
    "company_description": "Two or three sentences about the company, or null"
}

### CONSTRAINT:
If a value is not stated, use null. Do not guess. Do not wrap the JSON in markdown.

### JOB DESCRIPTION:
%s
`

// ExtractCriteria makes exactly one model call. There is no retry and no timeout
// beyond ctx; the admin decides whether to try again.
func (s *LLMService) ExtractCriteria(ctx context.Context, jobDescription string) (*Extraction, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%w: no model configured, set GEMINI_API_KEY", ErrLLMUnavailable)
	}

	prompt := fmt.Sprintf(criteriaExtractionPrompt, truncateText(jobDescription, maxDescriptionBytes))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLLMUnavailable, err)
	}

	ext, err := ParseCriteriaReply(resp)
	if err != nil {
		return nil, err
	}
	if len(ext.DroppedBranches) > 0 {
		log.Printf("[extract] dropped unrecognized branches: %q", ext.DroppedBranches)
	}
	return ext, nil
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
