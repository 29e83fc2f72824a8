package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-portal/internal/dtos"
	"github.com/justsurfingit/placement-portal/internal/services"
)

type JobHandler struct {
	PostingService *services.PostingService
	JobService     *services.JobService
	UserService    *services.UserService
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(posting *services.PostingService, jobs *services.JobService, users *services.UserService) *JobHandler {
	return &JobHandler{
		PostingService: posting,
		JobService:     jobs,
		UserService:    users,
	}
}

// ParseJob is the POST /admin/jobs/extract endpoint. It returns the extracted
// criteria and the students who would be eligible; nothing is saved.
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	preview, err := h.PostingService.Preview(c.Request.Context(), services.PreviewRequest{
		CompanyName: req.CompanyName,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		status, msg := postingErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	dropped := preview.Extraction.DroppedBranches
	if dropped == nil {
		dropped = []string{}
	}
	c.JSON(http.StatusOK, dtos.JobExtractionResponse{
		CompanyName:     req.CompanyName,
		Description:     preview.Description,
		Criteria:        preview.Extraction.Criteria,
		Diagnostic:      preview.Extraction.Diagnostic,
		DroppedBranches: dropped,
		EligibleCount:   len(preview.Eligible),
		Eligible:        dtos.ToEligibleStudents(preview.Eligible),
	})
}

// CreateJob is the POST /admin/jobs endpoint
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	res, err := h.PostingService.Publish(c.Request.Context(), services.PublishRequest{
		CompanyName: req.CompanyName,
		Description: req.Description,
		SourceURL:   req.SourceURL,
		PostedBy:    currentUser(c).Email,
		Criteria:    req.Criteria,
	})
	if err != nil {
		status, msg := postingErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, dtos.JobCreationResponse{
		Job:             res.Job,
		EligibleCount:   len(res.EligibleEmails),
		DroppedBranches: res.DroppedBranches,
	})
}

// JobStudents is the GET /admin/jobs/:id/students endpoint. It lists the students
// linked to a job when it was posted.
func (h *JobHandler) JobStudents(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}
	emails, err := h.JobService.EligibleEmails(c.Request.Context(), uint(id))
	if err != nil {
		log.Printf("[jobs] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load eligible students"})
		return
	}
	if emails == nil {
		emails = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"job_id": id, "emails": emails})
}

// StudentJobs is the GET /student/jobs endpoint
func (h *JobHandler) StudentJobs(c *gin.Context) {
	user := currentUser(c)
	jobs, err := h.JobService.JobsForStudent(c.Request.Context(), user.Email)
	if err != nil {
		log.Printf("[jobs] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// StudentProfile is the GET /student/profile endpoint
func (h *JobHandler) StudentProfile(c *gin.Context) {
	profile, err := h.UserService.Profile(c.Request.Context(), currentUser(c).Email)
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No profile for this account"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func postingErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrMissingCompany), errors.Is(err, services.ErrMissingDescription):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrLLMUnavailable):
		return http.StatusBadGateway, "AI extraction unavailable: " + err.Error()
	case errors.Is(err, services.ErrFetchFailed):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, services.ErrNoJSONObject), errors.Is(err, services.ErrCriteriaShape):
		return http.StatusUnprocessableEntity, "AI extraction failed: " + err.Error()
	case errors.Is(err, services.ErrNoCriteria):
		return http.StatusUnprocessableEntity, "No eligibility rules found. Check the job description before posting."
	case errors.Is(err, services.ErrNoEligibleStudents):
		return http.StatusUnprocessableEntity, "No students match these criteria, nothing was posted."
	default:
		log.Printf("[jobs] posting failed: %v", err)
		return http.StatusInternalServerError, "Failed to post job"
	}
}
