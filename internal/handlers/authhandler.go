package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-portal/internal/branch"
	"github.com/justsurfingit/placement-portal/internal/dtos"
	"github.com/justsurfingit/placement-portal/internal/models"
	"github.com/justsurfingit/placement-portal/internal/services"
)

type AuthHandler struct {
	UserService *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{UserService: users}
}

// Signup is the POST /auth/signup endpoint
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dtos.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		user dtos.UserResponse
		err  error
	)
	if req.Role == string(models.RoleAdmin) {
		var u *models.User
		if u, err = h.UserService.RegisterAdmin(ctx, req.Email, req.Password); err == nil {
			user = dtos.UserResponse{Email: u.Email, Role: string(u.Role)}
		}
	} else {
		var p *models.StudentProfile
		p, err = h.UserService.RegisterStudent(ctx, services.StudentSignup{
			Email:       req.Email,
			Password:    req.Password,
			RollNumber:  req.RollNumber,
			FullName:    req.FullName,
			CGPA:        req.CGPA,
			Branch:      req.Branch,
			Class10Perc: req.Class10Perc,
			Class12Perc: req.Class12Perc,
			Backlogs:    req.Backlogs,
			YearGap:     req.YearGap,
		})
		if err == nil {
			user = dtos.UserResponse{Email: p.Email, Role: string(models.RoleStudent)}
		}
	}

	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, services.ErrUnknownBranch), errors.Is(err, services.ErrInvalidProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
	}
}

// Login is the POST /auth/login endpoint
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	user, err := h.UserService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	c.JSON(http.StatusOK, dtos.UserResponse{Email: user.Email, Role: string(user.Role)})
}

// ListBranches backs the branch picker on the signup form.
func ListBranches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"branches": branch.All()})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
