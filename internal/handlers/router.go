package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-portal/internal/models"
	"github.com/justsurfingit/placement-portal/internal/services"
)

// NewRouter wires every route under /api/v1.
func NewRouter(auth *AuthHandler, jobs *JobHandler, users *services.UserService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true // the UI is served from a different origin
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", HeaderUserEmail, HeaderRequestID}
	config.ExposeHeaders = []string{HeaderRequestID}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)
		api.GET("/branches", ListBranches)

		api.POST("/auth/signup", auth.Signup)
		api.POST("/auth/login", auth.Login)

		admin := api.Group("/admin", RequireRole(users, models.RoleAdmin))
		admin.POST("/jobs/extract", jobs.ParseJob)
		admin.POST("/jobs", jobs.CreateJob)
		admin.GET("/jobs/:id/students", jobs.JobStudents)

		student := api.Group("/student", RequireRole(users, models.RoleStudent))
		student.GET("/jobs", jobs.StudentJobs)
		student.GET("/profile", jobs.StudentProfile)
	}
	return r
}
