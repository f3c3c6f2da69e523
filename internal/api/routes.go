package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	planService service.PlanService,
	studentService service.StudentService,
) {
	authHandler := NewAuthHandler(authService)
	trainerHandler := NewTrainerHandler(trainerService, planService)
	studentHandler := NewStudentHandler(studentService, planService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Trainer Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// Roster management
			trainerGroup.POST("/students", trainerHandler.AddStudentByEmail)
			trainerGroup.GET("/students", trainerHandler.GetManagedStudents)

			// Plan authoring: the full plan payload goes in one request
			trainerGroup.POST("/students/:studentId/plans", trainerHandler.CreatePlan)
			trainerGroup.GET("/students/:studentId/plans", trainerHandler.GetPlansForStudent)
			trainerGroup.GET("/plans", trainerHandler.GetMyPlans)
			trainerGroup.GET("/plans/:planId", trainerHandler.GetPlanDetail)

			// Reviewing a student's submitted attachment
			trainerGroup.GET("/sessions/:sessionId/attachments/:uploadId/download", studentHandler.GetAttachmentDownloadURL)
		}

		// --- Student Routes ---
		studentGroup := protected.Group("/student")
		studentGroup.Use(RoleMiddleware(domain.RoleStudent))
		{
			studentGroup.GET("/plans", studentHandler.GetMyPlans)
			studentGroup.GET("/plans/:planId", studentHandler.GetPlanDetail)

			// Today resolution, ?date=YYYY-MM-DD overrides the server clock
			studentGroup.GET("/today", studentHandler.GetTodaySession)

			// Session logging
			studentGroup.POST("/days/:dayId/complete", studentHandler.CompleteSession)
			studentGroup.GET("/history", studentHandler.GetSessionHistory)
			studentGroup.GET("/sessions/:sessionId", studentHandler.GetSessionDetail)

			// Session attachments (presigned upload flow)
			studentGroup.POST("/sessions/:sessionId/attachments/request-upload", studentHandler.RequestAttachmentUpload)
			studentGroup.POST("/sessions/:sessionId/attachments/confirm", studentHandler.ConfirmAttachmentUpload)
			studentGroup.GET("/sessions/:sessionId/attachments/:uploadId/download", studentHandler.GetAttachmentDownloadURL)
		}
	}
}
