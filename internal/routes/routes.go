package routes

import (
	"care4-server/internal/config"
	"care4-server/internal/forms"
	"care4-server/internal/handlers"
	"care4-server/internal/inflight"
	"care4-server/internal/middleware"
	"care4-server/internal/models"
	"care4-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the handlers are built from.
type Dependencies struct {
	Cfg      *config.Config
	Pipeline *services.Pipeline
	Resolver *forms.Resolver
	Guard    inflight.Guard
	// Sessions holds patient-facing form sessions, AdminSessions the
	// schedule and cancel forms.
	Sessions      *forms.Sessions
	AdminSessions *forms.Sessions
	Log           zerolog.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	runner := &handlers.FormRunner{
		Pipeline: deps.Pipeline,
		Resolver: deps.Resolver,
		Guard:    deps.Guard,
		LockTTL:  deps.Cfg.Forms.SubmissionLockTTL,
		Log:      deps.Log,
	}

	adminHandler := handlers.NewAdminHandler(deps.Cfg)
	userHandler := handlers.NewUserHandler(deps.Pipeline, runner)
	patientHandler := handlers.NewPatientHandler(deps.Pipeline, runner)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Pipeline, runner)
	fileHandler := handlers.NewFileHandler(deps.Pipeline)
	formHandler := handlers.NewFormHandler(deps.Pipeline, runner, deps.Sessions)
	adminFormHandler := handlers.NewFormHandler(deps.Pipeline, runner, deps.AdminSessions)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.GET("/doctors", userHandler.GetDoctors)

		formRoutes := public.Group("/forms")
		{
			formRoutes.POST("/registration/:type/sessions", formHandler.OpenRegistration)
			formRoutes.POST("/appointment/create/sessions", formHandler.OpenCreateAppointment)
			sessionRoutes(formRoutes.Group("/sessions/:id"), formHandler)
		}

		public.POST("/users", userHandler.CreateUser)
		public.GET("/users/:id", userHandler.GetUser)

		public.POST("/patients", patientHandler.RegisterPatient)
		public.GET("/patients/:userId", patientHandler.GetPatient)

		public.POST("/appointments", appointmentHandler.CreateAppointment)
		public.GET("/appointments/:id", appointmentHandler.GetAppointment)

		public.GET("/files/:id", fileHandler.GetFile)

		public.POST("/admin/session", adminHandler.CreateSession)
	}

	// Admin routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(deps.Cfg), middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		admin.GET("/appointments", appointmentHandler.GetDashboard)
		admin.PATCH("/appointments/:id/schedule", appointmentHandler.ScheduleAppointment)
		admin.PATCH("/appointments/:id/cancel", appointmentHandler.CancelAppointment)

		admin.POST("/forms/appointment/:type/sessions", adminFormHandler.OpenAppointmentUpdate)
		sessionRoutes(admin.Group("/forms/sessions/:id"), adminFormHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}

func sessionRoutes(group *gin.RouterGroup, h *handlers.FormHandler) {
	group.GET("", h.GetSession)
	group.PATCH("", h.UpdateSession)
	group.PUT("/files/:name", h.AttachFile)
	group.POST("/submit", h.SubmitSession)
}
