package handlers

import (
	"care4-server/internal/forms"
	"care4-server/internal/models"
	"care4-server/internal/services"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler handles intake registration and user lookups.
type UserHandler struct {
	Pipeline *services.Pipeline
	Forms    *FormRunner
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(pipeline *services.Pipeline, runner *FormRunner) *UserHandler {
	return &UserHandler{Pipeline: pipeline, Forms: runner}
}

// CreateUser submits the intake form in one request. Registering an email
// that already exists returns the existing user.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.Forms.Submit(c, "User registered successfully",
		forms.FamilyRegistration, forms.TypeIntake, services.SubmitContext{}, nil, body)
}

// GetUser handles fetching a single user.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Pipeline.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "User retrieved successfully", user)
}

// GetDoctors lists the physicians patients can choose from.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	utils.Success(c, "Doctors retrieved successfully", models.Doctors)
}
