package handlers

import (
	"strconv"

	"care4-server/internal/forms"
	"care4-server/internal/models"
	"care4-server/internal/services"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// DefaultDashboardLimit is how many recent appointments the dashboard lists.
const DefaultDashboardLimit = 50

// AppointmentHandler handles appointment requests and their admin management.
type AppointmentHandler struct {
	Pipeline *services.Pipeline
	Forms    *FormRunner
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(pipeline *services.Pipeline, runner *FormRunner) *AppointmentHandler {
	return &AppointmentHandler{Pipeline: pipeline, Forms: runner}
}

// CreateAppointment submits the create form in one request.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	userID, _ := body["userId"].(string)
	patientID, _ := body["patientId"].(string)
	if userID == "" || patientID == "" {
		utils.BadRequest(c, "userId and patientId are required")
		return
	}

	h.Forms.Submit(c, "Appointment requested successfully",
		forms.FamilyAppointment, string(models.FormTypeCreate),
		services.SubmitContext{UserID: userID, PatientID: patientID}, nil, body)
}

// GetAppointment returns the appointment shown on the success page.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	view, err := h.Pipeline.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointment retrieved successfully", view)
}

// GetDashboard lists recent appointments with status counts (admin).
func (h *AppointmentHandler) GetDashboard(c *gin.Context) {
	limit := DefaultDashboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	dashboard, err := h.Pipeline.RecentAppointments(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", dashboard)
}

// ScheduleAppointment confirms an appointment (admin).
func (h *AppointmentHandler) ScheduleAppointment(c *gin.Context) {
	h.update(c, models.FormTypeSchedule, "Appointment scheduled successfully")
}

// CancelAppointment cancels an appointment (admin).
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	h.update(c, models.FormTypeCancel, "Appointment cancelled successfully")
}

// update runs the schedule or cancel form seeded with the stored appointment,
// so fields missing from the body keep their current values.
func (h *AppointmentHandler) update(c *gin.Context, formType models.AppointmentFormType, message string) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	id := c.Param("id")
	view, err := h.Pipeline.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Forms.Submit(c, message, forms.FamilyAppointment, string(formType),
		services.SubmitContext{AppointmentID: id}, services.AppointmentSeed(view.Appointment), body)
}
