package handlers

import (
	"errors"
	"time"

	"care4-server/internal/forms"
	"care4-server/internal/models"
	"care4-server/internal/services"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// FormHandler serves form sessions: a controller kept alive between requests
// so clients can validate field by field before submitting.
type FormHandler struct {
	Pipeline *services.Pipeline
	Forms    *FormRunner
	Sessions *forms.Sessions
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(pipeline *services.Pipeline, runner *FormRunner, sessions *forms.Sessions) *FormHandler {
	return &FormHandler{Pipeline: pipeline, Forms: runner, Sessions: sessions}
}

// SessionResponse is a session with its rendered form.
type SessionResponse struct {
	ID        string             `json:"id"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Errors    map[string]string  `json:"errors,omitempty"`
	Form      forms.RenderedForm `json:"form"`
}

// OpenSessionRequest carries the ids a form is opened for.
type OpenSessionRequest struct {
	UserID        string `json:"userId" form:"userId"`
	PatientID     string `json:"patientId" form:"patientId"`
	AppointmentID string `json:"appointmentId" form:"appointmentId"`
}

// SessionValuesRequest is a batch of field changes.
type SessionValuesRequest struct {
	Values map[string]any `json:"values" binding:"required"`
}

func sessionResponse(sess *forms.Session) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Errors:    sess.Controller.Errors(),
		Form:      sess.Controller.Render(),
	}
}

func bindOpenRequest(c *gin.Context) (OpenSessionRequest, bool) {
	var req OpenSessionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequest(c, "Invalid query: "+err.Error())
		return req, false
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request body: "+err.Error())
			return req, false
		}
	}
	return req, true
}

func (h *FormHandler) open(c *gin.Context, family, typ string, sc services.SubmitContext, seed map[string]any) {
	ctrl, submit, err := h.Forms.Open(family, typ, sc, seed)
	if err != nil {
		var cfgErr *forms.ConfigurationError
		if errors.As(err, &cfgErr) && cfgErr.Field == "" {
			utils.BadRequest(c, cfgErr.Error())
			return
		}
		respondError(c, err)
		return
	}

	sess := h.Sessions.Open(ctrl, submit, lo.OmitByValues(map[string]string{
		"userId":        sc.UserID,
		"patientId":     sc.PatientID,
		"appointmentId": sc.AppointmentID,
	}, []string{""}))
	utils.Created(c, "Form session opened", sessionResponse(sess))
}

// OpenRegistration opens an intake or patient form. The patient form starts
// from the registered user's contact details.
func (h *FormHandler) OpenRegistration(c *gin.Context) {
	req, ok := bindOpenRequest(c)
	if !ok {
		return
	}

	typ := c.Param("type")
	var seed map[string]any
	if typ == forms.TypePatient {
		if req.UserID == "" {
			utils.BadRequest(c, "userId is required")
			return
		}
		user, err := h.Pipeline.GetUser(c.Request.Context(), req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		seed = map[string]any{"name": user.Name, "email": user.Email, "phone": user.Phone}
	}

	h.open(c, forms.FamilyRegistration, typ, services.SubmitContext{UserID: req.UserID}, seed)
}

// OpenCreateAppointment opens the appointment request form for a patient.
func (h *FormHandler) OpenCreateAppointment(c *gin.Context) {
	req, ok := bindOpenRequest(c)
	if !ok {
		return
	}
	h.open(c, forms.FamilyAppointment, string(models.FormTypeCreate),
		services.SubmitContext{UserID: req.UserID, PatientID: req.PatientID}, nil)
}

// OpenAppointmentUpdate opens a schedule or cancel form seeded with the
// stored appointment (admin).
func (h *FormHandler) OpenAppointmentUpdate(c *gin.Context) {
	req, ok := bindOpenRequest(c)
	if !ok {
		return
	}
	typ := c.Param("type")
	if typ != string(models.FormTypeSchedule) && typ != string(models.FormTypeCancel) {
		utils.BadRequest(c, models.ErrUnknownFormType.Error()+": "+typ)
		return
	}
	if req.AppointmentID == "" {
		utils.BadRequest(c, "appointmentId is required")
		return
	}

	view, err := h.Pipeline.GetAppointment(c.Request.Context(), req.AppointmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.open(c, forms.FamilyAppointment, typ,
		services.SubmitContext{AppointmentID: req.AppointmentID}, services.AppointmentSeed(view.Appointment))
}

func (h *FormHandler) session(c *gin.Context) (*forms.Session, bool) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		utils.NotFound(c, "Form session not found or expired")
		return nil, false
	}
	return sess, true
}

// GetSession returns the current state of a form session.
func (h *FormHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	utils.Success(c, "Form session retrieved successfully", sessionResponse(sess))
}

// UpdateSession applies field changes. Each change is validated on its own;
// invalid values are reported in errors and kept in the form.
func (h *FormHandler) UpdateSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SessionValuesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	schema := sess.Controller.Schema()
	for name := range req.Values {
		d, ok := schema.Field(name)
		if !ok {
			utils.BadRequest(c, "Unknown field: "+name)
			return
		}
		if d.File {
			utils.BadRequest(c, "Field "+name+" takes a file upload")
			return
		}
	}
	// Schema order keeps error reporting stable.
	for _, d := range schema.Fields {
		v, ok := req.Values[d.Name]
		if !ok {
			continue
		}
		if err := sess.Controller.Change(d.Name, v); err != nil {
			respondError(c, err)
			return
		}
	}
	utils.Success(c, "Form session updated", sessionResponse(sess))
}

// AttachFile sets a file field from a multipart upload in "file".
func (h *FormHandler) AttachFile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	name := c.Param("name")
	d, ok := sess.Controller.Schema().Field(name)
	if !ok || !d.File {
		utils.BadRequest(c, "Field "+name+" does not take a file upload")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "File upload error: "+err.Error())
		return
	}
	upload, err := readUpload(header)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if err := sess.Controller.Change(name, upload); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "File attached", sessionResponse(sess))
}

// SubmitSession submits the form. On success the response carries the
// outcome and the session is closed.
func (h *FormHandler) SubmitSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := sess.Controller.Submit(c.Request.Context(), sess.Submit); err != nil {
		respondError(c, err)
		return
	}
	resp := sessionResponse(sess)
	h.Sessions.Close(sess.ID)
	utils.Success(c, "Form submitted successfully", resp)
}
