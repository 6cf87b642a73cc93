package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"care4-server/internal/forms"
	"care4-server/internal/services"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// MaxUploadSize bounds identification document uploads.
const MaxUploadSize = 10 << 20

// PatientHandler handles patient registration.
type PatientHandler struct {
	Pipeline *services.Pipeline
	Forms    *FormRunner
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(pipeline *services.Pipeline, runner *FormRunner) *PatientHandler {
	return &PatientHandler{Pipeline: pipeline, Forms: runner}
}

// RegisterPatient submits the patient form in one request. The body is JSON,
// or multipart when an identification document is attached.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	values, err := patientValues(c)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	userID, _ := values["userId"].(string)
	if userID == "" {
		utils.BadRequest(c, "userId is required")
		return
	}

	h.Forms.Submit(c, "Patient registered successfully",
		forms.FamilyRegistration, forms.TypePatient, services.SubmitContext{UserID: userID}, nil, values)
}

// GetPatient handles fetching the patient record of a user.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patient, err := h.Pipeline.GetPatientByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Patient retrieved successfully", patient)
}

func patientValues(c *gin.Context) (map[string]any, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return body, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	values := make(map[string]any, len(form.Value)+1)
	for name, v := range form.Value {
		if len(v) > 0 {
			values[name] = v[0]
		}
	}
	if files := form.File["identificationDocument"]; len(files) > 0 {
		upload, err := readUpload(files[0])
		if err != nil {
			return nil, err
		}
		values["identificationDocument"] = upload
	}
	return values, nil
}

func readUpload(header *multipart.FileHeader) (*forms.Upload, error) {
	if header.Size > MaxUploadSize {
		return nil, fmt.Errorf("file %s exceeds %d bytes", header.Filename, MaxUploadSize)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return &forms.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
