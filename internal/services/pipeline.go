package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care4-server/internal/forms"
	"care4-server/internal/metrics"
	"care4-server/internal/models"
	"care4-server/internal/notify"
	"care4-server/internal/repositories"
	"care4-server/internal/storage"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when an id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRegistered is returned when a user registers as a patient twice.
	ErrAlreadyRegistered = errors.New("patient already registered")
)

// PersistenceError wraps a failed call to a backing service.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Users is the user directory.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

// Patients stores patient registrations.
type Patients interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByUserID(ctx context.Context, userID string) (*models.Patient, error)
}

// Appointments stores appointments.
type Appointments interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	Get(ctx context.Context, id string) (*models.Appointment, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Appointment, error)
	ListRecent(ctx context.Context, limit int) ([]models.Appointment, error)
}

// Deps are the collaborators of the pipeline.
type Deps struct {
	Users        Users
	Patients     Patients
	Appointments Appointments
	Files        storage.FileStorage
	Notifier     notify.Notifier
}

// Pipeline turns validated form values into calls on the backing services.
type Pipeline struct {
	users        Users
	patients     Patients
	appointments Appointments
	files        storage.FileStorage
	notifier     notify.Notifier
	log          zerolog.Logger
}

// NewPipeline creates a new Pipeline. A nil notifier sends nothing.
func NewPipeline(deps Deps, log zerolog.Logger) *Pipeline {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Pipeline{
		users:        deps.Users,
		patients:     deps.Patients,
		appointments: deps.Appointments,
		files:        deps.Files,
		notifier:     notifier,
		log:          log.With().Str("component", "pipeline").Logger(),
	}
}

// call runs one backing-service operation and records its metrics.
func (p *Pipeline) call(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveCall(op, start, err)
	return err
}

func (p *Pipeline) persistenceError(op string, err error) error {
	p.log.Error().Err(err).Str("op", op).Msg("backing service call failed")
	return &PersistenceError{Op: op, Err: err}
}

func required(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "is required"
	}
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &forms.ValidationError{Fields: fields}
}

// CreateUserParams are the quick intake values.
type CreateUserParams struct {
	Name  string
	Email string
	Phone string
}

// CreateUser adds a user to the directory. When the email is already taken
// the existing user is returned instead.
func (p *Pipeline) CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error) {
	fields := map[string]string{}
	required(fields, "name", params.Name)
	required(fields, "email", params.Email)
	if err := validationError(fields); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:  strings.TrimSpace(params.Name),
		Email: strings.TrimSpace(params.Email),
		Phone: strings.TrimSpace(params.Phone),
	}
	err := p.call("users.create", func() error { return p.users.Create(ctx, user) })
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrConflict) {
		return nil, p.persistenceError("users.create", err)
	}

	var existing []models.User
	err = p.call("users.list", func() error {
		var listErr error
		existing, listErr = p.users.List(ctx, repositories.UserFilter{Email: user.Email, Limit: 1})
		return listErr
	})
	if err != nil {
		return nil, p.persistenceError("users.list", err)
	}
	if len(existing) == 0 {
		return nil, p.persistenceError("users.list", fmt.Errorf("conflicting user %s not found", user.Email))
	}
	p.log.Info().Str("user_id", existing[0].ID).Msg("user already exists, returning existing record")
	return &existing[0], nil
}

// GetUser returns a user by id.
func (p *Pipeline) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := p.call("users.get", func() error {
		var getErr error
		user, getErr = p.users.Get(ctx, id)
		return getErr
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, p.persistenceError("users.get", err)
	}
	return user, nil
}

// RegisterPatientParams are the full registration values.
type RegisterPatientParams struct {
	UserID                 string
	Name                   string
	Email                  string
	Phone                  string
	BirthDate              time.Time
	Gender                 string
	Address                string
	Occupation             string
	EmergencyContactName   string
	EmergencyContactNumber string
	PrimaryPhysician       string
	InsuranceProvider      string
	InsurancePolicyNumber  string
	Allergies              string
	CurrentMedication      string
	FamilyMedicalHistory   string
	PastMedicalHistory     string
	IdentificationType     string
	IdentificationNumber   string
	IdentificationDocument *forms.Upload
	TreatmentConsent       bool
	DisclosureConsent      bool
	PrivacyConsent         bool
}

// RegisterPatient stores the patient record of an existing user, uploading
// the identification document first when one is attached.
func (p *Pipeline) RegisterPatient(ctx context.Context, params RegisterPatientParams) (*models.Patient, error) {
	fields := map[string]string{}
	required(fields, "userId", params.UserID)
	if !params.TreatmentConsent {
		fields["treatmentConsent"] = "You must consent to treatment in order to proceed"
	}
	if !params.DisclosureConsent {
		fields["disclosureConsent"] = "You must consent to disclosure in order to proceed"
	}
	if !params.PrivacyConsent {
		fields["privacyConsent"] = "You must consent to privacy in order to proceed"
	}
	if err := validationError(fields); err != nil {
		return nil, err
	}

	if _, err := p.GetUser(ctx, params.UserID); err != nil {
		return nil, err
	}
	switch _, err := p.GetPatientByUser(ctx, params.UserID); {
	case err == nil:
		return nil, fmt.Errorf("user %s: %w", params.UserID, ErrAlreadyRegistered)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	patient := &models.Patient{
		UserID:                 params.UserID,
		Name:                   params.Name,
		Email:                  params.Email,
		Phone:                  params.Phone,
		BirthDate:              params.BirthDate,
		Gender:                 params.Gender,
		Address:                params.Address,
		Occupation:             params.Occupation,
		EmergencyContactName:   params.EmergencyContactName,
		EmergencyContactNumber: params.EmergencyContactNumber,
		PrimaryPhysician:       params.PrimaryPhysician,
		InsuranceProvider:      params.InsuranceProvider,
		InsurancePolicyNumber:  params.InsurancePolicyNumber,
		Allergies:              params.Allergies,
		CurrentMedication:      params.CurrentMedication,
		FamilyMedicalHistory:   params.FamilyMedicalHistory,
		PastMedicalHistory:     params.PastMedicalHistory,
		IdentificationType:     params.IdentificationType,
		IdentificationNumber:   params.IdentificationNumber,
		TreatmentConsent:       params.TreatmentConsent,
		DisclosureConsent:      params.DisclosureConsent,
		PrivacyConsent:         params.PrivacyConsent,
	}

	if doc := params.IdentificationDocument; doc != nil && len(doc.Data) > 0 {
		file := storage.File{Name: doc.FileName, ContentType: doc.ContentType, Content: doc.Data}
		var stored storage.Stored
		err := p.call("files.put", func() error {
			var putErr error
			stored, putErr = p.files.Put(ctx, file)
			return putErr
		})
		if err != nil {
			return nil, p.persistenceError("files.put", err)
		}
		patient.IdentificationDocumentID = stored.ID
		patient.IdentificationDocumentURL = stored.URL
	}

	err := p.call("patients.create", func() error { return p.patients.Create(ctx, patient) })
	if err != nil {
		p.discardDocument(ctx, patient.IdentificationDocumentID)
	}
	if errors.Is(err, repositories.ErrConflict) {
		return nil, fmt.Errorf("user %s: %w", params.UserID, ErrAlreadyRegistered)
	}
	if err != nil {
		return nil, p.persistenceError("patients.create", err)
	}
	return patient, nil
}

// discardDocument removes a document uploaded for a registration that was
// not stored.
func (p *Pipeline) discardDocument(ctx context.Context, id string) {
	if id == "" {
		return
	}
	err := p.call("files.delete", func() error { return p.files.Delete(context.WithoutCancel(ctx), id) })
	if err != nil {
		p.log.Warn().Err(err).Str("file", id).Msg("failed to remove orphaned document")
	}
}

// GetPatientByUser returns the patient registered by a user.
func (p *Pipeline) GetPatientByUser(ctx context.Context, userID string) (*models.Patient, error) {
	var patient *models.Patient
	err := p.call("patients.get", func() error {
		var getErr error
		patient, getErr = p.patients.GetByUserID(ctx, userID)
		return getErr
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("patient for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, p.persistenceError("patients.get", err)
	}
	return patient, nil
}

// Document loads a stored identification document.
func (p *Pipeline) Document(ctx context.Context, id string) (*storage.File, error) {
	var file *storage.File
	err := p.call("files.get", func() error {
		var getErr error
		file, getErr = p.files.Get(ctx, id)
		return getErr
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, p.persistenceError("files.get", err)
	}
	return file, nil
}
