package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"care4-server/internal/forms"
	"care4-server/internal/models"
	"care4-server/internal/repositories"
	"care4-server/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAppointment_Pending(t *testing.T) {
	var stored *models.Appointment
	p := NewPipeline(Deps{Appointments: &mockAppointments{
		CreateFn: func(_ context.Context, a *models.Appointment) error {
			a.ID = "a1"
			stored = a
			return nil
		},
	}}, zerolog.Nop())

	schedule := time.Now().Add(48 * time.Hour)
	got, err := p.CreateAppointment(context.Background(), CreateAppointmentParams{
		UserID:           "u1",
		PatientID:        "p1",
		PrimaryPhysician: "Dr. A",
		Schedule:         schedule,
		Reason:           "checkup",
	})

	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, stored, got)
	assert.Equal(t, "Dr. A", got.PrimaryPhysician)
}

func TestCreateAppointment_MissingInputsSkipCollaborator(t *testing.T) {
	calls := 0
	p := NewPipeline(Deps{Appointments: &mockAppointments{
		CreateFn: func(context.Context, *models.Appointment) error { calls++; return nil },
	}}, zerolog.Nop())

	_, err := p.CreateAppointment(context.Background(), CreateAppointmentParams{UserID: "u1", Reason: " "})

	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"patientId", "primaryPhysician", "schedule", "reason"}, keys(verr.Fields))
	assert.Zero(t, calls)
}

func TestCreateAppointment_PersistenceError(t *testing.T) {
	boom := errors.New("db down")
	p := NewPipeline(Deps{Appointments: &mockAppointments{
		CreateFn: func(context.Context, *models.Appointment) error { return boom },
	}}, zerolog.Nop())

	_, err := p.CreateAppointment(context.Background(), CreateAppointmentParams{
		UserID: "u1", PatientID: "p1", PrimaryPhysician: "Jane Powell", Schedule: time.Now(), Reason: "checkup",
	})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "appointments.create", perr.Op)
	assert.ErrorIs(t, err, boom)
}

func TestUpdateAppointment_StatusFromFormType(t *testing.T) {
	tests := []struct {
		formType models.AppointmentFormType
		update   AppointmentUpdate
		want     models.AppointmentStatus
	}{
		{models.FormTypeSchedule, AppointmentUpdate{PrimaryPhysician: ptr("John Green")}, models.StatusScheduled},
		{models.FormTypeCancel, AppointmentUpdate{CancellationReason: ptr("travel")}, models.StatusCancelled},
		{models.FormTypeCreate, AppointmentUpdate{}, models.StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.formType), func(t *testing.T) {
			var columns map[string]any
			p := NewPipeline(Deps{
				Users: &mockUsers{},
				Appointments: &mockAppointments{
					UpdateFn: func(_ context.Context, id string, fields map[string]any) (*models.Appointment, error) {
						columns = fields
						return &models.Appointment{BaseModel: models.BaseModel{ID: id}, Status: fields["status"].(models.AppointmentStatus)}, nil
					},
				},
			}, zerolog.Nop())

			got, err := p.UpdateAppointment(context.Background(), "a1", tt.update, tt.formType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.want, columns["status"])
			assert.Len(t, columns, len(tt.update.columns())+1)
		})
	}
}

func TestUpdateAppointment_Errors(t *testing.T) {
	p := NewPipeline(Deps{Appointments: &mockAppointments{
		UpdateFn: func(context.Context, string, map[string]any) (*models.Appointment, error) {
			return nil, repositories.ErrNotFound
		},
	}}, zerolog.Nop())
	ctx := context.Background()

	_, err := p.UpdateAppointment(ctx, "missing", AppointmentUpdate{PrimaryPhysician: ptr("x")}, models.FormTypeSchedule)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.UpdateAppointment(ctx, "", AppointmentUpdate{}, models.FormTypeSchedule)
	var verr *forms.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = p.UpdateAppointment(ctx, "a1", AppointmentUpdate{}, models.FormTypeCancel)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cancellationReason")

	_, err = p.UpdateAppointment(ctx, "a1", AppointmentUpdate{}, "archive")
	assert.ErrorIs(t, err, models.ErrUnknownFormType)
}

func TestUpdateAppointment_NotifiesPatient(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	p := NewPipeline(Deps{
		Users: &mockUsers{},
		Appointments: &mockAppointments{
			UpdateFn: func(_ context.Context, id string, fields map[string]any) (*models.Appointment, error) {
				return &models.Appointment{
					BaseModel:        models.BaseModel{ID: id},
					UserID:           "u1",
					PrimaryPhysician: "John Green",
					Schedule:         time.Date(2030, 6, 1, 14, 30, 0, 0, time.UTC),
					Status:           fields["status"].(models.AppointmentStatus),
				}, nil
			},
		},
		Notifier: notifier,
	}, zerolog.Nop())

	_, err := p.UpdateAppointment(context.Background(), "a1", AppointmentUpdate{PrimaryPhysician: ptr("John Green")}, models.FormTypeSchedule)

	require.NoError(t, err, "notification failures are not returned")
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "patient@example.com", notifier.sent[0].To)
	assert.Contains(t, notifier.sent[0].Body, "with Dr. John Green")
}

func TestCreateUser_ConflictReturnsExisting(t *testing.T) {
	existing := models.User{BaseModel: models.BaseModel{ID: "u-old"}, Name: "Ada Obi", Email: "ada@example.com"}
	var filter repositories.UserFilter
	p := NewPipeline(Deps{Users: &mockUsers{
		CreateFn: func(context.Context, *models.User) error { return repositories.ErrConflict },
		ListFn: func(_ context.Context, f repositories.UserFilter) ([]models.User, error) {
			filter = f
			return []models.User{existing}, nil
		},
	}}, zerolog.Nop())

	got, err := p.CreateUser(context.Background(), CreateUserParams{Name: "Ada", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "u-old", got.ID)
	assert.Equal(t, "ada@example.com", filter.Email)
}

func TestCreateUser_Failures(t *testing.T) {
	ctx := context.Background()

	p := NewPipeline(Deps{Users: &mockUsers{
		CreateFn: func(context.Context, *models.User) error { return errors.New("directory down") },
	}}, zerolog.Nop())
	_, err := p.CreateUser(ctx, CreateUserParams{Name: "Ada", Email: "ada@example.com"})
	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)

	_, err = p.CreateUser(ctx, CreateUserParams{Name: "Ada"})
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")

	p = NewPipeline(Deps{Users: &mockUsers{
		CreateFn: func(context.Context, *models.User) error { return repositories.ErrConflict },
		ListFn:   func(context.Context, repositories.UserFilter) ([]models.User, error) { return nil, nil },
	}}, zerolog.Nop())
	_, err = p.CreateUser(ctx, CreateUserParams{Name: "Ada", Email: "ada@example.com"})
	assert.ErrorAs(t, err, &perr)
}

func TestRegisterPatient_ConsentRequired(t *testing.T) {
	calls := 0
	p := NewPipeline(Deps{
		Users:    &mockUsers{},
		Patients: &mockPatients{CreateFn: func(context.Context, *models.Patient) error { calls++; return nil }},
	}, zerolog.Nop())

	_, err := p.RegisterPatient(context.Background(), RegisterPatientParams{UserID: "u1", TreatmentConsent: true})

	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"disclosureConsent", "privacyConsent"}, keys(verr.Fields))
	assert.Zero(t, calls)
}

func TestRegisterPatient_UploadsDocument(t *testing.T) {
	var put storage.File
	var saved *models.Patient
	p := NewPipeline(Deps{
		Users: &mockUsers{},
		Patients: &mockPatients{CreateFn: func(_ context.Context, patient *models.Patient) error {
			patient.ID = "p1"
			saved = patient
			return nil
		}},
		Files: &mockFiles{PutFn: func(_ context.Context, f storage.File) (storage.Stored, error) {
			put = f
			return storage.Stored{ID: "f1", URL: "/api/v1/files/f1"}, nil
		}},
	}, zerolog.Nop())

	got, err := p.RegisterPatient(context.Background(), RegisterPatientParams{
		UserID:                 "u1",
		Name:                   "Ada Obi",
		IdentificationDocument: &forms.Upload{FileName: "id.png", ContentType: "image/png", Data: []byte{9}},
		TreatmentConsent:       true,
		DisclosureConsent:      true,
		PrivacyConsent:         true,
	})

	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, storage.File{Name: "id.png", ContentType: "image/png", Content: []byte{9}}, put)
	assert.Equal(t, "f1", saved.IdentificationDocumentID)
	assert.Equal(t, "/api/v1/files/f1", saved.IdentificationDocumentURL)
}

func TestRegisterPatient_Failures(t *testing.T) {
	ok := RegisterPatientParams{UserID: "u1", TreatmentConsent: true, DisclosureConsent: true, PrivacyConsent: true}
	ctx := context.Background()

	p := NewPipeline(Deps{Users: &mockUsers{
		GetFn: func(context.Context, string) (*models.User, error) { return nil, repositories.ErrNotFound },
	}}, zerolog.Nop())
	_, err := p.RegisterPatient(ctx, ok)
	assert.ErrorIs(t, err, ErrNotFound)

	p = NewPipeline(Deps{
		Users:    &mockUsers{},
		Patients: &mockPatients{CreateFn: func(context.Context, *models.Patient) error { return repositories.ErrConflict }},
	}, zerolog.Nop())
	_, err = p.RegisterPatient(ctx, ok)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	withDoc := ok
	withDoc.IdentificationDocument = &forms.Upload{FileName: "a.pdf", Data: []byte("x")}
	p = NewPipeline(Deps{
		Users:    &mockUsers{},
		Patients: &mockPatients{},
		Files: &mockFiles{PutFn: func(context.Context, storage.File) (storage.Stored, error) {
			return storage.Stored{}, errors.New("bucket missing")
		}},
	}, zerolog.Nop())
	_, err = p.RegisterPatient(ctx, withDoc)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "files.put", perr.Op)
}

func TestRegisterPatient_ExistingRegistrationSkipsUpload(t *testing.T) {
	puts, creates := 0, 0
	p := NewPipeline(Deps{
		Users: &mockUsers{},
		Patients: &mockPatients{
			CreateFn: func(context.Context, *models.Patient) error { creates++; return nil },
			GetByUserIDFn: func(_ context.Context, userID string) (*models.Patient, error) {
				return &models.Patient{UserID: userID}, nil
			},
		},
		Files: &mockFiles{PutFn: func(context.Context, storage.File) (storage.Stored, error) {
			puts++
			return storage.Stored{ID: "f1"}, nil
		}},
	}, zerolog.Nop())

	_, err := p.RegisterPatient(context.Background(), RegisterPatientParams{
		UserID:                 "u1",
		IdentificationDocument: &forms.Upload{FileName: "id.png", Data: []byte{1}},
		TreatmentConsent:       true,
		DisclosureConsent:      true,
		PrivacyConsent:         true,
	})

	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Zero(t, puts)
	assert.Zero(t, creates)
}

func TestRegisterPatient_RemovesDocumentWhenCreateFails(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		want      error
	}{
		{name: "conflict", createErr: repositories.ErrConflict, want: ErrAlreadyRegistered},
		{name: "database down", createErr: errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted []string
			p := NewPipeline(Deps{
				Users:    &mockUsers{},
				Patients: &mockPatients{CreateFn: func(context.Context, *models.Patient) error { return tt.createErr }},
				Files: &mockFiles{
					PutFn: func(context.Context, storage.File) (storage.Stored, error) {
						return storage.Stored{ID: "f1", URL: "/api/v1/files/f1"}, nil
					},
					DeleteFn: func(_ context.Context, id string) error {
						deleted = append(deleted, id)
						return nil
					},
				},
			}, zerolog.Nop())

			_, err := p.RegisterPatient(context.Background(), RegisterPatientParams{
				UserID:                 "u1",
				IdentificationDocument: &forms.Upload{FileName: "id.png", Data: []byte{1}},
				TreatmentConsent:       true,
				DisclosureConsent:      true,
				PrivacyConsent:         true,
			})

			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				var perr *PersistenceError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, "patients.create", perr.Op)
			}
			assert.Equal(t, []string{"f1"}, deleted)
		})
	}
}

func TestGetAppointment_View(t *testing.T) {
	p := NewPipeline(Deps{Appointments: &mockAppointments{
		GetFn: func(_ context.Context, id string) (*models.Appointment, error) {
			if id != "a1" {
				return nil, repositories.ErrNotFound
			}
			return &models.Appointment{
				BaseModel:        models.BaseModel{ID: "a1"},
				PrimaryPhysician: "Leila Cameron",
				Schedule:         time.Date(2030, 6, 1, 14, 30, 0, 0, time.UTC),
			}, nil
		},
	}}, zerolog.Nop())

	view, err := p.GetAppointment(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, view.Doctor)
	assert.Equal(t, "/assets/images/dr-cameron.png", view.Doctor.Image)
	assert.Equal(t, "06/01/2030 - 2:30 PM", view.ScheduleLabel)

	_, err = p.GetAppointment(context.Background(), "zz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentAppointments_Counts(t *testing.T) {
	p := NewPipeline(Deps{Appointments: &mockAppointments{
		ListRecentFn: func(context.Context, int) ([]models.Appointment, error) {
			return []models.Appointment{
				{Status: models.StatusPending},
				{Status: models.StatusScheduled},
				{Status: models.StatusScheduled},
				{Status: models.StatusCancelled},
			}, nil
		},
	}}, zerolog.Nop())

	d, err := p.RecentAppointments(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, d.TotalCount)
	assert.Equal(t, 2, d.ScheduledCount)
	assert.Equal(t, 1, d.PendingCount)
	assert.Equal(t, 1, d.CancelledCount)
}

func TestDocument(t *testing.T) {
	p := NewPipeline(Deps{Files: &mockFiles{GetFn: func(context.Context, string) (*storage.File, error) {
		return nil, storage.ErrNotFound
	}}}, zerolog.Nop())
	_, err := p.Document(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func ptr[T any](v T) *T { return &v }

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
