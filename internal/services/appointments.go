package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care4-server/internal/models"
	"care4-server/internal/notify"
	"care4-server/internal/repositories"

	"github.com/samber/lo"
)

// ScheduleLayout formats appointment times for display.
const ScheduleLayout = "01/02/2006 - 3:04 PM"

// CreateAppointmentParams are the values of a new appointment request.
type CreateAppointmentParams struct {
	UserID           string
	PatientID        string
	PrimaryPhysician string
	Schedule         time.Time
	Reason           string
	Note             string
}

// CreateAppointment stores a pending appointment and returns it with its new id.
func (p *Pipeline) CreateAppointment(ctx context.Context, params CreateAppointmentParams) (*models.Appointment, error) {
	fields := map[string]string{}
	required(fields, "userId", params.UserID)
	required(fields, "patientId", params.PatientID)
	required(fields, "primaryPhysician", params.PrimaryPhysician)
	required(fields, "reason", params.Reason)
	if params.Schedule.IsZero() {
		fields["schedule"] = "is required"
	}
	if err := validationError(fields); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		UserID:           params.UserID,
		PatientID:        params.PatientID,
		PrimaryPhysician: params.PrimaryPhysician,
		Schedule:         params.Schedule,
		Reason:           params.Reason,
		Note:             params.Note,
		Status:           models.MustStatusFor(models.FormTypeCreate),
	}
	if err := p.call("appointments.create", func() error { return p.appointments.Create(ctx, appointment) }); err != nil {
		return nil, p.persistenceError("appointments.create", err)
	}
	p.log.Info().Str("appointment_id", appointment.ID).Str("user_id", appointment.UserID).Msg("appointment requested")
	return appointment, nil
}

// AppointmentUpdate holds the fields a schedule or cancel form changes.
// Nil fields are left as stored.
type AppointmentUpdate struct {
	PrimaryPhysician   *string
	Schedule           *time.Time
	Reason             *string
	Note               *string
	CancellationReason *string
}

func (u AppointmentUpdate) columns() map[string]any {
	fields := map[string]any{}
	if u.PrimaryPhysician != nil {
		fields["primary_physician"] = *u.PrimaryPhysician
	}
	if u.Schedule != nil {
		fields["schedule"] = *u.Schedule
	}
	if u.Reason != nil {
		fields["reason"] = *u.Reason
	}
	if u.Note != nil {
		fields["note"] = *u.Note
	}
	if u.CancellationReason != nil {
		fields["cancellation_reason"] = *u.CancellationReason
	}
	return fields
}

// UpdateAppointment applies update to an existing appointment and moves it
// to the status formType leads to. The patient is notified when the
// appointment is scheduled or cancelled.
func (p *Pipeline) UpdateAppointment(ctx context.Context, id string, update AppointmentUpdate, formType models.AppointmentFormType) (*models.Appointment, error) {
	fields := map[string]string{}
	required(fields, "appointmentId", id)
	if formType == models.FormTypeCancel && (update.CancellationReason == nil || strings.TrimSpace(*update.CancellationReason) == "") {
		fields["cancellationReason"] = "is required"
	}
	if err := validationError(fields); err != nil {
		return nil, err
	}

	status, err := models.StatusFor(formType)
	if err != nil {
		return nil, err
	}
	columns := update.columns()
	columns["status"] = status

	var appointment *models.Appointment
	err = p.call("appointments.update", func() error {
		var updateErr error
		appointment, updateErr = p.appointments.Update(ctx, id, columns)
		return updateErr
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, p.persistenceError("appointments.update", err)
	}

	p.log.Info().Str("appointment_id", id).Str("status", string(status)).Msg("appointment updated")
	p.notifyPatient(ctx, appointment)
	return appointment, nil
}

// notifyPatient sends the status notice. Failures are logged only.
func (p *Pipeline) notifyPatient(ctx context.Context, appointment *models.Appointment) {
	user, err := p.users.Get(ctx, appointment.UserID)
	if err != nil {
		p.log.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("cannot notify patient: user lookup failed")
		return
	}
	msg, ok := notify.AppointmentMessage(user.Email, appointment)
	if !ok {
		return
	}
	if err := p.call("notifier.notify", func() error { return p.notifier.Notify(ctx, msg) }); err != nil {
		p.log.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("patient notification failed")
	}
}

// AppointmentView is an appointment with what the success page shows.
type AppointmentView struct {
	Appointment   *models.Appointment `json:"appointment"`
	Doctor        *models.Doctor      `json:"doctor,omitempty"`
	ScheduleLabel string              `json:"scheduleLabel"`
}

// GetAppointment returns an appointment with its doctor and formatted time.
func (p *Pipeline) GetAppointment(ctx context.Context, id string) (*AppointmentView, error) {
	var appointment *models.Appointment
	err := p.call("appointments.get", func() error {
		var getErr error
		appointment, getErr = p.appointments.Get(ctx, id)
		return getErr
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, p.persistenceError("appointments.get", err)
	}

	view := &AppointmentView{
		Appointment:   appointment,
		ScheduleLabel: appointment.Schedule.Format(ScheduleLayout),
	}
	if doctor, ok := models.FindDoctor(appointment.PrimaryPhysician); ok {
		view.Doctor = &doctor
	}
	return view, nil
}

// Dashboard is the admin overview of recent appointments.
type Dashboard struct {
	TotalCount     int                  `json:"totalCount"`
	ScheduledCount int                  `json:"scheduledCount"`
	PendingCount   int                  `json:"pendingCount"`
	CancelledCount int                  `json:"cancelledCount"`
	Documents      []models.Appointment `json:"documents"`
}

// RecentAppointments returns the newest appointments with per-status counts.
func (p *Pipeline) RecentAppointments(ctx context.Context, limit int) (*Dashboard, error) {
	var appointments []models.Appointment
	err := p.call("appointments.list", func() error {
		var listErr error
		appointments, listErr = p.appointments.ListRecent(ctx, limit)
		return listErr
	})
	if err != nil {
		return nil, p.persistenceError("appointments.list", err)
	}

	countOf := func(status models.AppointmentStatus) int {
		return lo.CountBy(appointments, func(a models.Appointment) bool { return a.Status == status })
	}
	return &Dashboard{
		TotalCount:     len(appointments),
		ScheduledCount: countOf(models.StatusScheduled),
		PendingCount:   countOf(models.StatusPending),
		CancelledCount: countOf(models.StatusCancelled),
		Documents:      appointments,
	}, nil
}

// AppointmentSeed is the starting values of a schedule or cancel form for appointment.
func AppointmentSeed(appointment *models.Appointment) map[string]any {
	return map[string]any{
		"primaryPhysician":   appointment.PrimaryPhysician,
		"schedule":           appointment.Schedule,
		"reason":             appointment.Reason,
		"note":               appointment.Note,
		"cancellationReason": appointment.CancellationReason,
	}
}
