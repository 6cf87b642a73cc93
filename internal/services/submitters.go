package services

import (
	"context"
	"fmt"
	"time"

	"care4-server/internal/forms"
	"care4-server/internal/metrics"
	"care4-server/internal/models"
)

// SubmitContext carries the ids a form was opened for.
type SubmitContext struct {
	UserID        string
	PatientID     string
	AppointmentID string
}

// Submitter returns the function that submits a form of the given family
// and type. Forms opened without the ids they need fail with a
// *forms.ConfigurationError.
func (p *Pipeline) Submitter(family, typ string, sc SubmitContext) (forms.SubmitFunc, error) {
	missing := func(what string) error {
		return &forms.ConfigurationError{Family: family, Type: typ, Reason: what + " is required"}
	}

	var fn forms.SubmitFunc
	switch {
	case family == forms.FamilyRegistration && typ == forms.TypeIntake:
		fn = p.submitIntake
	case family == forms.FamilyRegistration && typ == forms.TypePatient:
		if sc.UserID == "" {
			return nil, missing("userId")
		}
		fn = func(ctx context.Context, values map[string]any) (forms.Outcome, error) {
			return p.submitPatient(ctx, sc.UserID, values)
		}
	case family == forms.FamilyAppointment && typ == string(models.FormTypeCreate):
		if sc.UserID == "" || sc.PatientID == "" {
			return nil, missing("userId and patientId")
		}
		fn = func(ctx context.Context, values map[string]any) (forms.Outcome, error) {
			return p.submitCreateAppointment(ctx, sc, values)
		}
	case family == forms.FamilyAppointment && (typ == string(models.FormTypeSchedule) || typ == string(models.FormTypeCancel)):
		if sc.AppointmentID == "" {
			return nil, missing("appointmentId")
		}
		formType := models.AppointmentFormType(typ)
		fn = func(ctx context.Context, values map[string]any) (forms.Outcome, error) {
			return p.submitUpdateAppointment(ctx, sc.AppointmentID, formType, values)
		}
	default:
		return nil, &forms.ConfigurationError{Family: family, Type: typ, Reason: "unknown form"}
	}

	return func(ctx context.Context, values map[string]any) (forms.Outcome, error) {
		out, err := fn(ctx, values)
		metrics.FormSubmissions.WithLabelValues(family, typ, metrics.Result(err)).Inc()
		return out, err
	}, nil
}

func (p *Pipeline) submitIntake(ctx context.Context, values map[string]any) (forms.Outcome, error) {
	user, err := p.CreateUser(ctx, CreateUserParams{
		Name:  stringValue(values, "name"),
		Email: stringValue(values, "email"),
		Phone: stringValue(values, "phone"),
	})
	if err != nil {
		return forms.Outcome{}, err
	}
	return forms.Outcome{ID: user.ID, Redirect: fmt.Sprintf("/patients/%s/register", user.ID)}, nil
}

func (p *Pipeline) submitPatient(ctx context.Context, userID string, values map[string]any) (forms.Outcome, error) {
	patient, err := p.RegisterPatient(ctx, RegisterPatientParams{
		UserID:                 userID,
		Name:                   stringValue(values, "name"),
		Email:                  stringValue(values, "email"),
		Phone:                  stringValue(values, "phone"),
		BirthDate:              timeValue(values, "birthDate"),
		Gender:                 stringValue(values, "gender"),
		Address:                stringValue(values, "address"),
		Occupation:             stringValue(values, "occupation"),
		EmergencyContactName:   stringValue(values, "emergencyContactName"),
		EmergencyContactNumber: stringValue(values, "emergencyContactNumber"),
		PrimaryPhysician:       stringValue(values, "primaryPhysician"),
		InsuranceProvider:      stringValue(values, "insuranceProvider"),
		InsurancePolicyNumber:  stringValue(values, "insurancePolicyNumber"),
		Allergies:              stringValue(values, "allergies"),
		CurrentMedication:      stringValue(values, "currentMedication"),
		FamilyMedicalHistory:   stringValue(values, "familyMedicalHistory"),
		PastMedicalHistory:     stringValue(values, "pastMedicalHistory"),
		IdentificationType:     stringValue(values, "identificationType"),
		IdentificationNumber:   stringValue(values, "identificationNumber"),
		IdentificationDocument: uploadValue(values, "identificationDocument"),
		TreatmentConsent:       boolValue(values, "treatmentConsent"),
		DisclosureConsent:      boolValue(values, "disclosureConsent"),
		PrivacyConsent:         boolValue(values, "privacyConsent"),
	})
	if err != nil {
		return forms.Outcome{}, err
	}
	return forms.Outcome{ID: patient.ID, Redirect: fmt.Sprintf("/patients/%s/new-appointment", userID)}, nil
}

func (p *Pipeline) submitCreateAppointment(ctx context.Context, sc SubmitContext, values map[string]any) (forms.Outcome, error) {
	appointment, err := p.CreateAppointment(ctx, CreateAppointmentParams{
		UserID:           sc.UserID,
		PatientID:        sc.PatientID,
		PrimaryPhysician: stringValue(values, "primaryPhysician"),
		Schedule:         timeValue(values, "schedule"),
		Reason:           stringValue(values, "reason"),
		Note:             stringValue(values, "note"),
	})
	if err != nil {
		return forms.Outcome{}, err
	}
	return forms.Outcome{
		ID:       appointment.ID,
		Redirect: fmt.Sprintf("/patients/%s/new-appointment/success?appointmentId=%s", sc.UserID, appointment.ID),
	}, nil
}

func (p *Pipeline) submitUpdateAppointment(ctx context.Context, id string, formType models.AppointmentFormType, values map[string]any) (forms.Outcome, error) {
	var update AppointmentUpdate
	switch formType {
	case models.FormTypeSchedule:
		physician := stringValue(values, "primaryPhysician")
		schedule := timeValue(values, "schedule")
		update.PrimaryPhysician = &physician
		update.Schedule = &schedule
		if reason := stringValue(values, "reason"); reason != "" {
			update.Reason = &reason
		}
		if note := stringValue(values, "note"); note != "" {
			update.Note = &note
		}
	case models.FormTypeCancel:
		reason := stringValue(values, "cancellationReason")
		update.CancellationReason = &reason
	}

	appointment, err := p.UpdateAppointment(ctx, id, update, formType)
	if err != nil {
		return forms.Outcome{}, err
	}
	return forms.Outcome{ID: appointment.ID, Close: true}, nil
}

func stringValue(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return s
}

func boolValue(values map[string]any, key string) bool {
	b, _ := values[key].(bool)
	return b
}

func timeValue(values map[string]any, key string) time.Time {
	t, _ := values[key].(time.Time)
	return t
}

func uploadValue(values map[string]any, key string) *forms.Upload {
	u, _ := values[key].(*forms.Upload)
	return u
}
