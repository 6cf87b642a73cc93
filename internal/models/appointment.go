package models

import (
	"errors"
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentFormType is the form variant used to create or change an appointment.
type AppointmentFormType string

const (
	FormTypeCreate   AppointmentFormType = "create"
	FormTypeSchedule AppointmentFormType = "schedule"
	FormTypeCancel   AppointmentFormType = "cancel"
)

// AppointmentFormTypes lists every form type StatusFor accepts.
var AppointmentFormTypes = []AppointmentFormType{FormTypeCreate, FormTypeSchedule, FormTypeCancel}

// ErrUnknownFormType is returned for form types outside AppointmentFormTypes.
var ErrUnknownFormType = errors.New("unknown appointment form type")

// Appointment is a requested, scheduled or cancelled visit with a doctor.
// Records are never deleted here.
type Appointment struct {
	BaseModel
	UserID             string            `gorm:"size:36;index;not null" json:"userId"`
	PatientID          string            `gorm:"size:36;index;not null" json:"patientId"`
	PrimaryPhysician   string            `gorm:"size:100;not null" json:"primaryPhysician"`
	Schedule           time.Time         `gorm:"not null" json:"schedule"`
	Reason             string            `gorm:"size:500" json:"reason"`
	Note               string            `gorm:"type:text" json:"note,omitempty"`
	Status             AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	CancellationReason string            `gorm:"size:500" json:"cancellationReason,omitempty"`
}

// StatusFor maps a form type to the status it produces. It is the only place
// that decides an appointment's status.
func StatusFor(t AppointmentFormType) (AppointmentStatus, error) {
	switch t {
	case FormTypeCreate:
		return StatusPending, nil
	case FormTypeSchedule:
		return StatusScheduled, nil
	case FormTypeCancel:
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormType, string(t))
}

// MustStatusFor is StatusFor for callers holding a compile-time constant.
func MustStatusFor(t AppointmentFormType) AppointmentStatus {
	status, err := StatusFor(t)
	if err != nil {
		panic(err)
	}
	return status
}
