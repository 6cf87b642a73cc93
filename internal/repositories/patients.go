package repositories

import (
	"context"

	"care4-server/internal/models"

	"gorm.io/gorm"
)

// PatientStore stores patient registrations, one per user.
type PatientStore struct {
	DB *gorm.DB
}

// NewPatientStore creates a new PatientStore.
func NewPatientStore(db *gorm.DB) *PatientStore {
	return &PatientStore{DB: db}
}

// Create stores patient. A second registration for the same user returns ErrConflict.
func (r *PatientStore) Create(ctx context.Context, patient *models.Patient) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Patient{}).Where("user_id = ?", patient.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	return translate(r.DB.WithContext(ctx).Create(patient).Error)
}

// Get returns the patient with the given id.
func (r *PatientStore) Get(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	if err := r.DB.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

// GetByUserID returns the patient registered by the given user.
func (r *PatientStore) GetByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	var patient models.Patient
	if err := r.DB.WithContext(ctx).First(&patient, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}
