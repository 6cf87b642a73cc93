package repositories

import (
	"context"

	"care4-server/internal/models"

	"gorm.io/gorm"
)

// AppointmentStore stores appointments. Records are never deleted.
type AppointmentStore struct {
	DB *gorm.DB
}

// NewAppointmentStore creates a new AppointmentStore.
func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{DB: db}
}

// Create stores appointment and fills its ID.
func (r *AppointmentStore) Create(ctx context.Context, appointment *models.Appointment) error {
	return translate(r.DB.WithContext(ctx).Create(appointment).Error)
}

// Get returns the appointment with the given id.
func (r *AppointmentStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.DB.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

// Update writes only the given columns of an existing appointment and
// returns the stored result. Keys are column names.
func (r *AppointmentStore) Update(ctx context.Context, id string, fields map[string]any) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appointment, "id = ?", id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&appointment).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&appointment, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

// ListRecent returns the newest appointments first. A limit of zero lists all.
func (r *AppointmentStore) ListRecent(ctx context.Context, limit int) ([]models.Appointment, error) {
	query := r.DB.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}
