package repositories

import (
	"context"
	"strings"

	"care4-server/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows a user listing.
type UserFilter struct {
	Email string
	Limit int
}

// UserDirectory stores users. Emails are unique.
type UserDirectory struct {
	DB *gorm.DB
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{DB: db}
}

// Create stores user and fills its ID. A taken email returns ErrConflict.
func (r *UserDirectory) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	return translate(r.DB.WithContext(ctx).Create(user).Error)
}

// List returns users matching filter, oldest first.
func (r *UserDirectory) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.DB.WithContext(ctx).Order("created_at asc")
	if filter.Email != "" {
		query = query.Where("email = ?", strings.ToLower(strings.TrimSpace(filter.Email)))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns the user with the given id.
func (r *UserDirectory) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
