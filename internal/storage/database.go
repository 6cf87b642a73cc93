package storage

import (
	"context"
	"errors"

	"care4-server/internal/models"

	"gorm.io/gorm"
)

// DatabaseStore keeps files as rows of the identification_documents table.
type DatabaseStore struct {
	DB *gorm.DB
}

// NewDatabaseStore creates a new DatabaseStore.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{DB: db}
}

// Put saves file. The URL points at the files download endpoint.
func (s *DatabaseStore) Put(ctx context.Context, file File) (Stored, error) {
	doc := models.IdentificationDocument{
		FileName: file.Name,
		FileType: file.ContentType,
		Size:     int64(len(file.Content)),
		FileData: file.Content,
	}
	if err := s.DB.WithContext(ctx).Create(&doc).Error; err != nil {
		return Stored{}, err
	}
	return Stored{ID: doc.ID, URL: "/api/v1/files/" + doc.ID}, nil
}

// Get loads a file by id.
func (s *DatabaseStore) Get(ctx context.Context, id string) (*File, error) {
	var doc models.IdentificationDocument
	if err := s.DB.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &File{Name: doc.FileName, ContentType: doc.FileType, Content: doc.FileData}, nil
}

// Delete removes a file. Unknown ids are not an error.
func (s *DatabaseStore) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Delete(&models.IdentificationDocument{}, "id = ?", id).Error
}
