package storage

import (
	"context"
	"errors"
	"fmt"

	"care4-server/internal/config"

	"gorm.io/gorm"
)

// ErrNotFound is returned for unknown file ids.
var ErrNotFound = errors.New("file not found")

// File is a named binary blob with its declared media type.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Stored identifies a file after it has been saved.
type Stored struct {
	ID  string
	URL string
}

// FileStorage saves and loads identification documents.
type FileStorage interface {
	Put(ctx context.Context, file File) (Stored, error)
	Get(ctx context.Context, id string) (*File, error)
	Delete(ctx context.Context, id string) error
}

// New returns the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, db *gorm.DB) (FileStorage, error) {
	switch cfg.Driver {
	case "", "database":
		return NewDatabaseStore(db), nil
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}
