package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"care4-server/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const keyPrefix = "identification/"

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps files in an S3-compatible bucket. File ids are object keys
// without the identification/ prefix.
type S3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
}

// NewS3Store connects to the configured bucket.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg.Bucket, cfg.PublicURL), nil
}

func newS3Store(client objectAPI, bucket, publicURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Put uploads file under a fresh key.
func (s *S3Store) Put(ctx context.Context, file File) (Stored, error) {
	id := uuid.New().String() + strings.ToLower(path.Ext(file.Name))
	key := keyPrefix + id

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(file.Content),
		ContentLength:      aws.Int64(int64(len(file.Content))),
		ContentType:        aws.String(file.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", file.Name)),
		ACL:                types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return Stored{}, fmt.Errorf("s3 upload %q: %w", key, err)
	}
	return Stored{ID: id, URL: s.url(id)}, nil
}

func (s *S3Store) url(id string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + keyPrefix + id
	}
	return "/api/v1/files/" + id
}

// Get downloads a file by id.
func (s *S3Store) Get(ctx context.Context, id string) (*File, error) {
	key := keyPrefix + id
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 download %q: %w", key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %q: %w", key, err)
	}
	return &File{
		Name:        fileName(aws.ToString(out.ContentDisposition), id),
		ContentType: aws.ToString(out.ContentType),
		Content:     content,
	}, nil
}

// fileName recovers the upload name stored in the object's
// Content-Disposition, falling back to the id.
func fileName(disposition, id string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return id
}

// Delete removes a file. S3 treats unknown keys as deleted.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	key := keyPrefix + id
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}
