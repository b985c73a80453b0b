package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/config"
)

// PhotoStore persists profile photos in an external object store and hands
// back the public URL to save on the user record.
type PhotoStore interface {
	UploadUserPhoto(ctx context.Context, userID uuid.UUID, contentType string, r io.Reader, size int64) (string, error)
}

// objectAPI is the slice of the MinIO client the store needs; narrowed so
// tests can fake it.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type photoStore struct {
	api       objectAPI
	bucket    string
	publicURL string
}

func NewPhotoStore(ctx context.Context, cfg config.PhotoStoreConfig) (PhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect photo store: %w", err)
	}
	return newPhotoStoreWithAPI(ctx, client, cfg.Bucket, cfg.PublicBaseURL)
}

func newPhotoStoreWithAPI(ctx context.Context, api objectAPI, bucket, publicURL string) (PhotoStore, error) {
	s := &photoStore{api: api, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check photo bucket: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create photo bucket: %w", err)
		}
	}
	return s, nil
}

func (s *photoStore) UploadUserPhoto(ctx context.Context, userID uuid.UUID, contentType string, r io.Reader, size int64) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.Validation("Only image uploads are allowed")
	}
	key := fmt.Sprintf("user/user-%s-%d.jpeg", userID, time.Now().UnixMilli())
	_, err := s.api.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUpstream, "Failed to upload image", err)
	}
	return s.publicURL + "/" + key, nil
}
