package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"payroll-portal/payroll-portal-backend/pkg/storage"
)

// StorageProvider wraps the object store with the document key scheme and
// the StorageError taxonomy. Every call is a remote call that can fail; the
// workflow owns the compensating deletes.
type StorageProvider struct {
	s3     storage.S3Client
	bucket string
}

func NewStorageProvider(s3 storage.S3Client, bucket string) *StorageProvider {
	return &StorageProvider{
		s3:     s3,
		bucket: bucket,
	}
}

func (p *StorageProvider) OriginalKey(userID, documentID string) string {
	return fmt.Sprintf("users/%s/documents/%s.pdf", userID, documentID)
}

func (p *StorageProvider) SignedKey(userID, documentID string) string {
	return fmt.Sprintf("users/%s/documents/signed/%s.pdf", userID, documentID)
}

func (p *StorageProvider) Upload(ctx context.Context, key string, content []byte) error {
	if err := p.s3.Upload(ctx, p.bucket, key, bytes.NewReader(content)); err != nil {
		return &StorageError{Op: "upload", Err: err}
	}
	return nil
}

func (p *StorageProvider) Download(ctx context.Context, key string) ([]byte, error) {
	body, err := p.s3.Download(ctx, p.bucket, key)
	if err != nil {
		return nil, &StorageError{Op: "download", Err: err}
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, &StorageError{Op: "download", Err: err}
	}
	return content, nil
}

func (p *StorageProvider) Delete(ctx context.Context, key string) error {
	if err := p.s3.Delete(ctx, p.bucket, key); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (p *StorageProvider) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url, err := p.s3.GetPresignedURL(ctx, p.bucket, key, ttl)
	if err != nil {
		return "", &StorageError{Op: "presign", Err: err}
	}
	return url, nil
}
