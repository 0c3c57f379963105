// Package upload stores binary assets in a blob store. The domain only
// depends on Uploader; the GCS implementation is wired in main.
package upload

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

type Uploader interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

type GCSUploader struct {
	client *storage.Client
	bucket string
}

func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket}
}

func (u *GCSUploader) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	w := u.client.Bucket(u.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", path, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, path), nil
}
