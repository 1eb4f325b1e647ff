package blob

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSStore writes objects to one bucket.
type GCSStore struct {
	bucket    string
	newWriter func(ctx context.Context, bucket, path string) io.WriteCloser
	setType   func(w io.WriteCloser, contentType string)
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{
		bucket: bucket,
		newWriter: func(ctx context.Context, bucket, path string) io.WriteCloser {
			w := client.Bucket(bucket).Object(path).NewWriter(ctx)
			w.ChunkSize = 0 // avatars are small, upload in one request
			return w
		},
		setType: func(w io.WriteCloser, contentType string) {
			if sw, ok := w.(*storage.Writer); ok {
				sw.ContentType = contentType
			}
		},
	}
}

func (s *GCSStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	wc := s.newWriter(ctx, s.bucket, path)
	s.setType(wc, contentType)
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs upload %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs upload %s: %w", path, err)
	}
	return GCSPublicURL(s.bucket, path), nil
}

// GCSPublicURL assumes public read access on the bucket.
func GCSPublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
