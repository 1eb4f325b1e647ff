package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
)

// Notification is one outbound message. Template names a mailer template;
// Body is used when Template is empty.
type Notification struct {
	To       string
	Subject  string
	Body     string
	Template string
	Data     map[string]any
}

// Notifier dispatches notifications. Callers treat failures as best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// BlobStore stores avatar images and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

// CaptchaVerifier checks a client-supplied captcha token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, ip string) error
}

// UserIndex is the optional full-text index behind admin search.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	// Search returns matching public ids, best match first.
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// Clock is swapped in tests.
type Clock func() time.Time
