package repository

import (
	"context"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
)

// SessionRepository persists refresh-secret sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	// FindActiveByHash returns a non-revoked session joined to its owner, or
	// ErrNotFound.
	FindActiveByHash(ctx context.Context, hash string) (*entity.SessionWithUser, error)
	// RevokeByHash reports whether a live session was revoked.
	RevokeByHash(ctx context.Context, hash string) (bool, error)
	RevokeByID(ctx context.Context, id int64) error
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
}
