package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Store vends repositories bound to one connection scope. WithTx runs fn
// against a transactional Store and commits only when fn returns nil.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Audit() AuditRepository
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
