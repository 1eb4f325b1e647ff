package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/agency-identity/internal/domain/repository"
)

var errNestedTx = errors.New("nested transactions are not supported")

// Store is the PostgreSQL-backed repository.Store.
type Store struct {
	db       DBTX
	beginner TxBeginner
}

func NewStore(pool Pool) *Store {
	return &Store{db: pool, beginner: pool}
}

func (s *Store) Users() repository.UserRepository       { return NewUserRepository(s.db) }
func (s *Store) Sessions() repository.SessionRepository { return NewSessionRepository(s.db) }
func (s *Store) Audit() repository.AuditRepository      { return NewAuditRepository(s.db) }

// WithTx hands fn a Store whose repositories share one transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.beginner == nil {
		return errNestedTx
	}
	return WithTx(ctx, s.beginner, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &Store{db: tx})
	})
}

var _ repository.Store = (*Store)(nil)
