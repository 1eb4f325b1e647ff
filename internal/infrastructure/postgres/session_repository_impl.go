package postgres

import (
	"context"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.Session) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO user_sessions (user_id, refresh_token_hash, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, s.UserID, s.RefreshTokenHash, s.IPAddress, s.UserAgent)
	return wrapErr(row.Scan(&s.ID, &s.CreatedAt))
}

func (r *SessionRepository) FindActiveByHash(ctx context.Context, hash string) (*entity.SessionWithUser, error) {
	var (
		sw           entity.SessionWithUser
		status, role string
	)
	err := r.db.QueryRow(ctx, `
		SELECT s.id, s.created_at, u.id, u.user_id, u.full_name, u.phone, COALESCE(u.email, ''),
			u.account_status, u.role
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.refresh_token_hash = $1 AND s.revoked = FALSE
	`, hash).Scan(&sw.SessionID, &sw.CreatedAt, &sw.User.ID, &sw.User.PublicID, &sw.User.FullName,
		&sw.User.Phone, &sw.User.Email, &status, &role)
	if err != nil {
		return nil, wrapErr(err)
	}
	sw.User.Status = entity.AccountStatus(status)
	sw.User.Role = entity.Role(role)
	return &sw, nil
}

func (r *SessionRepository) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_sessions SET revoked = TRUE WHERE refresh_token_hash = $1 AND revoked = FALSE
	`, hash)
	if err != nil {
		return false, wrapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) RevokeByID(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE user_sessions SET revoked = TRUE WHERE id = $1`, id)
	return wrapErr(err)
}

func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_sessions SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE
	`, userID)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
