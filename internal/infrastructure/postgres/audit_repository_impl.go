package postgres

import (
	"context"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends one event. Rows are never updated.
func (r *AuditRepository) Insert(ctx context.Context, e entity.AuditEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_audit_logs (event_id, user_id, status, method, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, string(e.Status), e.Method, e.IPAddress, e.UserAgent, e.CreatedAt)
	return wrapErr(err)
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
