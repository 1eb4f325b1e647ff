package repository

import (
	"context"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
)

// AuditRepository is the append-only sink for authentication events.
type AuditRepository interface {
	Insert(ctx context.Context, e entity.AuditEvent) error
}
