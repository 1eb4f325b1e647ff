package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	FullName     string
	Phone        string
	Email        string
	PasswordHash string
}

// UpsertAdmin creates or promotes the bootstrap administrator and returns
// its public id. It runs over database/sql so the seed binary can use the
// pgx stdlib driver without a pool.
func UpsertAdmin(ctx context.Context, db *sql.DB, a AdminSeed) (string, error) {
	publicID := "USR-" + strings.ToUpper(uuid.NewString()[:8])

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, full_name, phone, email, password_hash, account_status, role,
			verification_method, terms_accepted, general_consented_at)
		VALUES ($1, $2, $3, $4, $5, 'ACTIVE', 'ADMIN', 'EMAIL', TRUE, NOW())
		ON CONFLICT (email) DO UPDATE
		SET role = 'ADMIN', account_status = 'ACTIVE', password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING user_id
	`, publicID, a.FullName, a.Phone, a.Email, a.PasswordHash).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("seed admin: %w", err)
	}
	return id, nil
}
