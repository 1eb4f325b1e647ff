package repository

import (
	"context"
	"time"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
)

// UserStats aggregates the admin registry counters.
type UserStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Pending   int `json:"pending"`
	Suspended int `json:"suspended"`
	Admins    int `json:"admins"`
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and fills its ID and timestamps. A unique violation on
	// phone or email yields ErrDuplicate.
	Create(ctx context.Context, u *entity.User) error
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetVerificationToken(ctx context.Context, id int64, hash string, expires time.Time) error
	IncrementVerificationAttempts(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByPublicID(ctx context.Context, publicID string) (*entity.User, error)
	// GetByIdentifier matches the exact email or phone value.
	GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	// MarkVerified moves a PENDING account to VERIFIED and reports whether a
	// row changed.
	MarkVerified(ctx context.Context, id int64, at time.Time) (bool, error)
	UpdateProfile(ctx context.Context, id int64, fullName, avatarURL string) error
	SetStatus(ctx context.Context, id int64, status entity.AccountStatus) error
	SetRole(ctx context.Context, id int64, role entity.Role) error
	ForceActivate(ctx context.Context, id int64) error
	List(ctx context.Context, search string) ([]entity.User, error)
	ListByPublicIDs(ctx context.Context, publicIDs []string) ([]entity.User, error)
	Stats(ctx context.Context) (UserStats, error)
}
