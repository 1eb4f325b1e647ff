package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
)

const userColumns = `id, user_id, full_name, phone, COALESCE(email, ''), password_hash,
	account_status, role, avatar_url, verification_method,
	COALESCE(verification_code_hash, ''), verification_attempts, terms_accepted,
	COALESCE(consent_ip, ''), COALESCE(consent_user_agent, ''), created_at, updated_at`

// likeEscaper makes a search term match literally inside ILIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                    entity.User
		status, role, method string
	)
	if err := row.Scan(&u.ID, &u.PublicID, &u.FullName, &u.Phone, &u.Email, &u.PasswordHash,
		&status, &role, &u.AvatarURL, &method,
		&u.VerificationHash, &u.VerificationAttempts, &u.TermsAccepted,
		&u.ConsentIP, &u.ConsentUserAgent, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Status = entity.AccountStatus(status)
	u.Role = entity.Role(role)
	u.VerificationMethod = entity.VerificationMethod(method)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (user_id, full_name, phone, email, password_hash, account_status, role,
			verification_method, terms_accepted, general_consented_at, consent_ip, consent_user_agent)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''))
		RETURNING id, created_at, updated_at
	`, u.PublicID, u.FullName, u.Phone, u.Email, u.PasswordHash, string(u.Status), string(u.Role),
		string(u.VerificationMethod), u.TermsAccepted, u.ConsentedAt, u.ConsentIP, u.ConsentUserAgent)

	return wrapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone = $1)`, phone)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) exists(ctx context.Context, q string, arg string) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, q, arg).Scan(&ok); err != nil {
		return false, wrapErr(err)
	}
	return ok, nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id int64, hash string, expires time.Time) error {
	return r.execOne(ctx, `
		UPDATE users
		SET verification_code_hash = $1, verification_expires = $2, verification_attempts = 0, updated_at = NOW()
		WHERE id = $3
	`, hash, expires, id)
}

func (r *UserRepository) IncrementVerificationAttempts(ctx context.Context, id int64) error {
	return r.execOne(ctx, `
		UPDATE users SET verification_attempts = verification_attempts + 1, updated_at = NOW()
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, wrapErr(err)
}

func (r *UserRepository) GetByPublicID(ctx context.Context, publicID string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, publicID))
	return u, wrapErr(err)
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $1 LIMIT 1`, identifier))
	return u, wrapErr(err)
}

// MarkVerified only touches PENDING rows, so concurrent verifications of the
// same account change it once.
func (r *UserRepository) MarkVerified(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET account_status = 'VERIFIED', verification_code_hash = NULL, verification_attempts = 0,
			verification_used_at = $1, updated_at = NOW()
		WHERE id = $2 AND account_status = 'PENDING'
	`, at, id)
	if err != nil {
		return false, wrapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, fullName, avatarURL string) error {
	return r.execOne(ctx, `
		UPDATE users SET full_name = $1, avatar_url = $2, updated_at = NOW() WHERE id = $3
	`, fullName, avatarURL, id)
}

func (r *UserRepository) SetStatus(ctx context.Context, id int64, status entity.AccountStatus) error {
	return r.execOne(ctx, `UPDATE users SET account_status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
}

func (r *UserRepository) SetRole(ctx context.Context, id int64, role entity.Role) error {
	return r.execOne(ctx, `UPDATE users SET role = UPPER($1), updated_at = NOW() WHERE id = $2`, string(role), id)
}

func (r *UserRepository) ForceActivate(ctx context.Context, id int64) error {
	return r.execOne(ctx, `
		UPDATE users
		SET account_status = 'ACTIVE', verification_code_hash = NULL, verification_attempts = 0,
			verification_used_at = COALESCE(verification_used_at, NOW()), updated_at = NOW()
		WHERE id = $1
	`, id)
}

func (r *UserRepository) List(ctx context.Context, search string) ([]entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if search != "" {
		q += ` WHERE full_name ILIKE $1 ESCAPE '\' OR phone ILIKE $1 ESCAPE '\'` +
			` OR email ILIKE $1 ESCAPE '\' OR user_id ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
	}
	q += ` ORDER BY created_at DESC`
	return r.queryUsers(ctx, q, args...)
}

func (r *UserRepository) ListByPublicIDs(ctx context.Context, publicIDs []string) ([]entity.User, error) {
	if len(publicIDs) == 0 {
		return nil, nil
	}
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ANY($1) ORDER BY created_at DESC`, publicIDs)
}

func (r *UserRepository) queryUsers(ctx context.Context, q string, args ...any) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, *u)
	}
	return out, wrapErr(rows.Err())
}

func (r *UserRepository) Stats(ctx context.Context) (repository.UserStats, error) {
	var st repository.UserStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE account_status IN ('VERIFIED', 'ACTIVE')),
			COUNT(*) FILTER (WHERE account_status = 'PENDING'),
			COUNT(*) FILTER (WHERE account_status = 'SUSPENDED'),
			COUNT(*) FILTER (WHERE role = 'ADMIN')
		FROM users
	`).Scan(&st.Total, &st.Active, &st.Pending, &st.Suspended, &st.Admins)
	return st, wrapErr(err)
}

func (r *UserRepository) execOne(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
