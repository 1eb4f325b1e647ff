package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
)

var userCols = []string{
	"id", "user_id", "full_name", "phone", "email", "password_hash",
	"account_status", "role", "avatar_url", "verification_method",
	"verification_code_hash", "verification_attempts", "terms_accepted",
	"consent_ip", "consent_user_agent", "created_at", "updated_at",
}

func userRow(now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(userCols).AddRow(
		int64(7), "USR-ABCD1234", "Abebe Kebede", "+251911223344", "abebe@example.com", "$2a$hash",
		"PENDING", "USER", "", "EMAIL",
		"deadbeef", 0, true,
		"10.0.0.1", "curl/8", now, now,
	)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("USR-ABCD1234", "Abebe", "+251911223344", "", "hash", "PENDING", "USER", "SMS", true,
			pgxmock.AnyArg(), "10.0.0.1", "ua").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	u := &entity.User{
		PublicID: "USR-ABCD1234", FullName: "Abebe", Phone: "+251911223344", PasswordHash: "hash",
		Status: entity.StatusPending, Role: entity.RoleUser, VerificationMethod: entity.MethodSMS,
		TermsAccepted: true, ConsentedAt: &now, ConsentIP: "10.0.0.1", ConsentUserAgent: "ua",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"})

	err := repo.Create(context.Background(), &entity.User{})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "users_phone_key")
}

func TestUserRepository_Exists(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE phone = \$1\)`).
		WithArgs("+251911223344").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE email = \$1\)`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.ExistsByPhone(context.Background(), "+251911223344")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIdentifier(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE email = \$1 OR phone = \$1`).
		WithArgs("abebe@example.com").
		WillReturnRows(userRow(now))

	u, err := repo.GetByIdentifier(context.Background(), "abebe@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, entity.StatusPending, u.Status)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.Equal(t, entity.MethodEmail, u.VerificationMethod)
	assert.Equal(t, "deadbeef", u.VerificationHash)
}

func TestUserRepository_GetByPublicID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE user_id = \$1`).
		WithArgs("USR-MISSING1").
		WillReturnRows(pgxmock.NewRows(userCols))

	u, err := repo.GetByPublicID(context.Background(), "USR-MISSING1")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_MarkVerified(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	at := time.Now()

	mock.ExpectExec(`UPDATE users\s+SET account_status = 'VERIFIED'.*WHERE id = \$2 AND account_status = 'PENDING'`).
		WithArgs(at, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users\s+SET account_status = 'VERIFIED'`).
		WithArgs(at, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	changed, err := repo.MarkVerified(context.Background(), 7, at)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkVerified(context.Background(), 7, at)
	require.NoError(t, err)
	assert.False(t, changed, "second verification is a no-op")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetStatus_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET account_status = \$1`).
		WithArgs("SUSPENDED", int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetStatus(context.Background(), 99, entity.StatusSuspended)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_List_Search(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`ILIKE \$1.*ORDER BY created_at DESC`).
		WithArgs("%abebe%").
		WillReturnRows(userRow(now))

	users, err := repo.List(context.Background(), "abebe")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "USR-ABCD1234", users[0].PublicID)
}

func TestUserRepository_List_SearchEscapesWildcards(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`ILIKE \$1 ESCAPE`).
		WithArgs(`%100\%\_a\\b%`).
		WillReturnRows(userRow(now))

	_, err := repo.List(context.Background(), `100%_a\b`)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListByPublicIDs_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	users, err := repo.ListByPublicIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Stats(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`COUNT\(\*\) FILTER`).
		WillReturnRows(pgxmock.NewRows([]string{"total", "active", "pending", "suspended", "admins"}).
			AddRow(10, 6, 3, 1, 2))

	st, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.UserStats{Total: 10, Active: 6, Pending: 3, Suspended: 1, Admins: 2}, st)
}

func TestUserRepository_DriverErrorIsWrapped(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	boom := errors.New("connection reset")

	mock.ExpectExec(`UPDATE users SET role`).WillReturnError(boom)

	err := repo.SetRole(context.Background(), 1, entity.RoleAdmin)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "db error")
}
