package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(email\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "Site Admin", "+251900000000", "admin@agency.test", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("USR-0A1B2C3D"))

	id, err := UpsertAdmin(context.Background(), db, AdminSeed{
		FullName: "Site Admin", Phone: "+251900000000", Email: "admin@agency.test", PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, "USR-0A1B2C3D", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAdmin_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("relation \"users\" does not exist"))

	_, err = UpsertAdmin(context.Background(), db, AdminSeed{Email: "admin@agency.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed admin")
}
