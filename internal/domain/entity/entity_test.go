package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAccountStatus(t *testing.T) {
	st, ok := ParseAccountStatus(" active ")
	assert.True(t, ok)
	assert.Equal(t, StatusActive, st)

	_, ok = ParseAccountStatus("deleted")
	assert.False(t, ok)
}

func TestAccountStatus_CanAuthenticate(t *testing.T) {
	assert.True(t, StatusVerified.CanAuthenticate())
	assert.True(t, StatusActive.CanAuthenticate())
	assert.False(t, StatusPending.CanAuthenticate())
	assert.False(t, StatusSuspended.CanAuthenticate())
	assert.False(t, AccountStatus("active").CanAuthenticate(), "comparison is exact")
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestParseVerificationMethod(t *testing.T) {
	m, ok := ParseVerificationMethod("")
	assert.True(t, ok)
	assert.Equal(t, MethodSMS, m)

	m, ok = ParseVerificationMethod("email")
	assert.True(t, ok)
	assert.Equal(t, MethodEmail, m)

	_, ok = ParseVerificationMethod("pigeon")
	assert.False(t, ok)
}

func TestUser_Roles(t *testing.T) {
	u := &User{Role: RoleAdmin}
	assert.Equal(t, []string{"ADMIN"}, u.Roles())
}
