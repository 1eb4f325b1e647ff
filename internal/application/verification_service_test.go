package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/pkg/helpers"
)

func TestVerify_ActivatesAndIssuesAccess(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()

	reg, err := h.reg.Register(ctx, aliceInput())
	require.NoError(t, err)

	res, err := h.verify.Verify(ctx, h.notifier.verifyToken(t))
	require.NoError(t, err)
	assert.Equal(t, reg.PublicID, res.PublicID)
	assert.Equal(t, NextHome, res.Next)

	claims, err := h.sessions.ParseAccess(res.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.PublicID, claims.PublicID)

	u := h.store.ByPublicID(reg.PublicID)
	assert.Equal(t, entity.StatusVerified, u.Status)
	assert.Empty(t, u.VerificationHash)
}

func TestVerify_IsIdempotent(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()

	reg, err := h.reg.Register(ctx, aliceInput())
	require.NoError(t, err)
	tok := h.notifier.verifyToken(t)

	_, err = h.verify.Verify(ctx, tok)
	require.NoError(t, err)
	res, err := h.verify.Verify(ctx, tok)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Access.Token)
	assert.Equal(t, entity.StatusVerified, h.store.ByPublicID(reg.PublicID).Status)
}

func TestVerify_Rejections(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()

	_, err := h.verify.Verify(ctx, "  ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = h.verify.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, apperror.ErrAuth)

	// signed with the access secret, not the verify secret
	access, _, err := h.jwt.GenerateAccessToken(1, "USR-1")
	require.NoError(t, err)
	_, err = h.verify.Verify(ctx, access)
	assert.ErrorIs(t, err, apperror.ErrAuth)

	orphan, _, err := h.jwt.GenerateVerifyToken(999, "ghost@example.com")
	require.NoError(t, err)
	_, err = h.verify.Verify(ctx, orphan)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestVerify_ExpiredToken(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()

	reg, err := h.reg.Register(ctx, aliceInput())
	require.NoError(t, err)
	u := h.store.ByPublicID(reg.PublicID)

	stale := helpers.NewJWTManager("access-secret", "verify-secret", time.Hour, -time.Minute)
	tok, _, err := stale.GenerateVerifyToken(u.ID, u.Email)
	require.NoError(t, err)

	_, err = h.verify.Verify(ctx, tok)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	assert.Equal(t, entity.StatusPending, h.store.ByPublicID(reg.PublicID).Status)
}

func TestVerify_SupersededTokenCountsAttempt(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()

	reg, err := h.reg.Register(ctx, aliceInput())
	require.NoError(t, err)
	first := h.notifier.verifyToken(t)
	u := h.store.ByPublicID(reg.PublicID)

	// a newer link replaces the outstanding hash
	require.NoError(t, h.store.Users().SetVerificationToken(ctx, u.ID, helpers.HashToken("newer"), time.Now().Add(time.Hour)))

	_, err = h.verify.Verify(ctx, first)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	got := h.store.ByPublicID(reg.PublicID)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Equal(t, 1, got.VerificationAttempts)
}

func TestVerify_SuspendedAccount(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()

	reg, err := h.reg.Register(ctx, aliceInput())
	require.NoError(t, err)
	u := h.store.ByPublicID(reg.PublicID)
	require.NoError(t, h.store.Users().SetStatus(ctx, u.ID, entity.StatusSuspended))

	_, err = h.verify.Verify(ctx, h.notifier.verifyToken(t))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
