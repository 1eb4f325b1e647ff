package application

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
)

func TestUserService_Profile(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()
	pid := h.registerVerified(t, aliceInput())
	u := h.store.ByPublicID(pid)

	got, err := h.users.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Bekele", got.FullName)

	_, err = h.users.GetProfile(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err = h.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{FullName: "  Alice B.  "})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.FullName)
	assert.Equal(t, "Alice B.", h.store.ByPublicID(pid).FullName)
	assert.Equal(t, "Alice B.", h.index.indexed[pid].FullName)

	_, err = h.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{FullName: strings.Repeat("x", 121)})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, apperror.DetailsOf(err), "full_name")
}

func TestUserService_UploadAvatar(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()
	pid := h.registerVerified(t, aliceInput())
	u := h.store.ByPublicID(pid)
	blobs := &fakeBlobs{}
	h.users.blobs = blobs

	img := []byte("\x89PNG fake")
	got, err := h.users.UploadAvatar(ctx, u.ID, bytes.NewReader(img), int64(len(img)), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(blobs.path, "avatars/"+pid+"/"), blobs.path)
	assert.True(t, strings.HasSuffix(blobs.path, ".png"))
	assert.Equal(t, img, blobs.body)
	assert.Equal(t, "https://cdn.test/"+blobs.path, got.AvatarURL)
	assert.Equal(t, got.AvatarURL, h.store.ByPublicID(pid).AvatarURL)
}

func TestUserService_UploadAvatarRejects(t *testing.T) {
	h := newHarness(t, SessionOptions{})
	ctx := context.Background()
	pid := h.registerVerified(t, aliceInput())
	u := h.store.ByPublicID(pid)

	_, err := h.users.UploadAvatar(ctx, u.ID, strings.NewReader("x"), 1, "application/pdf")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = h.users.UploadAvatar(ctx, u.ID, strings.NewReader("x"), MaxAvatarBytes+1, "image/jpeg")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = h.users.UploadAvatar(ctx, u.ID, strings.NewReader(""), 0, "image/jpeg")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, h.store.ByPublicID(pid).AvatarURL)
}
