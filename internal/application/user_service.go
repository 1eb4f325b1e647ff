package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/validation"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 5 << 20

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UserService serves the signed-in user's own profile.
type UserService struct {
	store  repository.Store
	blobs  BlobStore
	index  UserIndex
	logger *logrus.Logger
	async  runner
}

func NewUserService(store repository.Store, blobs BlobStore, index UserIndex, logger *logrus.Logger) *UserService {
	return &UserService{store: store, blobs: blobs, index: index, logger: logger, async: goRunner}
}

type UpdateProfileInput struct {
	FullName string `json:"full_name" validate:"required,max=120"`
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*entity.User, error) {
	if details := validation.Struct(in); details != nil {
		return nil, apperror.InvalidFields(details)
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.FullName = strings.TrimSpace(in.FullName)
	if err := s.store.Users().UpdateProfile(ctx, u.ID, u.FullName, u.AvatarURL); err != nil {
		return nil, apperror.Internal(err)
	}
	s.reindex(u)
	return u, nil
}

// UploadAvatar stores the image under avatars/<public_id>/ and records its URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, r io.Reader, size int64, contentType string) (*entity.User, error) {
	ext, ok := avatarTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, apperror.Validation("avatar must be a jpeg, png, webp or gif image")
	}
	if size <= 0 || size > MaxAvatarBytes {
		return nil, apperror.Validation(fmt.Sprintf("avatar must be at most %d MiB", MaxAvatarBytes>>20))
	}
	if s.blobs == nil {
		return nil, apperror.Internal(errors.New("avatar storage not configured"))
	}

	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	objectPath := path.Join("avatars", u.PublicID, uuid.NewString()+ext)
	url, err := s.blobs.Upload(ctx, objectPath, contentType, io.LimitReader(r, MaxAvatarBytes))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.AvatarURL = url
	if err := s.store.Users().UpdateProfile(ctx, u.ID, u.FullName, url); err != nil {
		return nil, apperror.Internal(err)
	}
	s.reindex(u)
	return u, nil
}

func (s *UserService) reindex(u *entity.User) {
	if s.index == nil {
		return
	}
	snapshot := *u
	s.async(func(ctx context.Context) {
		if err := s.index.Index(ctx, &snapshot); err != nil {
			s.logger.WithError(err).WithField("public_id", snapshot.PublicID).Warn("user index failed")
		}
	})
}
