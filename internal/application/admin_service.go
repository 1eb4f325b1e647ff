package application

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	mailtpl "github.com/oksasatya/agency-identity/pkg/mailer/templates"
)

const adminSearchSize = 100

type UserListing struct {
	Users []UserView           `json:"users"`
	Stats repository.UserStats `json:"stats"`
}

// AdminService is the administrative user registry.
type AdminService struct {
	store    repository.Store
	index    UserIndex
	notifier Notifier
	cfg      *config.Config
	logger   *logrus.Logger
	async    runner
}

func NewAdminService(store repository.Store, index UserIndex, notifier Notifier, cfg *config.Config, logger *logrus.Logger) *AdminService {
	return &AdminService{store: store, index: index, notifier: notifier, cfg: cfg, logger: logger, async: goRunner}
}

// IsAdmin reports whether userID may use the registry. It reads the role
// from the store on every call so demotions apply immediately.
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	u, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Internal(err)
	}
	return u.Role == entity.RoleAdmin && u.Status.CanAuthenticate(), nil
}

func (s *AdminService) ListUsers(ctx context.Context, search string) (UserListing, error) {
	search = strings.TrimSpace(search)
	users, err := s.search(ctx, search)
	if err != nil {
		return UserListing{}, apperror.Internal(err)
	}
	stats, err := s.store.Users().Stats(ctx)
	if err != nil {
		return UserListing{}, apperror.Internal(err)
	}

	out := UserListing{Users: make([]UserView, 0, len(users)), Stats: stats}
	for i := range users {
		out.Users = append(out.Users, NewUserView(&users[i]))
	}
	return out, nil
}

// search prefers the full-text index and falls back to SQL ILIKE when it is
// absent or failing.
func (s *AdminService) search(ctx context.Context, q string) ([]entity.User, error) {
	if q == "" || s.index == nil {
		return s.store.Users().List(ctx, q)
	}
	ids, err := s.index.Search(ctx, q, adminSearchSize)
	if err != nil {
		s.logger.WithError(err).Warn("user index search failed, falling back to sql")
		return s.store.Users().List(ctx, q)
	}
	users, err := s.store.Users().ListByPublicIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	ordered := make([]entity.User, len(users))
	copy(ordered, users)
	sortByRank(ordered, rank)
	return ordered, nil
}

func sortByRank(users []entity.User, rank map[string]int) {
	sort.SliceStable(users, func(i, j int) bool {
		return rank[users[i].PublicID] < rank[users[j].PublicID]
	})
}

func (s *AdminService) load(ctx context.Context, publicID string) (*entity.User, error) {
	u, err := s.store.Users().GetByPublicID(ctx, strings.TrimSpace(publicID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return u, nil
}

// SetStatus changes an account's status. Suspension revokes every session
// of the account in the same transaction. Accounts cannot be moved back to
// PENDING.
func (s *AdminService) SetStatus(ctx context.Context, publicID, status string) (*entity.User, error) {
	st, ok := entity.ParseAccountStatus(status)
	if !ok || st == entity.StatusPending {
		return nil, apperror.InvalidFields(map[string]string{"status": "must be one of: VERIFIED, ACTIVE, SUSPENDED"})
	}
	u, err := s.load(ctx, publicID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Users().SetStatus(ctx, u.ID, st); err != nil {
			return err
		}
		if st != entity.StatusSuspended {
			return nil
		}
		n, err := tx.Sessions().RevokeAllForUser(ctx, u.ID)
		if err == nil {
			s.logger.WithFields(logrus.Fields{"public_id": u.PublicID, "sessions": n}).Info("sessions revoked on suspension")
		}
		return err
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.Status = st
	s.reindex(u)
	return u, nil
}

func (s *AdminService) SetRole(ctx context.Context, publicID, role string) (*entity.User, error) {
	r, ok := entity.ParseRole(role)
	if !ok {
		return nil, apperror.InvalidFields(map[string]string{"role": "must be one of: USER, ADMIN"})
	}
	u, err := s.load(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().SetRole(ctx, u.ID, r); err != nil {
		return nil, apperror.Internal(err)
	}
	u.Role = r
	s.reindex(u)
	return u, nil
}

// ForceVerify is the manual override: the account becomes ACTIVE and its
// verification material is cleared.
func (s *AdminService) ForceVerify(ctx context.Context, publicID string) (*entity.User, error) {
	u, err := s.load(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().ForceActivate(ctx, u.ID); err != nil {
		return nil, apperror.Internal(err)
	}
	u.Status = entity.StatusActive
	u.VerificationHash = ""
	u.VerificationAttempts = 0
	s.reindex(u)

	if u.Email != "" && s.notifier != nil {
		snapshot := *u
		s.async(func(ctx context.Context) {
			err := s.notifier.Notify(ctx, Notification{
				To:       snapshot.Email,
				Template: mailtpl.AccountActivated,
				Data:     mailtpl.NewAccountActivatedData(s.cfg, snapshot.FullName, snapshot.Email, mailtpl.WithPublicID(snapshot.PublicID)),
			})
			if err != nil {
				s.logger.WithError(err).WithField("public_id", snapshot.PublicID).Warn("activation email dispatch failed")
			}
		})
	}
	return u, nil
}

func (s *AdminService) reindex(u *entity.User) {
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
