package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/obs"
)

// NextHome tells the client where to go after verifying.
const NextHome = "HOME"

type VerifyResult struct {
	PublicID string
	Access   AccessToken
	Next     string
}

type VerificationService struct {
	store    repository.Store
	jwt      *helpers.JWTManager
	sessions *SessionManager
	logger   *logrus.Logger
	metrics  *obs.Metrics
	now      Clock
}

func NewVerificationService(store repository.Store, jwt *helpers.JWTManager, sessions *SessionManager, logger *logrus.Logger, metrics *obs.Metrics) *VerificationService {
	return &VerificationService{store: store, jwt: jwt, sessions: sessions, logger: logger, metrics: metrics, now: time.Now}
}

// Verify consumes a verification token. Verifying an account that is
// already VERIFIED or ACTIVE succeeds without changing it.
func (s *VerificationService) Verify(ctx context.Context, token string) (VerifyResult, error) {
	res, err := s.verify(ctx, strings.TrimSpace(token))
	if err != nil {
		s.metrics.AuthOutcome("verify", outcomeOf(err))
		return VerifyResult{}, err
	}
	s.metrics.AuthOutcome("verify", "success")
	return res, nil
}

func (s *VerificationService) verify(ctx context.Context, token string) (VerifyResult, error) {
	if token == "" {
		return VerifyResult{}, apperror.Validation("verification token is required")
	}
	claims, err := s.jwt.ParseVerifyToken(token)
	if err != nil {
		return VerifyResult{}, apperror.Auth("verification link expired or invalid")
	}

	users := s.store.Users()
	u, err := users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return VerifyResult{}, apperror.NotFound("user not found")
	}
	if err != nil {
		return VerifyResult{}, apperror.Internal(err)
	}

	switch u.Status {
	case entity.StatusVerified, entity.StatusActive:
		// already done
	case entity.StatusSuspended:
		return VerifyResult{}, apperror.Forbidden("account is suspended")
	default:
		if u.VerificationHash != "" && u.VerificationHash != helpers.HashToken(token) {
			if err := users.IncrementVerificationAttempts(ctx, u.ID); err != nil {
				s.logger.WithError(err).WithField("public_id", u.PublicID).Warn("verification attempt counter update failed")
			}
			return VerifyResult{}, apperror.Auth("verification link expired or invalid")
		}
		changed, err := users.MarkVerified(ctx, u.ID, s.now().UTC())
		if err != nil {
			return VerifyResult{}, apperror.Internal(err)
		}
		if changed {
			u.Status = entity.StatusVerified
			s.logger.WithField("public_id", u.PublicID).Info("user verified")
		}
	}

	access, err := s.sessions.IssueAccess(u)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{PublicID: u.PublicID, Access: access, Next: NextHome}, nil
}
