package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/helpers"
)

// AccessToken is a signed access credential and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// RefreshResult is what a successful refresh hands back. NewSecret is only
// set when rotation is enabled.
type RefreshResult struct {
	User      entity.User
	Access    AccessToken
	NewSecret string
}

// SessionOptions are the opt-in hardening switches.
type SessionOptions struct {
	TTL    time.Duration // 0 means sessions never expire server-side
	Rotate bool
}

// SessionManager mints access credentials and owns the refresh-secret
// sessions table.
type SessionManager struct {
	store  repository.Store
	jwt    *helpers.JWTManager
	opts   SessionOptions
	logger *logrus.Logger
	now    Clock
}

func NewSessionManager(store repository.Store, jwt *helpers.JWTManager, opts SessionOptions, logger *logrus.Logger) *SessionManager {
	return &SessionManager{store: store, jwt: jwt, opts: opts, logger: logger, now: time.Now}
}

// IssueAccess signs a stateless credential for u.
func (m *SessionManager) IssueAccess(u *entity.User) (AccessToken, error) {
	tok, exp, err := m.jwt.GenerateAccessToken(u.ID, u.PublicID)
	if err != nil {
		return AccessToken{}, apperror.Internal(err)
	}
	return AccessToken{Token: tok, ExpiresAt: exp}, nil
}

// ParseAccess validates an access credential without touching the store.
func (m *SessionManager) ParseAccess(token string) (*helpers.AccessClaims, error) {
	if token == "" {
		return nil, apperror.Auth("missing access token")
	}
	claims, err := m.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, apperror.Auth("invalid or expired access token")
	}
	return claims, nil
}

// Open creates a session for u and returns the raw refresh secret. The
// secret is never stored; only its hash is.
func (m *SessionManager) Open(ctx context.Context, u *entity.User, ip, userAgent string) (string, error) {
	return m.open(ctx, m.store.Sessions(), u.ID, ip, userAgent)
}

func (m *SessionManager) open(ctx context.Context, sessions repository.SessionRepository, userID int64, ip, userAgent string) (string, error) {
	secret, err := helpers.NewRefreshSecret()
	if err != nil {
		return "", apperror.Internal(err)
	}
	s := &entity.Session{
		UserID:           userID,
		RefreshTokenHash: helpers.HashToken(secret),
		IPAddress:        ip,
		UserAgent:        userAgent,
	}
	if err := sessions.Create(ctx, s); err != nil {
		return "", apperror.Internal(err)
	}
	return secret, nil
}

// Refresh exchanges a refresh secret for a new access credential.
func (m *SessionManager) Refresh(ctx context.Context, secret, ip, userAgent string) (RefreshResult, error) {
	if secret == "" {
		return RefreshResult{}, apperror.Auth("missing refresh token")
	}
	hash := helpers.HashToken(secret)

	sw, err := m.store.Sessions().FindActiveByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return RefreshResult{}, apperror.Auth("invalid session")
	}
	if err != nil {
		return RefreshResult{}, apperror.Internal(err)
	}

	if m.opts.TTL > 0 && m.now().Sub(sw.CreatedAt) > m.opts.TTL {
		if err := m.store.Sessions().RevokeByID(ctx, sw.SessionID); err != nil {
			m.logger.WithError(err).WithField("session_id", sw.SessionID).Warn("revoke expired session failed")
		}
		return RefreshResult{}, apperror.Auth("session expired")
	}
	if !sw.User.Status.CanAuthenticate() {
		return RefreshResult{}, apperror.Forbidden("account is not active")
	}

	res := RefreshResult{User: sw.User}
	if m.opts.Rotate {
		err := m.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
			revoked, err := tx.Sessions().RevokeByHash(ctx, hash)
			if err != nil {
				return err
			}
			if !revoked {
				return apperror.Auth("invalid session")
			}
			res.NewSecret, err = m.open(ctx, tx.Sessions(), sw.User.ID, ip, userAgent)
			return err
		})
		if err != nil {
			return RefreshResult{}, classify(err)
		}
	}

	res.Access, err = m.IssueAccess(&sw.User)
	if err != nil {
		return RefreshResult{}, err
	}
	return res, nil
}

// Revoke marks the session for secret revoked. Unknown or already revoked
// secrets report false.
func (m *SessionManager) Revoke(ctx context.Context, secret string) (bool, error) {
	if secret == "" {
		return false, nil
	}
	ok, err := m.store.Sessions().RevokeByHash(ctx, helpers.HashToken(secret))
	if err != nil {
		return false, apperror.Internal(err)
	}
	return ok, nil
}

func (m *SessionManager) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := m.store.Sessions().RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}
