package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/obs"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
	"github.com/oksasatya/agency-identity/pkg/validation"
)

const auditMethodLogin = "LOGIN"

var errBadCredentials = apperror.Auth("invalid credentials")

type LoginInput struct {
	Identifier   string `json:"identifier" validate:"required,max=254"`
	Password     string `json:"password" validate:"required"`
	CaptchaToken string `json:"captcha_token"`

	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResult struct {
	PublicID      string
	Roles         []string
	Access        AccessToken
	RefreshSecret string
}

// LoginLimits are the per-window ceilings applied before any credential work.
type LoginLimits struct {
	PerIP         int
	PerIdentifier int
	Window        time.Duration
}

func LoginLimitsFrom(cfg *config.Config) LoginLimits {
	return LoginLimits{PerIP: cfg.LoginIPLimit, PerIdentifier: cfg.LoginIdentifierLimit, Window: cfg.LoginWindow}
}

type LoginService struct {
	store       repository.Store
	sessions    *SessionManager
	limiter     ratelimit.Limiter
	limits      LoginLimits
	captcha     CaptchaVerifier
	audit       Auditor
	countryCode string
	logger      *logrus.Logger
	metrics     *obs.Metrics
}

func NewLoginService(store repository.Store, sessions *SessionManager, limiter ratelimit.Limiter, limits LoginLimits,
	captcha CaptchaVerifier, audit Auditor, countryCode string, logger *logrus.Logger, metrics *obs.Metrics) *LoginService {
	return &LoginService{
		store: store, sessions: sessions, limiter: limiter, limits: limits, captcha: captcha,
		audit: audit, countryCode: countryCode, logger: logger, metrics: metrics,
	}
}

func (s *LoginService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	res, err := s.login(ctx, in)
	if err != nil {
		s.metrics.AuthOutcome("login", outcomeOf(err))
		return LoginResult{}, err
	}
	s.metrics.AuthOutcome("login", "success")
	return res, nil
}

func (s *LoginService) login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if details := validation.Struct(in); details != nil {
		return LoginResult{}, apperror.InvalidFields(details)
	}
	identifier := NormalizeIdentifier(in.Identifier, s.countryCode)

	if err := s.throttle(ctx, in.IP, identifier); err != nil {
		return LoginResult{}, err
	}
	if err := s.captcha.Verify(ctx, in.CaptchaToken, in.IP); err != nil {
		s.logger.WithError(err).WithField("ip", in.IP).Info("captcha rejected")
		return LoginResult{}, apperror.Validation("captcha verification failed")
	}

	u, err := s.store.Users().GetByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		helpers.CompareDummy(in.Password)
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, apperror.Internal(err)
	}

	if !helpers.CompareHashAndPassword(u.PasswordHash, in.Password) {
		s.record(ctx, u, entity.AuditFailed, in)
		return LoginResult{}, errBadCredentials
	}
	if !u.Status.CanAuthenticate() {
		s.record(ctx, u, entity.AuditFailed, in)
		return LoginResult{}, apperror.Forbidden("account is not verified")
	}

	secret, err := s.sessions.Open(ctx, u, in.IP, in.UserAgent)
	if err != nil {
		return LoginResult{}, err
	}
	access, err := s.sessions.IssueAccess(u)
	if err != nil {
		return LoginResult{}, err
	}
	s.record(ctx, u, entity.AuditSuccess, in)

	return LoginResult{PublicID: u.PublicID, Roles: u.Roles(), Access: access, RefreshSecret: secret}, nil
}

// throttle fails open when the limiter backend is unavailable.
func (s *LoginService) throttle(ctx context.Context, ip, identifier string) error {
	d, err := s.limiter.Allow(ctx,
		ratelimit.Rule{Key: "login:ip:" + ip, Limit: s.limits.PerIP, Window: s.limits.Window},
		ratelimit.Rule{Key: "login:user:" + identifier, Limit: s.limits.PerIdentifier, Window: s.limits.Window},
	)
	if err != nil {
		s.logger.WithError(err).Error("login rate limiter unavailable")
		return nil
	}
	if !d.Allowed {
		s.metrics.RateLimited("login")
		s.logger.WithFields(logrus.Fields{"ip": ip, "key": d.Denied}).Warn("login rate limited")
		return apperror.RateLimitedFor("too many login attempts, try again later", d.RetryAfter)
	}
	return nil
}

func (s *LoginService) record(ctx context.Context, u *entity.User, status entity.AuditStatus, in LoginInput) {
	uid := u.ID
	s.audit.Record(ctx, entity.AuditEvent{
		UserID:    &uid,
		Status:    status,
		Method:    auditMethodLogin,
		IPAddress: in.IP,
		UserAgent: in.UserAgent,
	})
}
