package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/domain/apperror"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	mailtpl "github.com/oksasatya/agency-identity/pkg/mailer/templates"
	"github.com/oksasatya/agency-identity/pkg/obs"
	"github.com/oksasatya/agency-identity/pkg/validation"
)

// publicIDAttempts bounds retries when a freshly generated public id
// collides with an existing one.
const publicIDAttempts = 3

type RegisterInput struct {
	FullName        string `json:"full_name" validate:"required,max=120"`
	Phone           string `json:"phone" validate:"required,phone"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	Password        string `json:"password" validate:"required,pwd"`
	PreferredMethod string `json:"preferred_method" validate:"omitempty,max=10"`
	Consent         bool   `json:"consent"`

	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

type RegisterResult struct {
	PublicID string `json:"public_id"`
}

type RegistrationService struct {
	store    repository.Store
	jwt      *helpers.JWTManager
	notifier Notifier
	index    UserIndex
	cfg      *config.Config
	logger   *logrus.Logger
	metrics  *obs.Metrics
	now      Clock
	async    runner
}

func NewRegistrationService(store repository.Store, jwt *helpers.JWTManager, notifier Notifier, index UserIndex,
	cfg *config.Config, logger *logrus.Logger, metrics *obs.Metrics) *RegistrationService {
	return &RegistrationService{
		store: store, jwt: jwt, notifier: notifier, index: index,
		cfg: cfg, logger: logger, metrics: metrics,
		now: time.Now, async: goRunner,
	}
}

func newPublicID() string {
	return "USR-" + strings.ToUpper(uuid.NewString()[:8])
}

// Register creates a PENDING account and sends the verification message
// when the caller asked for email verification.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	if details := validation.Struct(in); details != nil {
		return RegisterResult{}, apperror.InvalidFields(details)
	}
	method, ok := entity.ParseVerificationMethod(in.PreferredMethod)
	if !ok {
		return RegisterResult{}, apperror.InvalidFields(map[string]string{"preferred_method": "must be one of: EMAIL, SMS"})
	}
	email := NormalizeEmail(in.Email)
	if method == entity.MethodEmail && email == "" {
		return RegisterResult{}, apperror.InvalidFields(map[string]string{"email": "is required for email verification"})
	}
	phone := NormalizePhone(in.Phone, s.cfg.PhoneCountryCode)

	hash, err := helpers.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return RegisterResult{}, apperror.Internal(err)
	}

	now := s.now().UTC()
	u := &entity.User{
		FullName:           strings.TrimSpace(in.FullName),
		Phone:              phone,
		Email:              email,
		PasswordHash:       hash,
		Status:             entity.StatusPending,
		Role:               entity.RoleUser,
		VerificationMethod: method,
		TermsAccepted:      in.Consent,
		ConsentIP:          in.IP,
		ConsentUserAgent:   in.UserAgent,
	}
	if in.Consent {
		u.ConsentedAt = &now
	}

	var token string
	for attempt := 1; ; attempt++ {
		u.PublicID = newPublicID()
		token, err = s.create(ctx, u)
		if err == nil {
			break
		}
		if attempt < publicIDAttempts && isPublicIDCollision(err) {
			continue
		}
		s.metrics.AuthOutcome("register", outcomeOf(err))
		return RegisterResult{}, classify(err)
	}

	s.metrics.AuthOutcome("register", "success")
	s.logger.WithFields(logrus.Fields{"public_id": u.PublicID, "method": method}).Info("user registered")

	created := *u
	s.async(func(ctx context.Context) {
		s.sendVerification(ctx, &created, token)
		s.reindex(ctx, &created)
	})
	return RegisterResult{PublicID: u.PublicID}, nil
}

// create runs the uniqueness checks, insert and token write in one
// transaction. The database constraints still back the checks when two
// registrations race.
func (s *RegistrationService) create(ctx context.Context, u *entity.User) (string, error) {
	var token string
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		users := tx.Users()

		exists, err := users.ExistsByPhone(ctx, u.Phone)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict("phone number already registered")
		}
		if u.Email != "" {
			exists, err = users.ExistsByEmail(ctx, u.Email)
			if err != nil {
				return err
			}
			if exists {
				return apperror.Conflict("email already registered")
			}
		}

		if err := users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) && !isPublicIDCollision(err) {
				return apperror.Conflict("phone or email already registered")
			}
			return err
		}

		tok, exp, err := s.jwt.GenerateVerifyToken(u.ID, u.Email)
		if err != nil {
			return err
		}
		if err := users.SetVerificationToken(ctx, u.ID, helpers.HashToken(tok), exp); err != nil {
			return err
		}
		u.VerificationHash = helpers.HashToken(tok)
		token = tok
		return nil
	})
	return token, err
}

func isPublicIDCollision(err error) bool {
	return errors.Is(err, repository.ErrDuplicate) && strings.Contains(err.Error(), "user_id")
}

func (s *RegistrationService) sendVerification(ctx context.Context, u *entity.User, token string) {
	if u.VerificationMethod != entity.MethodEmail {
		s.logger.WithField("public_id", u.PublicID).Info("sms verification requested; no sms gateway configured")
		return
	}
	err := s.notifier.Notify(ctx, Notification{
		To:       u.Email,
		Template: mailtpl.VerifyEmail,
		Data: mailtpl.NewVerifyEmailData(s.cfg, u.FullName, u.Email, token,
			mailtpl.WithExpiresAt(s.now().Add(s.cfg.VerifyTTL))),
	})
	if err != nil {
		s.metrics.Notification("failed")
		s.logger.WithError(err).WithField("public_id", u.PublicID).Warn("verification email dispatch failed")
		return
	}
	s.metrics.Notification("queued")
}

func (s *RegistrationService) reindex(ctx context.Context, u *entity.User) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, u); err != nil {
		s.logger.WithError(err).WithField("public_id", u.PublicID).Warn("user index failed")
	}
}

func outcomeOf(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return "invalid"
	case apperror.KindConflict:
		return "conflict"
	case apperror.KindAuth:
		return "unauthorized"
	case apperror.KindForbidden:
		return "forbidden"
	case apperror.KindRateLimit:
		return "rate_limited"
	case apperror.KindNotFound:
		return "not_found"
	}
	return "error"
}
