package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/application"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/obs"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg     *config.Config
	logger  *logrus.Logger
	pgPool  *pgxpool.Pool
	store   repository.Store
	limiter ratelimit.Limiter
	metrics *obs.Metrics

	jwtManager *helpers.JWTManager

	notifier application.Notifier
	blobs    application.BlobStore
	index    application.UserIndex
	captcha  application.CaptchaVerifier
	auditor  application.Auditor
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetStore(s repository.Store)  { store = s }
func GetStore() repository.Store   { return store }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }
func SetMetrics(m *obs.Metrics)    { metrics = m }
func GetMetrics() *obs.Metrics     { return metrics }

func SetLimiter(l ratelimit.Limiter) { limiter = l }
func GetLimiter() ratelimit.Limiter  { return limiter }

func SetNotifier(n application.Notifier)       { notifier = n }
func GetNotifier() application.Notifier        { return notifier }
func SetBlobStore(b application.BlobStore)     { blobs = b }
func GetBlobStore() application.BlobStore      { return blobs }
func SetUserIndex(i application.UserIndex)     { index = i }
func GetUserIndex() application.UserIndex      { return index }
func SetCaptcha(c application.CaptchaVerifier) { captcha = c }
func GetCaptcha() application.CaptchaVerifier  { return captcha }
func SetAuditor(a application.Auditor)         { auditor = a }
func GetAuditor() application.Auditor          { return auditor }
