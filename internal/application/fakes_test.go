package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/agency-identity/config"
	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/testutil/memstore"
	"github.com/oksasatya/agency-identity/pkg/helpers"
	"github.com/oksasatya/agency-identity/pkg/ratelimit"
)

// captureNotifier keeps every notification it is handed.
type captureNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *captureNotifier) Notify(_ context.Context, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *captureNotifier) last(t *testing.T) Notification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no notification sent")
	return n.sent[len(n.sent)-1]
}

// verifyToken extracts the token from the verification link of the last
// notification.
func (n *captureNotifier) verifyToken(t *testing.T) string {
	t.Helper()
	link, _ := n.last(t).Data["VerifyURL"].(string)
	_, tok, ok := strings.Cut(link, "?token=")
	require.True(t, ok, "verify url %q has no token", link)
	return tok
}

type memAuditor struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (a *memAuditor) Record(_ context.Context, e entity.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *memAuditor) statuses() []entity.AuditStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]entity.AuditStatus, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Status)
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]entity.User
	hits    []string
	err     error
}

func (f *fakeIndex) Index(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexed == nil {
		f.indexed = map[string]entity.User{}
	}
	f.indexed[u.PublicID] = *u
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int) ([]string, error) {
	return f.hits, f.err
}

type fakeBlobs struct {
	path, contentType string
	body              []byte
}

func (f *fakeBlobs) Upload(_ context.Context, path, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.path, f.contentType, f.body = path, contentType, b
	return "https://cdn.test/" + path, nil
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, ...ratelimit.Rule) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, fmt.Errorf("redis: connection refused")
}

type captchaFunc func(token string) error

func (f captchaFunc) Verify(_ context.Context, token, _ string) error { return f(token) }

func syncRunner(fn func(ctx context.Context)) { fn(context.Background()) }

func testConfig() *config.Config {
	return &config.Config{
		AppName:              "agency-identity",
		FrontendURL:          "https://agency.test",
		PhoneCountryCode:     "251",
		BcryptCost:           4,
		AccessTTL:            time.Hour,
		VerifyTTL:            24 * time.Hour,
		LoginIPLimit:         20,
		LoginIdentifierLimit: 10,
		LoginWindow:          15 * time.Minute,
	}
}

func testLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// harness wires every service over one in-memory store the way the container does.
type harness struct {
	cfg      *config.Config
	store    *memstore.Store
	jwt      *helpers.JWTManager
	notifier *captureNotifier
	index    *fakeIndex
	auditor  *memAuditor
	limiter  ratelimit.Limiter
	hook     *test.Hook

	sessions *SessionManager
	reg      *RegistrationService
	verify   *VerificationService
	login    *LoginService
	users    *UserService
	admin    *AdminService
}

func newHarness(t *testing.T, opts SessionOptions) *harness {
	t.Helper()
	cfg := testConfig()
	logger, hook := testLogger()
	h := &harness{
		cfg:      cfg,
		store:    memstore.New(),
		jwt:      helpers.NewJWTManager("access-secret", "verify-secret", cfg.AccessTTL, cfg.VerifyTTL),
		notifier: &captureNotifier{},
		index:    &fakeIndex{},
		auditor:  &memAuditor{},
		limiter:  ratelimit.NewMemoryLimiter(),
		hook:     hook,
	}
	h.sessions = NewSessionManager(h.store, h.jwt, opts, logger)
	h.reg = NewRegistrationService(h.store, h.jwt, h.notifier, h.index, cfg, logger, nil)
	h.reg.async = syncRunner
	h.verify = NewVerificationService(h.store, h.jwt, h.sessions, logger, nil)
	h.login = NewLoginService(h.store, h.sessions, h.limiter, LoginLimitsFrom(cfg),
		captchaFunc(func(string) error { return nil }), h.auditor, cfg.PhoneCountryCode, logger, nil)
	h.users = NewUserService(h.store, &fakeBlobs{}, h.index, logger)
	h.users.async = syncRunner
	h.admin = NewAdminService(h.store, h.index, h.notifier, cfg, logger)
	h.admin.async = syncRunner
	return h
}

// registerVerified registers an EMAIL account and consumes its token.
func (h *harness) registerVerified(t *testing.T, in RegisterInput) string {
	t.Helper()
	res, err := h.reg.Register(context.Background(), in)
	require.NoError(t, err)
	_, err = h.verify.Verify(context.Background(), h.notifier.verifyToken(t))
	require.NoError(t, err)
	return res.PublicID
}

func aliceInput() RegisterInput {
	return RegisterInput{
		FullName:        "Alice Bekele",
		Phone:           "0911223344",
		Email:           "Alice@Example.com",
		Password:        "correct-horse",
		PreferredMethod: "EMAIL",
		Consent:         true,
		IP:              "10.0.0.1",
		UserAgent:       "go-test",
	}
}
