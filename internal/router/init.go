package router

import (
	"github.com/oksasatya/agency-identity/internal/application"
	"github.com/oksasatya/agency-identity/internal/container"
	handlers "github.com/oksasatya/agency-identity/internal/interface/http"
	"github.com/oksasatya/agency-identity/internal/router/modules"
	"github.com/oksasatya/agency-identity/pkg/helpers"
)

// Services are the application services behind the HTTP modules.
type Services struct {
	Sessions     *application.SessionManager
	Registration *application.RegistrationService
	Verification *application.VerificationService
	Login        *application.LoginService
	Users        *application.UserService
	Admin        *application.AdminService
}

func buildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := container.GetStore()
	jwt := container.GetJWT()
	metrics := container.GetMetrics()

	sessions := application.NewSessionManager(store, jwt, application.SessionOptions{
		TTL:    cfg.SessionTTL,
		Rotate: cfg.SessionRotateRefresh,
	}, logger)

	return Services{
		Sessions:     sessions,
		Registration: application.NewRegistrationService(store, jwt, container.GetNotifier(), container.GetUserIndex(), cfg, logger, metrics),
		Verification: application.NewVerificationService(store, jwt, sessions, logger, metrics),
		Login: application.NewLoginService(store, sessions, container.GetLimiter(), application.LoginLimitsFrom(cfg),
			container.GetCaptcha(), container.GetAuditor(), cfg.PhoneCountryCode, logger, metrics),
		Users: application.NewUserService(store, container.GetBlobStore(), container.GetUserIndex(), logger),
		Admin: application.NewAdminService(store, container.GetUserIndex(), container.GetNotifier(), cfg, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, db handlers.Pinger) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	limiter := container.GetLimiter()
	svc := buildServices()

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	authHandler := handlers.NewAuthHandler(svc.Registration, svc.Verification, svc.Login, svc.Sessions, cookies, cfg.RefreshCookieTTL, logger)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(db, logger), container.GetMetrics(), limiter))
	r.Add(modules.NewAuthModule(authHandler, limiter))
	r.Add(modules.NewProfileModule(handlers.NewUserHandler(svc.Users, logger), svc.Sessions, limiter))
	r.Add(modules.NewAdminModule(handlers.NewAdminHandler(svc.Admin, logger), svc.Sessions, svc.Admin, logger))
}
