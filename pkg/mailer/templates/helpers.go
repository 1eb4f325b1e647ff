package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/agency-identity/config"
)

type Option func(*EmailData)

func WithPublicID(id string) Option { return func(d *EmailData) { d.PublicID = id } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills branding from cfg, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:    cfg.LogoURL,
		SupportURL: cfg.SupportURL,
		PrivacyURL: cfg.PrivacyURL,

		LoginURL: strings.TrimRight(cfg.FrontendURL, "/") + "/login",
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewVerifyEmailData links to the front-end verification page with token
// as a query parameter.
func NewVerifyEmailData(cfg *config.Config, name, email, token string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, VerifyEmail, name, email, opts...)
	d.VerifyURL = cfg.VerifyEmailURL() + "?token=" + token
	return ToMap(d)
}

func NewAccountActivatedData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, AccountActivated, name, email, opts...))
}
