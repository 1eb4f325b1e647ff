// Package templates renders the transactional emails sent by the worker.
// Each email is three embedded files: <name>.subject.tmpl, <name>.text.tmpl
// and <name>.html.tmpl.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var files embed.FS

const (
	VerifyEmail      = "verify_email"
	AccountActivated = "account_activated"
)

// ErrUnknownTemplate is returned by Render for names outside the set above.
var ErrUnknownTemplate = errors.New("unknown email template")

// EmailData is the data every template can rely on.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`
	PublicID       string `json:"PublicID"`

	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	LogoURL    string `json:"LogoURL"`
	SupportURL string `json:"SupportURL"`
	PrivacyURL string `json:"PrivacyURL"`

	VerifyURL string `json:"VerifyURL"`
	LoginURL  string `json:"LoginURL"`

	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
}

// ToMap flattens d into the map carried by mailer.EmailJob.Data.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// Message is one rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var parsed = mustParse(VerifyEmail, AccountActivated)

// fallback backs {{ .Value | default "x" }}. Data arrives as a decoded JSON
// map, so only blank strings and missing keys fall back.
func fallback(def, v any) any {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return def
	}
	return v
}

func funcs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": fallback,
	}
}

func mustParse(names ...string) map[string]set {
	out := make(map[string]set, len(names))
	for _, name := range names {
		out[name] = set{
			subject: texttpl.Must(texttpl.New(name + ".subject.tmpl").Funcs(funcs()).ParseFS(files, name+".subject.tmpl")),
			text:    texttpl.Must(texttpl.New(name + ".text.tmpl").Funcs(funcs()).ParseFS(files, name+".text.tmpl")),
			html:    htmpl.Must(htmpl.New(name + ".html.tmpl").Funcs(funcs()).ParseFS(files, name+".html.tmpl")),
		}
	}
	return out
}

// Render executes all three parts of the named email.
func Render(name string, data any) (Message, error) {
	s, ok := parsed[name]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	var subj, text, html bytes.Buffer
	if err := s.subject.Execute(&subj, data); err != nil {
		return Message{}, fmt.Errorf("subject %s: %w", name, err)
	}
	if err := s.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("text %s: %w", name, err)
	}
	if err := s.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("html %s: %w", name, err)
	}
	return Message{Subject: strings.TrimSpace(subj.String()), Text: text.String(), HTML: html.String()}, nil
}
