package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/agency-identity/internal/application"
)

// ErrRejected is returned when the provider says the token is not valid.
var ErrRejected = errors.New("captcha rejected")

// Noop accepts every token.
type Noop struct{}

func (Noop) Verify(context.Context, string, string) error { return nil }

const siteverifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Recaptcha verifies tokens against Google's siteverify endpoint.
type Recaptcha struct {
	secret   string
	endpoint string
	client   *http.Client
}

func NewRecaptcha(secret string) *Recaptcha {
	return &Recaptcha{secret: secret, endpoint: siteverifyURL, client: &http.Client{Timeout: 5 * time.Second}}
}

func (r *Recaptcha) Verify(ctx context.Context, token, ip string) error {
	if strings.TrimSpace(token) == "" {
		return ErrRejected
	}
	form := url.Values{"secret": {r.secret}, "response": {token}}
	if ip != "" {
		form.Set("remoteip", ip)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify: status %d", res.StatusCode)
	}

	var body struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("siteverify decode: %w", err)
	}
	if !body.Success {
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(body.ErrorCodes, ","))
	}
	return nil
}

var (
	_ application.CaptchaVerifier = Noop{}
	_ application.CaptchaVerifier = (*Recaptcha)(nil)
)
