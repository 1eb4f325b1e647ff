package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/agency-identity/config"
)

func TestRender_VerifyEmail(t *testing.T) {
	cfg := &config.Config{AppName: "Agency", FrontendURL: "https://agency.test"}
	data := NewVerifyEmailData(cfg, "Abebe", "abebe@example.com", "tok123",
		WithExpiresAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	msg, err := Render(VerifyEmail, data)
	require.NoError(t, err)
	assert.Equal(t, "Verify your Agency account", msg.Subject)
	assert.Contains(t, msg.Text, "https://agency.test/verify-email?token=tok123")
	assert.Contains(t, msg.Text, "01 March 2026, 10:00")
	assert.Contains(t, msg.HTML, "Hello Abebe")
}

func TestRender_AccountActivated(t *testing.T) {
	cfg := &config.Config{FrontendURL: "https://agency.test/"}
	data := NewAccountActivatedData(cfg, "", "x@example.com", WithPublicID("USR-ABCD1234"))

	msg, err := Render(AccountActivated, data)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "agency")
	assert.Contains(t, msg.Text, "Hello there")
	assert.Contains(t, msg.Text, "USR-ABCD1234")
	assert.Contains(t, msg.Text, "https://agency.test/login")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}
