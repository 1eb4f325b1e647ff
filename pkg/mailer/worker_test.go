package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/agency-identity/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	got []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to string, msg mailtpl.Message) error {
	f.got = append(f.got, sent{to, msg.Subject, msg.Text, msg.HTML})
	return f.err
}

func body(t *testing.T, job EmailJob) []byte {
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandle_Template(t *testing.T) {
	s := &fakeSender{}
	err := Handle(context.Background(), body(t, EmailJob{
		To:       "abebe@example.com",
		Template: "verify_email",
		Data:     map[string]any{"Name": "Abebe", "AppName": "Agency", "VerifyURL": "https://x/verify-email?token=t"},
	}), s)
	require.NoError(t, err)
	require.Len(t, s.got, 1)
	assert.Equal(t, "Verify your Agency account", s.got[0].subject)
	assert.Contains(t, s.got[0].text, "token=t")
	assert.NotEmpty(t, s.got[0].html)
}

func TestHandle_Literal(t *testing.T) {
	s := &fakeSender{}
	require.NoError(t, Handle(context.Background(), body(t, EmailJob{To: "a@b.test", Subject: "hi", Text: "body"}), s))
	assert.Equal(t, sent{"a@b.test", "hi", "body", ""}, s.got[0])
}

func TestHandle_Poison(t *testing.T) {
	s := &fakeSender{}
	assert.ErrorIs(t, Handle(context.Background(), []byte("{"), s), ErrPoison)
	assert.ErrorIs(t, Handle(context.Background(), body(t, EmailJob{Subject: "x"}), s), ErrPoison)
	assert.ErrorIs(t, Handle(context.Background(), body(t, EmailJob{To: "a@b.test", Template: "missing"}), s), ErrPoison)
	assert.Empty(t, s.got)
}

func TestHandle_SendFailureIsRetryable(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun 503")}
	err := Handle(context.Background(), body(t, EmailJob{To: "a@b.test", Text: "x"}), s)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPoison)
}
