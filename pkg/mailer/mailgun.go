package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	mailtpl "github.com/oksasatya/agency-identity/pkg/mailer/templates"
)

// Mailgun delivers rendered messages through the Mailgun HTTP API.
type Mailgun struct {
	client  mg.Mailgun
	sender  string
	timeout time.Duration
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), sender: sender, timeout: 10 * time.Second}
}

func (m *Mailgun) Send(ctx context.Context, to string, msg mailtpl.Message) error {
	out := m.client.NewMessage(m.sender, msg.Subject, msg.Text, to)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, _, err := m.client.Send(ctx, out)
	return err
}

var _ Sender = (*Mailgun)(nil)
