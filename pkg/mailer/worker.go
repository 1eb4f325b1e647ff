package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/agency-identity/pkg/mailer/templates"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to string, msg mailtpl.Message) error
}

// ErrPoison marks a job that can never succeed and must not be requeued.
var ErrPoison = errors.New("poison message")

// Handle decodes, renders and sends one queued job. Errors wrapping
// ErrPoison are permanent; anything else is worth a retry.
func Handle(ctx context.Context, body []byte, s Sender) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPoison, err)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrPoison)
	}

	msg := mailtpl.Message{Subject: job.Subject, Text: job.Text, HTML: job.HTML}
	if job.Template != "" {
		var err error
		if msg, err = mailtpl.Render(job.Template, job.Data); err != nil {
			return fmt.Errorf("%w: render: %v", ErrPoison, err)
		}
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return s.Send(c, job.To, msg)
}
