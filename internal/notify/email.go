// AngelaMos | 2026
// email.go

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pos-nt/backend/internal/config"
)

// EmailClient sends plain-text mail over authenticated SMTP.
type EmailClient struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailClient(cfg config.EmailConfig) *EmailClient {
	return &EmailClient{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (c *EmailClient) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", c.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	auth := smtp.PlainAuth("", c.username, c.password, c.host)

	if err := smtp.SendMail(
		addr,
		auth,
		c.from,
		[]string{to},
		[]byte(msg.String()),
	); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}
