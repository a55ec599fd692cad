package channels

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	Host       string   // SMTP server host
	Port       int      // SMTP server port
	Username   string   // SMTP username (optional)
	Password   string   // SMTP password (optional)
	From       string   // From address
	Recipients []string // Email recipients

	// RatePerHour caps outgoing mails; 0 disables the limiter.
	RatePerHour int
}

// Validate validates the email configuration.
func (c *EmailConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("SMTP port is required")
	}
	if c.From == "" {
		return fmt.Errorf("from address is required")
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}

// sendMailFunc allows tests to intercept SMTP delivery.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends alerts via SMTP.
type EmailChannel struct {
	config   EmailConfig
	limiter  *rate.Limiter
	sendMail sendMailFunc
}

// NewEmailChannel creates a new email channel.
func NewEmailChannel(config EmailConfig) (*EmailChannel, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	var limiter *rate.Limiter
	if config.RatePerHour > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(config.RatePerHour)), 1)
	}

	return &EmailChannel{
		config:   config,
		limiter:  limiter,
		sendMail: smtp.SendMail,
	}, nil
}

// Type returns "email".
func (c *EmailChannel) Type() models.ChannelType {
	return models.ChannelEmail
}

// Send mails the alert to all configured recipients. When the rate
// limit is exhausted the alert is dropped with an error rather than
// queued; email is the slowest channel and backlogs help nobody.
func (c *EmailChannel) Send(ctx context.Context, alert *models.Alert) error {
	if c.limiter != nil && !c.limiter.Allow() {
		return fmt.Errorf("email rate limit exceeded")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if c.config.Username != "" {
		auth = smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	msg := c.buildMessage(alert)

	if err := c.sendMail(addr, auth, c.config.From, c.config.Recipients, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (c *EmailChannel) buildMessage(alert *models.Alert) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(c.config.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: [%s] %s\r\n", strings.ToUpper(string(alert.Severity)), alert.Title)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Source: %s\n", alert.Source)
	fmt.Fprintf(&b, "Severity: %s\n", alert.Severity)
	fmt.Fprintf(&b, "Time: %s\n", alert.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if alert.DuplicateCount > 1 {
		fmt.Fprintf(&b, "Occurrences: %d (first %s, last %s)\n",
			alert.DuplicateCount,
			alert.FirstSeen.Format("15:04:05"),
			alert.LastSeen.Format("15:04:05"))
	}
	fmt.Fprintf(&b, "\n%s\n", alert.Message)
	if len(alert.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(alert.Tags, ", "))
	}

	return []byte(b.String())
}

// Close is a no-op for the email channel.
func (c *EmailChannel) Close() error {
	return nil
}
