// Package messaging implements the outbound side of the service: email
// delivery through the configured provider, message templates, and SMS
// composition helpers.
package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"gitlab.com/dirk.krummacker/careteam-service/internal/config"
	"gitlab.com/dirk.krummacker/careteam-service/internal/emailaddress"
)

// SendRequest describes one outbound email.
type SendRequest struct {
	Recipient string
	Subject   string
	Body      string
	HTMLBody  string
	ContactId string
}

// SendResult is the outcome of a send attempt, returned verbatim to API
// callers.
type SendResult struct {
	Success     bool       `json:"success"`
	Status      string     `json:"status"`
	Provider    string     `json:"provider"`
	Error       string     `json:"error,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// Sender delivers a composed email. The production implementation talks
// SMTP; tests substitute a fake.
type Sender interface {
	Send(ctx context.Context, from string, fromName string, req SendRequest) error
}

// EmailMessenger sends emails to contacts using the configured provider.
type EmailMessenger struct {
	Provider     string
	SenderEmail  string
	SenderName   string
	SMTPUsername string
	SMTPPassword string
	Transport    Sender
	Log          zerolog.Logger
}

// NewEmailMessenger builds a messenger from the service settings with an
// SMTP transport.
func NewEmailMessenger(settings config.Settings, log zerolog.Logger) *EmailMessenger {
	return &EmailMessenger{
		Provider:     settings.EmailProvider,
		SenderEmail:  settings.SenderEmail,
		SenderName:   settings.SenderName,
		SMTPUsername: settings.SMTPUsername,
		SMTPPassword: settings.SMTPPassword,
		Transport: &SMTPSender{
			Host:     settings.SMTPServer,
			Port:     settings.SMTPPort,
			Username: settings.SMTPUsername,
			Password: settings.SMTPPassword,
		},
		Log: log,
	}
}

// ValidateAddress reports whether the address passes email validation.
func (m *EmailMessenger) ValidateAddress(address string) bool {
	return emailaddress.Valid(address)
}

// Send delivers the request through the configured provider. All failure
// modes are reported through the result rather than an error, so callers
// get one uniform shape with timestamps attached.
func (m *EmailMessenger) Send(ctx context.Context, req SendRequest) SendResult {
	result := SendResult{
		Status:    "failed",
		Provider:  m.Provider,
		Timestamp: time.Now().UTC(),
	}
	if !emailaddress.Valid(req.Recipient) {
		result.Error = "Invalid recipient email address"
		return result
	}
	switch m.Provider {
	case "smtp":
		if m.SMTPUsername == "" || m.SMTPPassword == "" {
			result.Error = "SMTP credentials not configured"
			return result
		}
		if err := m.Transport.Send(ctx, m.SenderEmail, m.SenderName, req); err != nil {
			m.Log.Error().Err(err).Str("recipient", req.Recipient).Msg("email delivery failed")
			result.Error = err.Error()
			return result
		}
	default:
		result.Error = "Unsupported email provider: " + m.Provider
		return result
	}
	result.Success = true
	result.Status = "sent"
	delivered := result.Timestamp
	result.DeliveredAt = &delivered
	return result
}

// SMTPSender delivers email over SMTP with STARTTLS and plain auth.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s *SMTPSender) Send(ctx context.Context, from string, fromName string, req SendRequest) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(fromName, from); err != nil {
		return err
	}
	if err := msg.To(req.Recipient); err != nil {
		return err
	}
	msg.Subject(req.Subject)
	msg.SetBodyString(mail.TypeTextPlain, req.Body)
	if req.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, req.HTMLBody)
	}
	client, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
