package notify

import (
	"strings"

	"github.com/wolfman30/locus-venue/pkg/logging"
)

// SenderOptions selects and configures an EmailSender.
type SenderOptions struct {
	Provider       string // "sendgrid", "ses", or empty for the stub
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SES            SESAPI
}

// NewEmailSender returns the configured provider, falling back to the stub
// sender when the provider is unknown or missing its credentials.
func NewEmailSender(opts SenderOptions, logger *logging.Logger) EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "sendgrid":
		if s := NewSendGridSender(SendGridConfig{APIKey: opts.SendGridAPIKey, FromEmail: opts.FromEmail, FromName: opts.FromName}, logger); s != nil {
			return s
		}
		logger.Warn("notify: sendgrid selected without api key, using stub sender")
	case "ses":
		if s := NewSESSender(opts.SES, SESConfig{FromEmail: opts.FromEmail, FromName: opts.FromName}, logger); s != nil {
			return s
		}
		logger.Warn("notify: ses selected without client, using stub sender")
	}
	return NewStubEmailSender(logger)
}
