package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// ErrNoFromAddress is returned when SES has no verified sender to send from.
var ErrNoFromAddress = errors.New("notify: SES from address not configured")

// SESAPI is the subset of the SES v2 client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers venue notifications through AWS SES v2.
type SESSender struct {
	client SESAPI
	from   string
	logger *logging.Logger
}

// SESConfig holds the verified sender identity.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// NewSESSender returns nil without a client so callers can fall back.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	from := ""
	if cfg.FromEmail != "" {
		from = (&mail.Address{Name: cfg.FromName, Address: cfg.FromEmail}).String()
	}
	return &SESSender{client: client, from: from, logger: logger}
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.from == "" {
		return ErrNoFromAddress
	}
	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content:          &types.EmailContent{Simple: sesMessage(msg)},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("SES send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: SES send failed: %w", err)
	}
	s.logger.Info("email sent via SES", "to", msg.To, "subject", msg.Subject, "message_id", aws.ToString(out.MessageId))
	return nil
}

func sesMessage(msg EmailMessage) *types.Message {
	m := &types.Message{Subject: utf8Content(msg.Subject), Body: &types.Body{}}
	if msg.Body != "" {
		m.Body.Text = utf8Content(msg.Body)
	}
	if msg.HTML != "" {
		m.Body.Html = utf8Content(msg.HTML)
	}
	return m
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

var _ EmailSender = (*SESSender)(nil)
