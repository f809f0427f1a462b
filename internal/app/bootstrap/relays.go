package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/locus-venue/internal/config"
	"github.com/wolfman30/locus-venue/internal/notify"
	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/internal/relay"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// Relay channel names, used as metric labels.
const (
	ChannelInquiry      = "inquiry"
	ChannelBookingLead  = "booking_lead"
	ChannelBooking      = "booking"
	ChannelBookingEmail = "booking_email"
)

// Gateways are the delivery channels the funnel submits to.
type Gateways struct {
	Inquiry      *relay.Gateway
	BookingLead  *relay.Gateway
	Booking      *relay.Gateway
	BookingEmail *relay.Gateway
}

// BuildEmailSender returns the provider named by EMAIL_PROVIDER. SES clients
// are only built when selected.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, loadAWS AWSLoader, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	opts := notify.SenderOptions{
		Provider:       cfg.EmailProvider,
		SendGridAPIKey: cfg.SendGridAPIKey,
		FromEmail:      cfg.EmailFromAddress,
		FromName:       cfg.EmailFromName,
	}
	if strings.EqualFold(strings.TrimSpace(cfg.EmailProvider), "ses") && loadAWS != nil {
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
		} else {
			opts.SES = sesv2.NewFromConfig(awsCfg)
		}
	}
	return notify.NewEmailSender(opts, logger)
}

// BuildGateways wires one gateway per channel against RELAY_PROVIDER. The
// multipart booking-email channel always posts to formsubmit unless the
// provider is direct email.
func BuildGateways(cfg *appconfig.Config, sender notify.EmailSender, m *metrics.FunnelMetrics, logger *logging.Logger) (Gateways, error) {
	if logger == nil {
		logger = logging.Default()
	}
	client := &http.Client{}
	if cfg.RelayTimeout > 0 {
		client.Timeout = cfg.RelayTimeout
	}

	build := func(channel, url string, encoding relay.Encoding, provider string) (*relay.Gateway, error) {
		r, err := relay.New(relay.Destination{
			Provider: provider,
			URL:      url,
			Encoding: encoding,
			Client:   client,
			Sender:   sender,
			EmailTo:  cfg.NotifyEmail,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %s relay: %w", channel, err)
		}
		if er, ok := r.(*relay.EmailRelay); ok && !er.Ready() {
			logger.Warn("email relay has no sender or recipient; submissions will fail as misconfigured",
				"channel", channel)
		}
		logger.Info("relay configured", "channel", channel, "relay", r.Name())
		return relay.NewGateway(r, channel, logger,
			relay.WithTimeout(cfg.RelayTimeout),
			relay.WithMetrics(m),
		), nil
	}

	var (
		gw  Gateways
		err error
	)
	if gw.Inquiry, err = build(ChannelInquiry, cfg.InquiryRelayURL, relay.EncodingJSON, cfg.RelayProvider); err != nil {
		return Gateways{}, err
	}
	if gw.BookingLead, err = build(ChannelBookingLead, cfg.BookingRelayURL, relay.EncodingJSON, cfg.RelayProvider); err != nil {
		return Gateways{}, err
	}
	if gw.Booking, err = build(ChannelBooking, cfg.BookingRelayURL, relay.EncodingJSON, cfg.RelayProvider); err != nil {
		return Gateways{}, err
	}
	emailProvider := relay.ProviderFormsubmit
	if strings.EqualFold(cfg.RelayProvider, relay.ProviderEmail) {
		emailProvider = relay.ProviderEmail
	}
	if gw.BookingEmail, err = build(ChannelBookingEmail, cfg.BookingEmailURL, relay.EncodingMultipart, emailProvider); err != nil {
		return Gateways{}, err
	}
	return gw, nil
}
