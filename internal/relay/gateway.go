package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/locus-venue/internal/notify"
	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// Gateway sends submissions for one channel (inquiry, booking) through a
// relay. It never retries and never panics.
type Gateway struct {
	relay   Relay
	channel string
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.FunnelMetrics
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithTimeout bounds each delivery.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.FunnelMetrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

func NewGateway(relay Relay, channel string, logger *logging.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	g := &Gateway{relay: relay, channel: channel, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit delivers sub once and converts every failure into a Result.
func (g *Gateway) Submit(ctx context.Context, sub Submission) (res Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = transportFailure(fmt.Errorf("relay: panic during delivery: %v", p))
		}
		g.metrics.ObserveRelay(g.channel, res.Kind.String(), time.Since(start).Seconds())
		g.log(res)
	}()

	if g.relay == nil {
		return misconfigured(ErrNoDestination)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.relay.Deliver(ctx, sub)
}

func (g *Gateway) log(res Result) {
	name := "none"
	if g.relay != nil {
		name = g.relay.Name()
	}
	if res.OK() {
		g.logger.Info("relay: submission delivered", "channel", g.channel, "relay", name, "status", res.Status)
		return
	}
	g.logger.Error("relay: submission failed",
		"channel", g.channel,
		"relay", name,
		"kind", res.Kind.String(),
		"status", res.Status,
		"error", res.Err,
	)
}

// Provider names accepted by New.
const (
	ProviderFormsubmit = "formsubmit"
	ProviderFormspree  = "formspree"
	ProviderEmail      = "email"
)

// Destination is the configuration New needs for one channel.
type Destination struct {
	Provider string
	URL      string
	Encoding Encoding
	Client   *http.Client
	Sender   notify.EmailSender
	EmailTo  string
}

// New builds the relay named by dest.Provider.
func New(dest Destination) (Relay, error) {
	switch strings.ToLower(strings.TrimSpace(dest.Provider)) {
	case "", ProviderFormsubmit:
		return NewFormsubmitRelay(dest.URL, dest.Client, dest.Encoding), nil
	case ProviderFormspree:
		return NewFormspreeRelay(dest.URL, dest.Client), nil
	case ProviderEmail:
		return NewEmailRelay(dest.Sender, dest.EmailTo), nil
	default:
		return nil, fmt.Errorf("relay: unknown provider %q", dest.Provider)
	}
}
