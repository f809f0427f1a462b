package relay

import (
	"context"
	"strings"

	"github.com/wolfman30/locus-venue/internal/notify"
)

// EmailRelay delivers submissions straight to the venue inbox.
type EmailRelay struct {
	sender notify.EmailSender
	to     string
}

// NewEmailRelay delivers to the venue inbox at to. The stub sender only logs,
// so it counts as no sender at all.
func NewEmailRelay(sender notify.EmailSender, to string) *EmailRelay {
	if _, ok := sender.(*notify.StubEmailSender); ok {
		sender = nil
	}
	return &EmailRelay{sender: sender, to: strings.TrimSpace(to)}
}

// Ready reports whether the relay can actually deliver mail.
func (r *EmailRelay) Ready() bool {
	return r.sender != nil && r.to != ""
}

func (r *EmailRelay) Name() string { return "email" }

func (r *EmailRelay) Deliver(ctx context.Context, sub Submission) Result {
	if r.sender == nil {
		return misconfigured(ErrNoSender)
	}
	if r.to == "" {
		return misconfigured(ErrNoDestination)
	}
	err := r.sender.Send(ctx, notify.EmailMessage{
		To:      r.to,
		ReplyTo: sub.Directives.ReplyTo,
		Subject: sub.Directives.Subject,
		Body:    sub.Text(),
		HTML:    sub.HTML(),
	})
	if err != nil {
		return transportFailure(err)
	}
	return delivered(0)
}
