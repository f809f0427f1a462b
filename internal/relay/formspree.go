package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// FormspreeRelay posts JSON to a formspree.io form.
type FormspreeRelay struct {
	url    string
	client *http.Client
}

func NewFormspreeRelay(url string, client *http.Client) *FormspreeRelay {
	if client == nil {
		client = http.DefaultClient
	}
	return &FormspreeRelay{url: strings.TrimSpace(url), client: client}
}

func (r *FormspreeRelay) Name() string { return "formspree" }

// Deliver makes exactly one POST. Formspree shows "message" as the email
// body, so a summary of the fields is added when the record has none.
func (r *FormspreeRelay) Deliver(ctx context.Context, sub Submission) Result {
	if r.url == "" {
		return misconfigured(ErrNoDestination)
	}

	fields := append([]Field(nil), sub.Fields...)
	if _, ok := sub.Get("message"); !ok {
		fields = append(fields, Field{Name: "message", Value: strings.TrimRight(sub.Text(), "\n")})
	}
	fields = appendDirective(fields, "_subject", sub.Directives.Subject)
	fields = appendDirective(fields, "_replyto", sub.Directives.ReplyTo)

	body, err := encodeOrdered(fields)
	if err != nil {
		return misconfigured(fmt.Errorf("relay: encode submission: %w", err))
	}
	return post(ctx, r.client, r.url, "application/json", body)
}
