package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Locus Venue" {
		t.Errorf("expected default from name 'Locus Venue', got %q", sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{client: nil}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestBuildSendGridMessage_ReplyToAndFallbackHTML(t *testing.T) {
	msg := buildSendGridMessage("Locus Venue", "events@locus.test", EmailMessage{
		To:      "owner@locus.test",
		ReplyTo: "guest@example.com",
		Subject: "New Booking Request from Locus Venue",
		Body:    "name: Jane",
	})

	if msg.ReplyTo == nil || msg.ReplyTo.Address != "guest@example.com" {
		t.Fatalf("expected reply-to guest@example.com, got %+v", msg.ReplyTo)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("expected text and html content, got %d", len(msg.Content))
	}
	if msg.Content[1].Value != "name: Jane" {
		t.Errorf("expected html to fall back to body, got %q", msg.Content[1].Value)
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})

	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "events@locus.test"}, logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "owner@locus.test",
		ReplyTo: "guest@example.com",
		Subject: "New Booking Request from Locus Venue",
		Body:    "name: Jane",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := client.input
	if got := aws.ToString(in.FromEmailAddress); got != `"Locus Venue" <events@locus.test>` {
		t.Errorf("unexpected from address %q", got)
	}
	if len(in.ReplyToAddresses) != 1 || in.ReplyToAddresses[0] != "guest@example.com" {
		t.Errorf("unexpected reply-to %v", in.ReplyToAddresses)
	}
	if got := aws.ToString(in.Content.Simple.Body.Text.Data); got != "name: Jane" {
		t.Errorf("unexpected text body %q", got)
	}
	if in.Content.Simple.Body.Html != nil {
		t.Error("expected no html body")
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "events@locus.test"}, logging.Discard())

	if err := sender.Send(context.Background(), EmailMessage{To: "owner@locus.test"}); err == nil {
		t.Error("expected error from SES failure")
	}
}

func TestSESSender_SendHTMLToNamedRecipient(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "events@locus.test", FromName: "Locus, Events"}, logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "owner@locus.test",
		ToName:  "Venue Owner",
		Subject: "New Chat Inquiry from Locus Website",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := client.input
	if got := aws.ToString(in.FromEmailAddress); got != `"Locus, Events" <events@locus.test>` {
		t.Errorf("unexpected from address %q", got)
	}
	if got := in.Destination.ToAddresses[0]; got != `"Venue Owner" <owner@locus.test>` {
		t.Errorf("unexpected recipient %q", got)
	}
	if in.Content.Simple.Body.Text != nil {
		t.Error("expected no text body")
	}
	if got := aws.ToString(in.Content.Simple.Body.Html.Data); got != "<p>hi</p>" {
		t.Errorf("unexpected html body %q", got)
	}
	if in.ReplyToAddresses != nil {
		t.Errorf("unexpected reply-to %v", in.ReplyToAddresses)
	}
}

func TestSESSender_RequiresFromAddress(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{}, logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{To: "owner@locus.test"})
	if !errors.Is(err, ErrNoFromAddress) {
		t.Fatalf("expected ErrNoFromAddress, got %v", err)
	}
	if client.input != nil {
		t.Error("SES should not be called without a from address")
	}
}

func TestNewSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Error("expected nil sender without client")
	}
}

func TestNewEmailSender_SelectsProvider(t *testing.T) {
	logger := logging.Discard()

	tests := []struct {
		name string
		opts SenderOptions
		want string
	}{
		{"sendgrid with key", SenderOptions{Provider: "SendGrid", SendGridAPIKey: "k"}, "*notify.SendGridSender"},
		{"sendgrid without key", SenderOptions{Provider: "sendgrid"}, "*notify.StubEmailSender"},
		{"ses with client", SenderOptions{Provider: "ses", SES: &fakeSES{}}, "*notify.SESSender"},
		{"ses without client", SenderOptions{Provider: "ses"}, "*notify.StubEmailSender"},
		{"unset", SenderOptions{}, "*notify.StubEmailSender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEmailSender(tt.opts, logger)
			if typeName(got) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, typeName(got))
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *SendGridSender:
		return "*notify.SendGridSender"
	case *SESSender:
		return "*notify.SESSender"
	case *StubEmailSender:
		return "*notify.StubEmailSender"
	default:
		return "unknown"
	}
}
