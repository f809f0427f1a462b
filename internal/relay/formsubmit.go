package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Encoding selects how a FormsubmitRelay posts its fields.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMultipart
)

// Relay delivers one submission and reports the outcome.
type Relay interface {
	Name() string
	Deliver(ctx context.Context, sub Submission) Result
}

// FormsubmitRelay posts to a formsubmit.co endpoint.
type FormsubmitRelay struct {
	url      string
	client   *http.Client
	encoding Encoding
	template string
}

// NewFormsubmitRelay builds a relay for url. A nil client uses
// http.DefaultClient.
func NewFormsubmitRelay(url string, client *http.Client, encoding Encoding) *FormsubmitRelay {
	if client == nil {
		client = http.DefaultClient
	}
	return &FormsubmitRelay{
		url:      strings.TrimSpace(url),
		client:   client,
		encoding: encoding,
		template: "table",
	}
}

func (r *FormsubmitRelay) Name() string { return "formsubmit" }

// Deliver makes exactly one POST.
func (r *FormsubmitRelay) Deliver(ctx context.Context, sub Submission) Result {
	if r.url == "" {
		return misconfigured(ErrNoDestination)
	}

	fields := append([]Field(nil), sub.Fields...)
	fields = appendDirective(fields, "_subject", sub.Directives.Subject)
	fields = appendDirective(fields, "_replyto", sub.Directives.ReplyTo)
	fields = appendDirective(fields, "_autoresponse", sub.Directives.AutoResponse)
	fields = appendDirective(fields, "_template", r.template)
	fields = append(fields, Field{Name: "_captcha", Value: "false"})

	var (
		body        []byte
		contentType string
		err         error
	)
	switch r.encoding {
	case EncodingMultipart:
		body, contentType, err = encodeMultipart(fields)
	default:
		body, err = encodeOrdered(fields)
		contentType = "application/json"
	}
	if err != nil {
		return misconfigured(fmt.Errorf("relay: encode submission: %w", err))
	}
	return post(ctx, r.client, r.url, contentType, body)
}

func appendDirective(fields []Field, name, value string) []Field {
	if value == "" {
		return fields
	}
	return append(fields, Field{Name: name, Value: value})
}

func encodeMultipart(fields []Field) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func post(ctx context.Context, client *http.Client, url, contentType string, body []byte) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return misconfigured(fmt.Errorf("relay: build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return transportFailure(fmt.Errorf("relay: post failed: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejected(resp.StatusCode)
	}
	return delivered(resp.StatusCode)
}
