package relay

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDestination is returned when a relay has no destination configured.
	ErrNoDestination = errors.New("relay: no destination configured")
	// ErrNoSender is returned by the email relay when no real email provider
	// is configured.
	ErrNoSender = errors.New("relay: email sender not configured")
	// ErrRejected wraps non-2xx responses from the relay service.
	ErrRejected = errors.New("relay: submission rejected")
)

// Kind classifies the outcome of one delivery attempt.
type Kind int

const (
	Delivered Kind = iota
	Transport
	Rejected
	Misconfigured
)

func (k Kind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case Transport:
		return "transport"
	case Rejected:
		return "rejected"
	case Misconfigured:
		return "misconfigured"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of a single delivery attempt. Status carries the
// HTTP status when the relay answered.
type Result struct {
	Kind   Kind
	Status int
	Err    error
}

// OK reports whether the record was delivered.
func (r Result) OK() bool {
	return r.Kind == Delivered
}

func delivered(status int) Result {
	return Result{Kind: Delivered, Status: status}
}

func transportFailure(err error) Result {
	return Result{Kind: Transport, Err: err}
}

func rejected(status int) Result {
	return Result{Kind: Rejected, Status: status, Err: fmt.Errorf("%w: status %d", ErrRejected, status)}
}

func misconfigured(err error) Result {
	return Result{Kind: Misconfigured, Err: err}
}
