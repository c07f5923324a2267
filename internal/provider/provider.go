// Package provider abstracts the messaging transports a campaign can
// dispatch through. Adapters are resolved from a registry keyed by
// (company, provider family); the owning channel-management subsystem is
// expected to register already-connected adapters.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Message is one outbound payload. A non-empty MediaURL makes it a media
// message with Body as caption.
type Message struct {
	Body     string
	MediaURL string
}

// Adapter sends one message to one recipient through a concrete
// transport and returns the provider-side message id.
type Adapter interface {
	Family() string
	Send(ctx context.Context, to string, msg Message) (string, error)
}

// PermanentError marks a send failure that retrying cannot fix, e.g. an
// invalid or blocked recipient. The dispatcher resolves such deliveries
// terminally instead of handing them to the queue retry policy.
type PermanentError struct {
	Reason string
}

func (e *PermanentError) Error() string {
	return "permanent send failure: " + e.Reason
}

func Permanent(format string, args ...any) error {
	return &PermanentError{Reason: fmt.Sprintf(format, args...)}
}

// IsPermanent reports whether err (or anything it wraps) is a
// PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
