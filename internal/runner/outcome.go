package runner

import (
	"context"
	"fmt"
	"time"
)

// Kind tags the terminal result of one request attempt. Every attempt ends
// in exactly one of these; nothing is retried and nothing is thrown.
type Kind int

const (
	// KindSuccess is an HTTP 200 with a parseable JSON body.
	KindSuccess Kind = iota
	// KindHTTPError is any non-200 HTTP status.
	KindHTTPError
	// KindTransportError covers connection, DNS and timeout failures.
	KindTransportError
	// KindParseError is an HTTP 200 whose body is not valid JSON.
	KindParseError
)

// Outcome is the result of one network call, returned (never panicked)
// from the requester and folded into the aggregate exactly once.
type Outcome struct {
	Target  string
	Kind    Kind
	Status  int           // HTTP status; zero for transport failures
	Err     error         // transport cause; nil otherwise
	Payload []byte        // response body; meaningful on success only
	Elapsed time.Duration
}

// Reason returns the error bucket label for a non-success outcome.
func (o Outcome) Reason() string {
	switch o.Kind {
	case KindHTTPError:
		return fmt.Sprintf("HTTP %d", o.Status)
	case KindTransportError:
		if o.Err != nil {
			return o.Err.Error()
		}
		return "transport error"
	case KindParseError:
		return "invalid json payload"
	default:
		return ""
	}
}

// StatusLabel returns the audit-trail status column value.
func (o Outcome) StatusLabel() string {
	switch o.Kind {
	case KindTransportError:
		return "ERR"
	case KindParseError:
		return fmt.Sprintf("%d (invalid json)", o.Status)
	default:
		return fmt.Sprintf("%d", o.Status)
	}
}

// Requester executes a single timed call against one target. Implementations
// must convert every failure mode into an Outcome; they never return errors.
type Requester interface {
	Do(ctx context.Context, target string) Outcome
}
