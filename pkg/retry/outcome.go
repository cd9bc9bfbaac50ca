package retry

import (
	"net/http"
	"time"

	"github.com/jzx17/httpretry/pkg/types"
)

// OutcomeKind tags an Outcome
type OutcomeKind int

const (
	// OutcomeSuccess is any response that is not retried, 4xx included
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRetriable is a 429/5xx response or a transport error
	OutcomeRetriable
	// OutcomeTerminal is a failure that retrying cannot fix
	OutcomeTerminal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetriable:
		return "retriable"
	case OutcomeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one attempt
type Outcome struct {
	Kind     OutcomeKind
	Response *http.Response
	Err      error
	Hint     time.Duration // server-provided delay, valid when HasHint
	HasHint  bool
}

// IsRetriableStatus reports whether a status code signals a transient server condition
func IsRetriableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// Classify derives the Outcome of a single transport call
func Classify(resp *http.Response, err error) Outcome {
	if err != nil {
		return Outcome{Kind: OutcomeRetriable, Response: resp, Err: err}
	}
	if resp == nil {
		return terminal(types.ErrNilResponse)
	}
	if !IsRetriableStatus(resp.StatusCode) {
		return Outcome{Kind: OutcomeSuccess, Response: resp}
	}
	hint, ok := RetryAfter(resp)
	return Outcome{
		Kind:     OutcomeRetriable,
		Response: resp,
		Hint:     hint,
		HasHint:  ok,
	}
}

// terminal marks an error that is returned without retrying
func terminal(err error) Outcome {
	return Outcome{Kind: OutcomeTerminal, Err: err}
}
