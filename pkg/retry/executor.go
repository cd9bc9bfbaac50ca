// Package retry provides retry executor implementation
package retry

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/coder/quartz"

	"github.com/jzx17/httpretry/pkg/types"
)

// drainLimit bounds how much of a discarded response body is read so the
// connection can be reused
const drainLimit = 4096

// retryMessage is the observer message for every retried failure
const retryMessage = "retrying request"

// Doer performs a single HTTP request. (*http.Client).Do satisfies it.
type Doer func(req *http.Request) (*http.Response, error)

// attemptFunc performs one attempt and classifies it
type attemptFunc func(ctx context.Context) Outcome

// Executor wraps a Doer with retry and exponential backoff.
// It is safe for concurrent use; every call owns its own attempt state.
type Executor struct {
	config  Config
	doer    Doer
	clock   quartz.Clock
	stats   *Stats
	metrics *Metrics
}

// NewExecutor creates a retry executor around doer
func NewExecutor(doer Doer, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		config: DefaultConfig(),
		doer:   doer,
		clock:  quartz.NewReal(),
		stats:  &Stats{},
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Wrap returns a Doer of the same shape as doer that retries transient failures
func Wrap(doer Doer, opts ...ExecutorOption) Doer {
	return NewExecutor(doer, opts...).DoHTTP
}

// Config returns the executor configuration
func (e *Executor) Config() Config {
	return e.config
}

// Do sends the request described by r, retrying 429/5xx responses and
// transport errors. ctx is the abort signal.
func (e *Executor) Do(ctx context.Context, r *Request) (*http.Response, error) {
	return e.execute(ctx, r.URL, func(ctx context.Context) Outcome {
		req, err := r.Build(ctx)
		if err != nil {
			return terminal(err)
		}
		return Classify(e.doer(req))
	})
}

// DoHTTP sends req with retries, using req.Context() as the abort signal.
// Bodies without GetBody are buffered once so each attempt sends them in full.
// The caller's body is always closed, as http.RoundTripper requires.
func (e *Executor) DoHTTP(req *http.Request) (*http.Response, error) {
	// attempts read from GetBody; bodies without it are closed once buffered
	if req.GetBody != nil && req.Body != nil && req.Body != http.NoBody {
		defer req.Body.Close()
	}

	req, err := rewindable(req)
	if err != nil {
		return nil, err
	}

	return e.execute(req.Context(), req.URL.String(), func(ctx context.Context) Outcome {
		attemptReq, err := replay(ctx, req)
		if err != nil {
			return terminal(err)
		}
		return Classify(e.doer(attemptReq))
	})
}

// execute runs the attempt loop:
// attempt, classify, stop or compute delay, check abort, notify, wait, advance.
func (e *Executor) execute(ctx context.Context, url string, attempt attemptFunc) (*http.Response, error) {
	state := newAttemptState(&e.config)

	for {
		e.recordAttempt()

		outcome := attempt(ctx)

		switch outcome.Kind {
		case OutcomeSuccess:
			e.recordFinish(resultSuccess, state.attempt)
			return outcome.Response, nil
		case OutcomeTerminal:
			e.recordFinish(resultTerminal, state.attempt)
			return outcome.Response, outcome.Err
		}

		if state.exhausted(&e.config) {
			e.recordFinish(resultExhausted, state.attempt)
			return outcome.Response, outcome.Err
		}

		delay := state.waitFor(outcome)

		// check if context is cancelled before waiting
		if err := ctx.Err(); err != nil {
			discard(outcome.Response)
			e.recordFinish(resultAborted, state.attempt)
			return nil, types.NewAbortError(state.attempt+1, url, err)
		}

		e.notify(outcome, state.attempt+1, delay, url)
		discard(outcome.Response)
		e.recordRetry(outcome, delay)

		if err := e.wait(ctx, delay); err != nil {
			e.recordFinish(resultAborted, state.attempt)
			return nil, types.NewAbortError(state.attempt+1, url, err)
		}

		state.advance(&e.config)
	}
}

// wait suspends for d on the executor clock; non-positive delays do not wait
func (e *Executor) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := e.clock.NewTimer(d, "retry", "wait")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// notify emits a retry event; observer failures never affect the loop
func (e *Executor) notify(o Outcome, attempt int, delay time.Duration, url string) {
	if e.config.Observer == nil {
		return
	}

	fields := types.Fields{
		types.FieldAttempt:    attempt,
		types.FieldMaxRetries: e.config.MaxRetries,
		types.FieldDelayMS:    delay.Milliseconds(),
		types.FieldURL:        url,
	}
	if o.Err != nil {
		fields[types.FieldError] = o.Err.Error()
	} else if o.Response != nil {
		fields[types.FieldStatus] = o.Response.StatusCode
	}

	defer func() {
		_ = recover()
	}()
	e.config.Observer.Warn(retryMessage, fields)
}

// discard drains and closes a response that will not be returned
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, drainLimit)
	_ = resp.Body.Close()
}

// ExecutorOption is a configuration option for retry executor
type ExecutorOption func(*Executor)

// WithConfig replaces the whole configuration
func WithConfig(cfg Config) ExecutorOption {
	return func(e *Executor) {
		e.config = cfg
		if e.config.MaxRetries < 0 {
			e.config.MaxRetries = 0
		}
	}
}

// WithMaxRetries sets the number of retries after the first attempt; negative values mean 0
func WithMaxRetries(n int) ExecutorOption {
	return func(e *Executor) {
		if n < 0 {
			n = 0
		}
		e.config.MaxRetries = n
	}
}

// WithInitialDelay sets the delay before the first retry
func WithInitialDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.config.InitialDelay = d
	}
}

// WithMaxDelay sets the ceiling for the exponential delay
func WithMaxDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.config.MaxDelay = d
	}
}

// WithBackoffFactor sets the delay multiplier. Values <= 1 are accepted and disable growth.
func WithBackoffFactor(f float64) ExecutorOption {
	return func(e *Executor) {
		e.config.BackoffFactor = f
	}
}

// WithObserver sets the retry event observer
func WithObserver(observer types.Observer) ExecutorOption {
	return func(e *Executor) {
		e.config.Observer = observer
	}
}

// WithClock sets the clock for time operations
func WithClock(clock quartz.Clock) ExecutorOption {
	return func(e *Executor) {
		e.clock = clock
	}
}

// WithMetrics records attempts, retries and outcomes in m
func WithMetrics(m *Metrics) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}
