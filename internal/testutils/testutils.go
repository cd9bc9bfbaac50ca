// Package testutils provides scripted transports and recorders for retry tests
package testutils

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jzx17/httpretry/pkg/types"
)

// Step is one scripted transport result: an error, or a response with Status and Header
type Step struct {
	Status     int
	RetryAfter string
	Body       string
	Err        error
}

// OK is a 200 step
func OK() Step { return Step{Status: http.StatusOK, Body: "ok"} }

// Status is a step returning the given status code
func Status(code int) Step { return Step{Status: code} }

// TooManyRequests is a 429 step carrying a Retry-After value (empty for none)
func TooManyRequests(retryAfter string) Step {
	return Step{Status: http.StatusTooManyRequests, RetryAfter: retryAfter}
}

// Fail is a transport error step
func Fail(err error) Step { return Step{Err: err} }

// TrackedBody records whether a response body was closed
type TrackedBody struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

// Close marks the body closed
func (b *TrackedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed reports whether Close was called
func (b *TrackedBody) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ScriptedTransport replays Steps in order, repeating the last one when exhausted
type ScriptedTransport struct {
	mu        sync.Mutex
	steps     []Step
	requests  []*http.Request
	bodies    []string
	responses []*http.Response
	onCall    func(n int)
}

// NewScriptedTransport creates a transport that returns steps in order
func NewScriptedTransport(steps ...Step) *ScriptedTransport {
	return &ScriptedTransport{steps: steps}
}

// OnCall registers a hook run after the nth (1-based) call is recorded
func (s *ScriptedTransport) OnCall(fn func(n int)) *ScriptedTransport {
	s.onCall = fn
	return s
}

// Do performs one scripted call
func (s *ScriptedTransport) Do(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		body = string(data)
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)
	n := len(s.requests)
	step := OK()
	if len(s.steps) > 0 {
		idx := n - 1
		if idx >= len(s.steps) {
			idx = len(s.steps) - 1
		}
		step = s.steps[idx]
	}
	hook := s.onCall
	s.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	if step.Err != nil {
		return nil, step.Err
	}

	resp := NewResponse(req, step.Status, step.Body)
	if step.RetryAfter != "" {
		resp.Header.Set("Retry-After", step.RetryAfter)
	}

	s.mu.Lock()
	s.responses = append(s.responses, resp)
	s.mu.Unlock()

	return resp, nil
}

// RoundTrip lets the transport serve as an http.RoundTripper
func (s *ScriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return s.Do(req)
}

// Calls returns the number of transport invocations
func (s *ScriptedTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Bodies returns the request body received on each call
func (s *ScriptedTransport) Bodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies...)
}

// Requests returns the requests received on each call
func (s *ScriptedTransport) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// Responses returns every response handed out, in order
func (s *ScriptedTransport) Responses() []*http.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Response(nil), s.responses...)
}

// NewResponse builds a response with a TrackedBody
func NewResponse(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		Status:     strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode: status,
		Header:     make(http.Header),
		Body:       &TrackedBody{Reader: strings.NewReader(body)},
		Request:    req,
	}
}

// Event is one recorded observer notification
type Event struct {
	Message string
	Fields  types.Fields
}

// RecordingObserver stores every notification it receives
type RecordingObserver struct {
	mu     sync.Mutex
	events []Event
}

// Warn records the notification
func (o *RecordingObserver) Warn(msg string, fields types.Fields) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, Event{Message: msg, Fields: fields})
}

// Events returns the recorded notifications
func (o *RecordingObserver) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.events...)
}

// Context returns a context cancelled when the test ends or after timeout
func Context(t testing.TB, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
