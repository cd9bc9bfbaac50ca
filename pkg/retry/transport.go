package retry

import (
	"net/http"
)

// Transport is an http.RoundTripper that retries transient failures of Base
type Transport struct {
	Base     http.RoundTripper
	executor *Executor
}

var _ http.RoundTripper = &Transport{}

// NewTransport wraps base (http.DefaultTransport when nil) with retries
func NewTransport(base http.RoundTripper, opts ...ExecutorOption) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		Base:     base,
		executor: NewExecutor(base.RoundTrip, opts...),
	}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.executor.DoHTTP(req)
}

// Executor returns the executor backing the transport
func (t *Transport) Executor() *Executor {
	return t.executor
}

// NewClient returns an *http.Client whose transport retries with opts
func NewClient(opts ...ExecutorOption) *http.Client {
	return &http.Client{Transport: NewTransport(nil, opts...)}
}
