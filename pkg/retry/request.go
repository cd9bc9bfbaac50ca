package retry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Request is a reusable request descriptor.
// Each attempt materializes a fresh *http.Request from it, so single-use
// bodies are never consumed by an earlier attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// NewRequest creates a request descriptor. The body is copied.
func NewRequest(method, url string, body []byte) *Request {
	r := &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
	if body != nil {
		r.Body = append([]byte(nil), body...)
	}
	return r
}

// RequestFromHTTP captures an *http.Request as a descriptor, reading its body.
// GetBody is preferred when set so the original body is left untouched.
func RequestFromHTTP(req *http.Request) (*Request, error) {
	body, err := snapshotBody(req)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	}, nil
}

// Build materializes a fresh *http.Request bound to ctx
func (r *Request) Build(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", r.Method, r.URL, err)
	}
	if r.Header != nil {
		req.Header = r.Header.Clone()
	}
	return req, nil
}

func snapshotBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	rc := req.Body
	if req.GetBody != nil {
		fresh, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("get request body: %w", err)
		}
		rc = fresh
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}

// rewindable returns a request that can be re-sent, buffering the body of
// requests without GetBody. The caller's request is not modified.
func rewindable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	body, err := snapshotBody(req)
	if err != nil {
		return nil, err
	}
	req = req.Clone(req.Context())
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return req, nil
}

// replay clones req for one attempt with a fresh body from GetBody
func replay(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.GetBody == nil {
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("get request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
