// Package transport executes single HTTP attempts for the dispatcher. It is
// the only place that touches net/http; failures cross the boundary as
// enumerated error codes, never as raw transport errors or message text the
// caller would have to string-match.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Code enumerates the ways a single attempt can fail before a well-formed
// HTTP response is available.
type Code string

const (
	// CodeTimeout means the attempt exceeded its time budget.
	CodeTimeout Code = "timeout"
	// CodeDomainBlocked means the target host is not in the allow-list.
	CodeDomainBlocked Code = "domain_blocked"
	// CodeNetwork is any other transport failure (refused connection, DNS,
	// reset, malformed URL).
	CodeNetwork Code = "network"
)

// Error is a classified transport failure.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("transport error [%s]", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Request describes a single HTTP attempt.
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
	Timeout time.Duration
}

// Response is a well-formed HTTP response, whatever its status code.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport executes one attempt. A returned error is always a *Error; any
// *Response, including non-2xx ones, is a successful transport round trip.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// HTTPTransport is the net/http-backed Transport. An optional host
// allow-list mirrors the platform's request-domain whitelist: attempts to
// hosts outside the list fail with CodeDomainBlocked before any dial.
type HTTPTransport struct {
	client       *http.Client
	allowedHosts map[string]struct{}
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithClient overrides the underlying http.Client.
func WithClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.client = c }
}

// WithAllowedHosts restricts requests to the given hosts.
func WithAllowedHosts(hosts ...string) Option {
	return func(t *HTTPTransport) {
		t.allowedHosts = make(map[string]struct{}, len(hosts))
		for _, h := range hosts {
			t.allowedHosts[h] = struct{}{}
		}
	}
}

// NewHTTPTransport creates a transport over http.DefaultClient.
func NewHTTPTransport(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{client: http.DefaultClient}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do executes the attempt within req.Timeout.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (*Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Err: err}
	}
	if t.allowedHosts != nil {
		if _, ok := t.allowedHosts[u.Hostname()]; !ok {
			return nil, &Error{Code: CodeDomainBlocked, Err: fmt.Errorf("host %s not in allow-list", u.Hostname())}
		}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &Error{Code: CodeNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

// classify maps an underlying error onto a transport code.
func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Code: CodeTimeout, Err: err}
	}
	return &Error{Code: CodeNetwork, Err: err}
}
