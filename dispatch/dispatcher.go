// Package dispatch turns logical backend calls into reliable RequestOutcome
// values. It hides transient network failures behind a bounded retry loop,
// collapses concurrent identical requests into a single transport call, and
// classifies every failure into the fixed error taxonomy in types.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/health-tracker-project/health-client/config"
	"github.com/health-tracker-project/health-client/logger"
	"github.com/health-tracker-project/health-client/netstatus"
	"github.com/health-tracker-project/health-client/resilience"
	"github.com/health-tracker-project/health-client/transport"
	"github.com/health-tracker-project/health-client/types"
)

// Request option defaults.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
)

// RequestOptions tune a single logical request. The zero value of a field
// means "use the default"; PreventDuplicate defaults to true and is only
// false when explicitly disabled via DisableDedup.
type RequestOptions struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// DisableDedup opts this request out of in-flight de-duplication.
	DisableDedup bool
}

func (o *RequestOptions) withDefaults(api *config.APIConfig) RequestOptions {
	opts := RequestOptions{}
	if o != nil {
		opts = *o
	}
	if opts.Timeout <= 0 {
		if api != nil && api.Timeout > 0 {
			opts.Timeout = api.Timeout
		} else {
			opts.Timeout = DefaultTimeout
		}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return opts
}

// Dispatcher issues HTTP calls against the configured backend. Construct
// one at the composition root and share it; it is safe for concurrent use.
type Dispatcher struct {
	config    config.Provider
	transport transport.Transport
	probe     netstatus.Prober
	clock     clockwork.Clock
	breaker   *resilience.CircuitBreaker
	log       *logger.Logger

	pending singleflight.Group
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTransport overrides the HTTP transport primitive.
func WithTransport(t transport.Transport) Option {
	return func(d *Dispatcher) { d.transport = t }
}

// WithProber overrides the connectivity probe.
func WithProber(p netstatus.Prober) Option {
	return func(d *Dispatcher) { d.probe = p }
}

// WithClock overrides the clock used for retry backoff.
func WithClock(c clockwork.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger overrides the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithCircuitBreaker routes every attempt through the given breaker. While
// the breaker is open, attempts fail as NETWORK_ERROR without touching the
// transport.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(d *Dispatcher) { d.breaker = cb }
}

// New creates a dispatcher over the given configuration collaborator.
func New(cfg config.Provider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		config:    cfg,
		transport: transport.NewHTTPTransport(),
		probe:     netstatus.InterfaceProber{},
		clock:     clockwork.NewRealClock(),
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get issues a GET request with default options.
func (d *Dispatcher) Get(ctx context.Context, endpoint string) types.RequestOutcome {
	return d.Request(ctx, endpoint, http.MethodGet, nil, nil)
}

// Request issues a logical backend call and always returns an outcome,
// never an error or panic. Concurrent calls with the same method, endpoint
// and body share the one in-flight attempt unless dedup is disabled; the
// pending entry is released when that attempt settles, success or failure.
func (d *Dispatcher) Request(ctx context.Context, endpoint, method string, body interface{}, opts *RequestOptions) types.RequestOutcome {
	payload, err := serializeBody(body)
	if err != nil {
		return types.FailureOutcome(types.WrapRequestError(types.ErrorTypeNetwork,
			"failed to encode request body", err))
	}

	if opts != nil && opts.DisableDedup {
		return d.execute(ctx, endpoint, method, payload, opts)
	}

	key := dedupKey(method, endpoint, payload)
	result, _, _ := d.pending.Do(key, func() (interface{}, error) {
		return d.execute(ctx, endpoint, method, payload, opts), nil
	})
	return result.(types.RequestOutcome)
}

// execute runs the connectivity check, config resolution and retry loop.
func (d *Dispatcher) execute(ctx context.Context, endpoint, method string, payload []byte, reqOpts *RequestOptions) types.RequestOutcome {
	log := d.log.WithFields(map[string]interface{}{
		"request_id": uuid.NewString(),
		"method":     method,
		"endpoint":   endpoint,
	})

	if status := d.probe.Status(ctx); !status.Connected {
		log.Warn("network unavailable, request not attempted")
		return types.FailureOutcome(types.NewRequestError(types.ErrorTypeNetworkDisconnected,
			"network unavailable"))
	}

	api, err := d.config.APIConfig()
	if err != nil {
		log.Error("api configuration unavailable", err)
		return types.FailureOutcome(types.WrapRequestError(types.ErrorTypeConfig,
			"api configuration unavailable", err))
	}

	opts := reqOpts.withDefaults(api)
	url := strings.TrimRight(api.BaseURL, "/") + endpoint
	policy := &resilience.LinearBackoffPolicy{
		BaseDelay:   opts.RetryDelay,
		MaxAttempts: opts.MaxRetries,
	}

	var last types.RequestOutcome
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		outcome := d.attempt(ctx, method, url, payload, opts.Timeout)
		if outcome.Success {
			log.Debugf("request succeeded with status %d on attempt %d", outcome.StatusCode, attempt)
			return outcome
		}

		// Terminal failures will not change across retries; surface the
		// attempt's own classification instead of burning the budget.
		if !outcome.Error.Type.IsTransient() {
			log.Warnf("request failed terminally: %s", outcome.Error.Error())
			return outcome
		}

		last = outcome
		if attempt < opts.MaxRetries {
			log.Infof("request retry %d: %s", attempt, url)
			if err := resilience.Sleep(ctx, d.clock, policy.NextDelay(attempt)); err != nil {
				return types.FailureOutcome(types.WrapRequestError(types.ErrorTypeNetwork,
					"request abandoned during retry backoff", err))
			}
		}
	}

	log.Warnf("request exhausted %d attempts", opts.MaxRetries)
	return types.FailureOutcome(&types.RequestError{
		Type:       types.ErrorTypeMaxRetriesExceeded,
		Message:    fmt.Sprintf("all %d attempts failed: %s", opts.MaxRetries, last.Error.Message),
		StatusCode: last.Error.StatusCode,
		Err: resilience.ErrMaxRetriesExceeded{
			Attempts: opts.MaxRetries,
			LastErr:  last.Error,
		},
	})
}

// attempt performs a single transport round trip with its own time budget.
func (d *Dispatcher) attempt(ctx context.Context, method, url string, payload []byte, timeout time.Duration) types.RequestOutcome {
	req := transport.Request{
		Method:  method,
		URL:     url,
		Body:    payload,
		Timeout: timeout,
	}

	var resp *transport.Response
	var err error
	if d.breaker != nil {
		err = d.breaker.Execute(func() error {
			var innerErr error
			resp, innerErr = d.transport.Do(ctx, req)
			return innerErr
		})
	} else {
		resp, err = d.transport.Do(ctx, req)
	}

	if err != nil {
		return types.FailureOutcome(classifyTransportError(err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return types.SuccessOutcome(resp.StatusCode, resp.Body)
	}
	return types.FailureOutcome(&types.RequestError{
		Type:       types.ErrorTypeHTTP,
		Message:    parseHTTPError(resp.StatusCode, resp.Body),
		StatusCode: resp.StatusCode,
	})
}

// classifyTransportError maps transport and breaker errors onto the
// taxonomy. Classification rides on enumerated codes, never message text.
func classifyTransportError(err error) *types.RequestError {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return types.WrapRequestError(types.ErrorTypeNetwork, "backend circuit open", err)
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		switch terr.Code {
		case transport.CodeTimeout:
			return types.WrapRequestError(types.ErrorTypeTimeout, "request timed out", err)
		case transport.CodeDomainBlocked:
			return types.WrapRequestError(types.ErrorTypeDomain, "target host not in request allow-list", err)
		}
	}
	return types.WrapRequestError(types.ErrorTypeNetwork, "network request failed", err)
}

func serializeBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

// dedupKey identifies logically identical in-flight requests.
func dedupKey(method, endpoint string, payload []byte) string {
	body := "{}"
	if len(payload) > 0 {
		body = string(payload)
	}
	return method + "_" + endpoint + "_" + body
}
