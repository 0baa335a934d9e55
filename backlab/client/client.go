// Package client talks to the backtest service over HTTP. It
// implements the service.Backtester and service.UniverseProvider
// interfaces on top of resty, with a jittered backoff retry for
// transient transport failures.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jpillora/backoff"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/ezquant/backlab/backlab/model"
	"github.com/ezquant/backlab/backlab/service"
	"github.com/ezquant/backlab/backlab/tools/log"
)

var (
	_ service.Backtester       = (*Client)(nil)
	_ service.UniverseProvider = (*Client)(nil)
)

const (
	defaultTimeout  = 120 * time.Second
	defaultAttempts = 3
)

// ServiceError is a failure reported by the backtest service. When the
// service sent a detail message it is surfaced verbatim; otherwise a
// generic notice is shown.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backtest service request failed (status %d)", e.Status)
}

// Client is an HTTP client for the backtest and universe metadata
// endpoints.
type Client struct {
	http     *resty.Client
	attempts int
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the per-request timeout from a duration string such
// as "90s" or "2m".
func WithTimeout(s string) Option {
	return func(c *Client) {
		d, err := str2duration.ParseDuration(s)
		if err != nil {
			log.Warnf("invalid timeout %q, keeping %v: %v", s, defaultTimeout, err)
			return
		}
		c.http.SetTimeout(d)
	}
}

// WithAttempts bounds the number of tries for a transient transport
// failure.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json"),
		attempts: defaultAttempts,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// RunBacktest posts a compiled request and decodes the response. The
// caller guarantees at most one request is in flight at a time.
func (c *Client) RunBacktest(ctx context.Context, req *model.BacktestRequest) (*model.BacktestResponse, error) {
	var out model.BacktestResponse
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/run_backtest")
	})
	if err != nil {
		return nil, err
	}
	if err := serviceError(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// UniverseMeta fetches the selectable sectors and market-cap buckets.
func (c *Client) UniverseMeta(ctx context.Context) (*model.UniverseMeta, error) {
	var out model.UniverseMeta
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/universe/meta")
	})
	if err != nil {
		return nil, err
	}
	if err := serviceError(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// Healthz reports whether the service answers its health endpoint.
func (c *Client) Healthz(ctx context.Context) error {
	resp, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/healthz")
	})
	if err != nil {
		return err
	}
	return serviceError(resp)
}

// do runs a request with retries on transport failures. HTTP-level
// errors are not retried; the service's verdict is final.
func (c *Client) do(ctx context.Context, call func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    10 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			wait := b.Duration()
			log.Warnf("backtest service unreachable, retrying in %v: %v", wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := call(c.http.R().SetContext(ctx).SetError(&model.APIError{}))
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("backtest service unreachable: %w", lastErr)
}

// serviceError maps a non-2xx response onto a ServiceError carrying
// the service's detail string when one was sent.
func serviceError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	detail := ""
	if apiErr, ok := resp.Error().(*model.APIError); ok && apiErr != nil {
		detail = apiErr.Detail
	}
	return &ServiceError{Status: resp.StatusCode(), Detail: detail}
}
