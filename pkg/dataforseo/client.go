// Package dataforseo is a client for the DataForSEO Google Ads search-volume
// endpoint.
package dataforseo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Base URLs.
const (
	SandboxURL = "https://sandbox.dataforseo.com/v3"
	LiveURL    = "https://api.dataforseo.com/v3"

	searchVolumePath = "/keywords_data/google_ads/search_volume/live"
)

// MaxKeywords is the per-request keyword limit.
const MaxKeywords = 1000

// StatusOK is the status_code DataForSEO reports for a successful call.
const StatusOK = 20000

// Mode names reported for a client.
const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"
)

var ErrTooManyKeywords = errors.New("dataforseo: too many keywords in one request")

// Config configures a Client.
type Config struct {
	Username string
	Password string
	Sandbox  bool
	// BaseURL overrides the sandbox/live URL, mainly for tests.
	BaseURL string
	Timeout time.Duration
	// MinInterval is the minimum spacing between requests. DataForSEO allows
	// about 12 live calls a minute. Zero or negative disables client-side
	// throttling; callers that pace batches themselves pass 0.
	MinInterval time.Duration
}

// Client calls DataForSEO over HTTP with basic auth.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	sandbox bool
}

// New creates a Client. The transport is wrapped with otelhttp so each call
// carries a client span.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = LiveURL
		if cfg.Sandbox {
			base = SandboxURL
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	hc := resty.New().
		SetBaseURL(base).
		SetBasicAuth(cfg.Username, cfg.Password).
		SetTimeout(cfg.Timeout).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
		sandbox: cfg.Sandbox,
	}
}

// Mode reports "sandbox" or "live".
func (c *Client) Mode() string {
	if c.sandbox {
		return ModeSandbox
	}
	return ModeLive
}

// Live reports whether calls cost real money.
func (c *Client) Live() bool { return !c.sandbox }

// SearchVolume requests volumes for one task. An empty result list is not an
// error.
func (c *Client) SearchVolume(ctx context.Context, task Task) ([]Record, error) {
	if len(task.Keywords) > MaxKeywords {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyKeywords, len(task.Keywords), MaxKeywords)
	}
	if task.LanguageCode == "" {
		task.LanguageCode = "en"
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body response
	res, err := c.http.R().
		SetContext(ctx).
		SetBody([]Task{task}).
		SetResult(&body).
		SetError(&body).
		Post(searchVolumePath)
	if err != nil {
		return nil, fmt.Errorf("dataforseo: %w", err)
	}
	if res.IsError() {
		return nil, &APIError{HTTPStatus: res.StatusCode(), StatusCode: body.StatusCode, Message: statusMessage(res, body)}
	}
	if body.StatusCode != StatusOK {
		return nil, &APIError{HTTPStatus: res.StatusCode(), StatusCode: body.StatusCode, Message: body.StatusMessage}
	}
	if len(body.Tasks) == 0 {
		return nil, nil
	}
	t := body.Tasks[0]
	if t.StatusCode != 0 && t.StatusCode != StatusOK {
		return nil, &APIError{HTTPStatus: res.StatusCode(), StatusCode: t.StatusCode, Message: t.StatusMessage}
	}
	return t.Result, nil
}

func statusMessage(res *resty.Response, body response) string {
	if body.StatusMessage != "" {
		return body.StatusMessage
	}
	return res.Status()
}

// APIError is a failure reported by DataForSEO either as an HTTP error or as
// a non-20000 status_code.
type APIError struct {
	HTTPStatus int
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dataforseo: http %d status %d: %s", e.HTTPStatus, e.StatusCode, e.Message)
}

// Permanent reports whether retrying the same request cannot succeed:
// authentication, payment and request-shape failures.
func (e *APIError) Permanent() bool {
	switch {
	case e.HTTPStatus == http.StatusTooManyRequests:
		return false
	case e.HTTPStatus >= 400 && e.HTTPStatus < 500:
		return true
	case e.StatusCode == 40202 || e.StatusCode == 40209:
		return false
	case e.StatusCode >= 40000 && e.StatusCode < 50000:
		return true
	}
	return false
}
