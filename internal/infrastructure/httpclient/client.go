package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/unchive/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Config controls remote fetch behaviour.
type Config struct {
	Timeout   time.Duration
	Retries   int
	RPS       float64
	UserAgent string
	// MaxBytes caps the response body; zero means unlimited.
	MaxBytes int64
}

// Client wraps resty with rate limiting and a circuit breaker.
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breaker  *resilience.Breaker
	maxBytes int64
	mu       sync.RWMutex
}

// NewClient builds a client over a retryable transport.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "unchive/1.0"
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil

	// Retries live in the retryable round tripper; resty only shapes requests.
	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		resty:    restyClient,
		limiter:  limiter,
		breaker:  resilience.New("http-fetch", resilience.Settings{Threshold: 10, Cooldown: 30 * time.Second}),
		maxBytes: cfg.MaxBytes,
	}
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetHeader(key, value)
}

// Breaker exposes the breaker for health reporting.
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Get fetches url and returns the body. Transport failures, non-2xx
// statuses and oversized bodies are reported as IO errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	const op = "fetch"

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.IO(op, url, fmt.Errorf("rate limit: %w", err))
	}

	c.mu.RLock()
	req := c.resty.R().SetContext(ctx)
	c.mu.RUnlock()

	var body []byte
	err := c.breaker.Do(func() error {
		resp, err := req.Get(url)
		if err != nil {
			return err
		}
		if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
			return fmt.Errorf("unexpected status %s", resp.Status())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, errs.IO(op, url, err)
	}

	if c.maxBytes > 0 && int64(len(body)) > c.maxBytes {
		return nil, errs.IO(op, url, fmt.Errorf("response of %d bytes exceeds limit of %d", len(body), c.maxBytes))
	}
	return body, nil
}
