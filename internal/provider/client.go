package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrTransient marks failures that may succeed on a later attempt:
	// network errors, timeouts, HTTP 429/5xx and an open circuit breaker.
	ErrTransient = errors.New("transient provider error")
	// ErrBadResponse marks payloads that could not be decoded or were rejected by the provider.
	ErrBadResponse = errors.New("bad provider response")
)

// Config controls HTTP behavior for a third-party data provider.
type Config struct {
	Name             string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns production defaults for a provider named name.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		Timeout:          15 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Client performs JSON GET requests guarded by a timeout and a circuit breaker.
type Client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrTransient)
		},
	})
	return &Client{http: httpClient, breaker: breaker, timeout: cfg.Timeout}
}

// GetJSON issues GET baseURL?params and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, baseURL string, params url.Values, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.getJSON(ctx, baseURL, params, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := baseURL
	if len(params) > 0 {
		target = baseURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, truncate(body, 256))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	return nil
}

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded)
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
