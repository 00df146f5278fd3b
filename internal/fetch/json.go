package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx upstream response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrCircuitOpen is returned while the upstream's breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")

	errNoHTTPClient = errors.New("http client not configured")
)

// breakerThreshold is the number of consecutive failures that opens a breaker.
const breakerThreshold = 5

// StatusError is a non-2xx upstream response. It matches ErrUnexpectedStatus.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// upstreamHealthy decides what the breaker counts as a failure. Cancelled
// callers and client errors say nothing about the upstream itself.
func upstreamHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// Client issues GET requests against one upstream and decodes JSON bodies.
// It never retries; an optional circuit breaker only fails fast.
type Client struct {
	name    string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client for the named upstream. When withBreaker is
// false every call goes straight to the transport.
func NewClient(name string, httpClient *http.Client, withBreaker bool) *Client {
	c := &Client{
		name: name,
		http: httpClient,
	}
	if withBreaker {
		c.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    1 * time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerThreshold
			},
			IsSuccessful: upstreamHealthy,
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state change", "upstream", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return c
}

// Name returns the upstream name the client was created for.
func (c *Client) Name() string {
	return c.name
}

// GetJSON issues a GET with the given headers and decodes the body into dest.
// Transport errors, non-2xx statuses and malformed JSON are returned as errors.
func (c *Client) GetJSON(ctx context.Context, url string, headers http.Header, dest any) error {
	body, err := c.get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	if c.http == nil {
		return nil, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header[k] = v
	}

	do := func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(data, 100)}
		}
		return data, nil
	}

	if c.circuit == nil {
		result, err := do()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		return result.([]byte), nil
	}

	result, err := c.circuit.Execute(do)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %v", c.name, ErrCircuitOpen, err)
		}
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	data, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", c.name)
	}
	return data, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
