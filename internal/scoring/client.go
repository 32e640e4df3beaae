// Package scoring submits headlines to the sentiment scoring backend and
// shapes its labels for display.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the scoring backend used when none is configured.
const DefaultEndpoint = "http://localhost:8011/score_headlines"

// DefaultTimeout bounds a single scoring call.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a backend reply is read.
const maxResponseBytes = 8 << 20

// Options configures the scoring client.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DefaultOptions returns the stock endpoint and timeout.
func DefaultOptions() *Options {
	return &Options{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
	}
}

// Client calls the scoring backend. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client; nil options select the defaults.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}

	c := &Client{
		endpoint:   opts.Endpoint,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// Endpoint returns the backend URL this client posts to
func (c *Client) Endpoint() string {
	return c.endpoint
}

type scoreRequest struct {
	Headlines []string `json:"headlines"`
}

type scoreResponse struct {
	Labels []string `json:"labels"`
}

// Score submits the non-blank headlines in one POST and pairs each with the
// label returned for it. Nothing is sent when every headline is blank.
// The call is never retried.
func (c *Client) Score(ctx context.Context, headlines []string) (*Result, error) {
	submitted := make([]string, 0, len(headlines))
	for _, h := range headlines {
		if strings.TrimSpace(h) != "" {
			submitted = append(submitted, h)
		}
	}
	if len(submitted) == 0 {
		return nil, &ValidationError{Message: "no headlines to score"}
	}

	payload, err := json.Marshal(scoreRequest{Headlines: submitted})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	log.Printf("[score] %d headlines -> %s %d in %v", len(submitted), c.endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := validateResponse(body); err != nil {
		return nil, err
	}

	var decoded scoreResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &SchemaError{Message: "failed to decode labels", Cause: err}
	}
	if len(decoded.Labels) != len(submitted) {
		return nil, &SchemaError{
			Message: fmt.Sprintf("got %d labels for %d headlines", len(decoded.Labels), len(submitted)),
		}
	}

	return NewResult(submitted, decoded.Labels), nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
	return &TransportError{Endpoint: c.endpoint, Timeout: timedOut, Cause: err}
}
