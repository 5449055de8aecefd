// Package api is a typed client for the storefront REST API.
//
// Every endpoint answers with the envelope
// {success, message, data?, error?}. A non-2xx status is a failure
// regardless of the envelope's success flag.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Envelope is the response body every endpoint returns.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenProvider supplies the bearer token for a call. An empty token means
// the call is sent unauthenticated.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront API.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTokenProvider attaches a bearer token to every call.
func WithTokenProvider(p TokenProvider) Option {
	return func(c *Client) { c.tokens = p }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreaker routes calls through a circuit breaker.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.httpClient.Transport = newBreakerTransport(c.httpClient.Transport, settings)
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Call performs one request and decodes the envelope. body may be nil.
func Call[T any](ctx context.Context, c *Client, method, endpoint string, body any) (*Envelope[T], error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s body: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestID := uuid.Must(uuid.NewV4()).String()
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("api: obtain token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Msg("api: request failed")
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: endpoint, Err: err}
	}

	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &RequestError{Method: method, Endpoint: endpoint, Status: resp.StatusCode, Message: DefaultFailureMessage}
		}
		return nil, &ParseError{Method: method, Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{
			Method:   method,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  failureMessage(env.Error, env.Message),
		}
		log.Debug().Str("method", method).Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("request_id", requestID).Msg(reqErr.Message)
		return nil, reqErr
	}

	log.Debug().Str("method", method).Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("request_id", requestID).Msg("api: ok")
	return &env, nil
}

// fetch calls the endpoint and returns its data, treating success=false as
// a rejection.
func fetch[T any](ctx context.Context, c *Client, method, endpoint string, body any) (*T, error) {
	env, err := Call[T](ctx, c, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &RequestError{Method: method, Endpoint: endpoint, Status: http.StatusOK, Message: failureMessage(env.Error, env.Message)}
	}
	return env.Data, nil
}

// send is fetch for endpoints whose data is irrelevant.
func send(ctx context.Context, c *Client, method, endpoint string, body any) error {
	_, err := fetch[json.RawMessage](ctx, c, method, endpoint, body)
	return err
}

// mustData rejects an accepted envelope that carried no data.
func mustData[T any](v *T, err error, method, endpoint string) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &ParseError{Method: method, Endpoint: endpoint, Status: http.StatusOK, Err: errors.New("envelope has no data")}
	}
	return v, nil
}

// Health calls GET /health. The health body is not an envelope, so only
// the status code matters.
func (c *Client) Health(ctx context.Context) error {
	_, err := Call[json.RawMessage](ctx, c, http.MethodGet, "/health", nil)
	return err
}
