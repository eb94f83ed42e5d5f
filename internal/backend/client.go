package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/atssight/recruiter-desk/internal/auth"
)

const apiPrefix = "/api/recruiter"

// DefaultUploadTimeout bounds the bulk upload request; the backend scores
// every resume before it answers.
const DefaultUploadTimeout = 5 * time.Minute

// Client talks to the ATSSight recruiter REST API
type Client struct {
	baseURL       string
	session       *auth.Session
	authed        *http.Client
	anon          *http.Client
	uploadTimeout time.Duration
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	transport     http.RoundTripper
	uploadTimeout time.Duration
}

// WithTransport sets the underlying round tripper (tests use httptest's)
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithUploadTimeout overrides DefaultUploadTimeout
func WithUploadTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.uploadTimeout = d
		}
	}
}

// NewClient creates a backend client bound to an explicit session
func NewClient(baseURL string, session *auth.Session, opts ...Option) *Client {
	o := clientOptions{
		transport:     http.DefaultTransport,
		uploadTimeout: DefaultUploadTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: session.TokenSource(), Base: o.transport},
		},
		anon:          &http.Client{Transport: o.transport},
		uploadTimeout: o.uploadTimeout,
	}
}

// BaseURL returns the backend root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session the client authenticates with
func (c *Client) Session() *auth.Session {
	return c.session
}

type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// do sends one request and reads the full response. Non-2xx statuses are
// turned into ErrUnauthorized or *APIError; transport failures into ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Logged-out requests go out without a bearer header and let the
	// backend answer 401/403.
	httpClient := c.anon
	if c.session.Authenticated() {
		httpClient = c.authed
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		log.Printf("[%s] %s %s failed after %v: %v", requestID, method, path, time.Since(start), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request %s %s aborted: %w", method, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}
	log.Printf("[%s] %s %s -> %d (%v)", requestID, method, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.session.Invalidate()
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return &response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *response, out interface{}) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// IsAuthError reports whether err came from a rejected session
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
