// Package client is a Go client for the redirect API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"redirector/internal/deeplink"
	domain "redirector/internal/domain/models"
	models "redirector/internal/domain/models/json"
	"redirector/internal/token"

	"golang.org/x/time/rate"
)

const apiPrefix = "/api/line-redirects"

var (
	// ErrRateLimited - the server answered 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidToken - the server rejected the token (400).
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNoDestinations - the server has no active destination (404).
	ErrNoDestinations = errors.New("no active destinations")
	// ErrTransport - the request did not complete or the answer was unreadable.
	ErrTransport = errors.New("transport error")
	// ErrUnexpectedStatus - any other non-2xx answer.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// APIError carries the server's status and message. It unwraps to one of the sentinel errors.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
	kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: status %d", e.kind, e.Status)
	}
	return fmt.Sprintf("%v: status %d: %s", e.kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

var _ deeplink.Redeemer = (*Client)(nil)

// Client calls the redirect API of one server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit paces outgoing requests to r per second with the given burst,
// so a batch caller stays under the server's admission quota.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.http
		hc.Transport = &pacedTransport{limiter: rate.NewLimiter(rate.Limit(r), burst), base: base}
		c.http = &hc
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IssueToken creates a handoff token carrying fields.
func (c *Client) IssueToken(ctx context.Context, fields token.Context) (string, error) {
	var out models.IssueTokenResponse
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/create-token", fields, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Redeem exchanges tok for its destination URL. It implements deeplink.Redeemer.
func (c *Client) Redeem(ctx context.Context, tok string) (string, error) {
	var out models.RedeemTokenResponse
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/verify-token", models.RedeemTokenRequest{Token: tok}, &out); err != nil {
		return "", err
	}
	return out.RedirectURL, nil
}

// Select picks a destination without a token.
func (c *Client) Select(ctx context.Context) (domain.RedirectTarget, error) {
	var out models.SelectResponse
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/select", nil, &out); err != nil {
		return domain.RedirectTarget{}, err
	}
	return out.Link, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
		}
		return nil
	}
	return apiError(resp)
}

func apiError(resp *http.Response) error {
	var body models.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body)

	e := &APIError{Status: resp.StatusCode, Message: body.Error}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		e.kind = ErrRateLimited
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	case http.StatusBadRequest:
		e.kind = ErrInvalidToken
	case http.StatusNotFound:
		e.kind = ErrNoDestinations
	default:
		e.kind = ErrUnexpectedStatus
	}
	return e
}

// pacedTransport waits for the limiter before forwarding a request.
type pacedTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *pacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
