// Package client is a Go SDK for the CourseHub API.
//
// Callers hold one Session per signed-in principal. Cached views live on the
// session and are only refreshed when asked to.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const apiPrefix = "/api/v1"

// ErrNoSession is returned when an authenticated call is made without a session
var ErrNoSession = errors.New("client: no active session")

// Client talks to a CourseHub API server
type Client struct {
	http *resty.Client
}

// Option configures a Client
type Option func(*resty.Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080"
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+apiPrefix).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// errorResponse is the error body written by the API
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the body of responses that only carry a message
type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetError(&errorResponse{})
}

func (c *Client) authorized(ctx context.Context, s *Session) (*resty.Request, error) {
	if s == nil || s.Token == "" {
		return nil, ErrNoSession
	}
	return c.request(ctx).SetAuthToken(s.Token), nil
}

// execute sends req and turns error statuses into an *APIError
func (c *Client) execute(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return newAPIError(resp)
	}
	return nil
}

// Health reports whether the server and its database are reachable
func (c *Client) Health(ctx context.Context) error {
	return c.execute(c.request(ctx), http.MethodGet, "/health")
}
