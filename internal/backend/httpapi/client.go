// Package httpapi implements the service collaborators over the taskpad
// HTTP API. Transport and decoding failures never escape as raw errors from
// a request: they are folded into a Response carrying a Message.
package httpapi

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

	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a whole request, including reading the body.
const DefaultTimeout = 30 * time.Second

// Response is the envelope returned by the API.
type Response[T any] struct {
	StatusCode int    `json:"statusCode,omitempty"`
	Data       T      `json:"data"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the envelope carries status 200.
func (r Response[T]) OK() bool { return r.StatusCode == http.StatusOK }

// Err describes a failed response as an error prefixed with op.
func (r Response[T]) Err(op string) error {
	msg := r.Error
	if msg == "" {
		msg = r.Message
	}
	if msg == "" && r.StatusCode != 0 {
		msg = fmt.Sprintf("unexpected status %d", r.StatusCode)
	}
	if msg == "" {
		msg = "invalid response from server"
	}
	return fmt.Errorf("%s: %s", op, msg)
}

// Options configures a Client.
type Options struct {
	// BaseURL is prefixed to every endpoint, e.g. "http://localhost:3000".
	BaseURL string

	// Timeout bounds each request. Zero disables the limit.
	Timeout time.Duration

	// Tokens supplies the bearer token of authorised calls.
	Tokens oauth2.TokenSource

	// Transport is the base round tripper. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper

	Logger *log.Logger
}

// Client talks to the taskpad HTTP API.
type Client struct {
	baseURL string
	public  *http.Client
	authed  *http.Client
	logger  *log.Logger
}

// New creates a client. Authorised calls fail with ErrNoToken when
// opts.Tokens has nothing to offer.
func New(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = noTokens{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		public:  &http.Client{Transport: base, Timeout: opts.Timeout},
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: base},
			Timeout:   opts.Timeout,
		},
		logger: logger,
	}
}

type noTokens struct{}

func (noTokens) Token() (*oauth2.Token, error) { return nil, ErrNoToken }

// send performs one JSON request and decodes the body into out. The HTTP
// status is returned when a response was received.
func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Printf("%s %s", method, path)
	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return 0, ErrNoToken
		}
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// request sends an enveloped call. A body without a statusCode takes the
// HTTP status.
func request[T any](ctx context.Context, c *Client, hc *http.Client, method, path string, body any) Response[T] {
	var resp Response[T]
	status, err := c.send(ctx, hc, method, path, body, &resp)
	if err != nil {
		c.logger.Printf("%s %s: %v", method, path, err)
		return Response[T]{StatusCode: status, Message: err.Error()}
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = status
	}
	return resp
}

// Get performs an authorised GET.
func Get[T any](ctx context.Context, c *Client, path string) Response[T] {
	return request[T](ctx, c, c.authed, http.MethodGet, path, nil)
}

// Post performs an authorised POST.
func Post[T any](ctx context.Context, c *Client, path string, body any) Response[T] {
	return request[T](ctx, c, c.authed, http.MethodPost, path, body)
}

// Put performs an authorised PUT.
func Put[T any](ctx context.Context, c *Client, path string, body any) Response[T] {
	return request[T](ctx, c, c.authed, http.MethodPut, path, body)
}

// Delete performs an authorised DELETE.
func Delete[T any](ctx context.Context, c *Client, path string) Response[T] {
	return request[T](ctx, c, c.authed, http.MethodDelete, path, nil)
}

// PostPublic performs a POST without an Authorization header.
func PostPublic[T any](ctx context.Context, c *Client, path string, body any) Response[T] {
	return request[T](ctx, c, c.public, http.MethodPost, path, body)
}

// GetPublic performs a GET without an Authorization header.
func GetPublic[T any](ctx context.Context, c *Client, path string) Response[T] {
	return request[T](ctx, c, c.public, http.MethodGet, path, nil)
}
