// Package apiclient talks to the store API: account registration, login,
// profile updates and product pages. Every call is a single request with no retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/knpstore/sport-store/internal/apierror"
	"github.com/knpstore/sport-store/internal/product"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second

	// InvalidCredentialsMessage is used when a rejected login carries no detail.
	InvalidCredentialsMessage = "Invalid credentials"

	maxBodySize = 1 << 20
)

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken sets the source of the bearer token attached to authenticated calls.
func WithToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &out, false)
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out, false)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail.IsZero() {
		apiErr.Detail.Message = InvalidCredentialsMessage
	}
	return out, err
}

// UpdateProfile sends the profile fields collected after sign-up. It needs a token.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPatch, "/auth/update-profile", req, &out, true)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context, page, limit int) (product.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out product.Page
	err := c.do(ctx, http.MethodGet, "/products?"+q.Encode(), nil, &out, false)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode, Raw: raw}
		var envelope apierror.Body
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Detail = envelope.Detail
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
