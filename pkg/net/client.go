package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	maxIdleConns         = 10
	idleTimeoutInSeconds = 60

	// DefaultTimeout is applied to every API call unless configured otherwise.
	DefaultTimeout = 10 * time.Second

	// DefaultBaseURL is where the backend listens in development.
	DefaultBaseURL = "http://localhost:3000"

	clientAgent     = "motorista-cli"
	requestIDHeader = "X-Request-ID"
)

var (
	reqTransport = &http.Transport{
		Proxy:              http.ProxyFromEnvironment,
		MaxIdleConns:       maxIdleConns,
		IdleConnTimeout:    idleTimeoutInSeconds * time.Second,
		DisableCompression: true,
		DisableKeepAlives:  false,
	}

	errBaseURLRequired = errors.New("base URL is required")
)

// Config holds the settings shared by every API call.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Token     string
	UserAgent string
}

// Client talks to the motorista backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	agent   string
}

// NewClient creates an API client for the given config. When a token is set
// every request carries it as a bearer token.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errBaseURLRequired
	}

	u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc, err := GetHTTPClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	if cfg.Token != "" {
		hc = GetOAuthClient(ctx, cfg.Token, hc)
	}

	agent := cfg.UserAgent
	if agent == "" {
		agent = clientAgent
	}

	return &Client{
		baseURL: u,
		http:    hc,
		agent:   agent,
	}, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetHTTPClient returns a client on the shared transport with a cookie jar.
// The timeout bounds the whole call, headers and body included.
func GetHTTPClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: reqTransport,
		Jar:       jar,
	}, nil
}

// GetOAuthClient wraps base so that every request carries the token.
func GetOAuthClient(ctx context.Context, token string, base *http.Client) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: token,
		},
	)

	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	tc := oauth2.NewClient(ctx, ts)

	if base != nil {
		tc.Timeout = base.Timeout
		tc.Jar = base.Jar
	}
	return tc
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL.JoinPath(escaped...).String()
}
