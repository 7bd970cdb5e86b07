// Package fetch performs the single outbound read an extension command is
// allowed per invocation.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultUserAgent   = "extkit"
	DefaultMaxBodySize = 16 << 20
)

var (
	// ErrNotFound is returned when the collaborator answers 404.
	ErrNotFound = errors.New("not found")
	// ErrReadLimit is returned by a fetcher guarded with Once on any read
	// after the first.
	ErrReadLimit = errors.New("outbound read limit reached: only one fetch is allowed per invocation")
	// ErrBodyTooLarge is returned when a response body exceeds the size limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Fetcher performs a GET on url and returns the response body of a
// successful response.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Get(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// GetJSON reads url through f and decodes the body into v.
func GetJSON(ctx context.Context, f Fetcher, url string, v any) error {
	body, err := f.Get(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}

// StatusError is returned for non-success statuses other than 404.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

type Options struct {
	// HTTPClient defaults to a client with no timeout of its own; Timeout
	// bounds each request instead.
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	// MaxBodySize bounds the bytes read from a response body.
	MaxBodySize int64
}

// Client is the net/http backed Fetcher.
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

var _ Fetcher = &Client{}

func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:  opts.HTTPClient,
		timeout:     opts.Timeout,
		userAgent:   opts.UserAgent,
		maxBodySize: opts.MaxBodySize,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.maxBodySize <= 0 {
		c.maxBodySize = DefaultMaxBodySize
	}
	return c
}

func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make http request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("GET %s: %w", url, ErrNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &StatusError{URL: url, Status: resp.Status, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrBodyTooLarge, c.maxBodySize)
	}

	return body, nil
}

// Once wraps f so that only the first Get call reaches it.
func Once(f Fetcher) Fetcher {
	var used atomic.Bool
	return FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		if !used.CompareAndSwap(false, true) {
			return nil, ErrReadLimit
		}
		return f.Get(ctx, url)
	})
}
