package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 10 * 1024 * 1024

// ErrMissingContents is returned when the relay envelope has no contents field.
var ErrMissingContents = errors.New("relay: response has no contents field")

// ErrBodyTooLarge is returned when a response exceeds maxBodySize.
var ErrBodyTooLarge = errors.New("relay: response body too large")

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// Options configures the HTTP client shared by both fetchers.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

func newClient(opts Options) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}

// envelope is the JSON document returned by the relay.
type envelope struct {
	Contents *string `json:"contents"`
}

// Relay fetches pages through a CORS relay that answers with a JSON envelope
// whose contents field holds the page HTML.
type Relay struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

// NewRelay creates a Relay for the given endpoint, e.g.
// https://api.allorigins.win/get.
func NewRelay(endpoint string, opts Options) *Relay {
	return &Relay{
		endpoint:  endpoint,
		client:    newClient(opts),
		userAgent: opts.UserAgent,
	}
}

// Fetch asks the relay for target and returns the HTML it carries.
func (r *Relay) Fetch(ctx context.Context, target string) (string, error) {
	reqURL, err := r.requestURL(target)
	if err != nil {
		return "", err
	}

	body, err := get(ctx, r.client, reqURL, r.userAgent, "application/json")
	if err != nil {
		return "", err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("relay: decode envelope: %w", err)
	}
	if env.Contents == nil {
		return "", ErrMissingContents
	}
	return *env.Contents, nil
}

func (r *Relay) requestURL(target string) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("relay: bad endpoint %q: %w", r.endpoint, err)
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Direct fetches pages with a plain GET, for callers not bound by
// cross-origin rules.
type Direct struct {
	client    *http.Client
	userAgent string
}

// NewDirect creates a Direct fetcher.
func NewDirect(opts Options) *Direct {
	return &Direct{client: newClient(opts), userAgent: opts.UserAgent}
}

// Fetch requests target and returns its body as text.
func (d *Direct) Fetch(ctx context.Context, target string) (string, error) {
	body, err := get(ctx, d.client, target, d.userAgent, "text/html,application/xhtml+xml")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func get(ctx context.Context, client *http.Client, reqURL, userAgent, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("relay: build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay: HTTP %d for %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("relay: read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, maxBodySize, reqURL)
	}
	return body, nil
}
