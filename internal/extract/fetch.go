package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent      = "stocking-events/1.0 (github.com/troutline/stocking-events)"
	DefaultTimeout = 30 * time.Second
)

// Fetcher retrieves raw report documents from agency websites.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given request timeout. A zero
// timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Get fetches the document at url and returns its body as text. Any
// non-2xx response is a transport error.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	return string(body), nil
}
