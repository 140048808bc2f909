package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultGatewayURL is the Expo push gateway the mobile client
	// registers its tokens with.
	DefaultGatewayURL = "https://exp.host/--/api/v2/push/send"

	defaultPushTimeout = 10 * time.Second
)

// Sender hands a batch of messages to a push transport. It returns the raw
// transport response body for observability alongside any hard failure.
type Sender interface {
	Send(ctx context.Context, msgs []*Message) (string, error)
}

// PushClient delivers message batches to an HTTP push gateway in a single
// batched call. Delivery is best-effort fire-and-forget: a non-2xx response
// fails the whole batch and no retry is attempted here.
type PushClient struct {
	url        string
	httpClient *http.Client
}

// NewPushClient creates a PushClient for the given gateway URL. Empty url
// falls back to DefaultGatewayURL; a non-positive timeout falls back to a
// sensible default.
func NewPushClient(url string, timeout time.Duration) *PushClient {
	if url == "" {
		url = DefaultGatewayURL
	}
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &PushClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts the whole batch as one JSON array and returns the gateway's
// raw response body.
func (c *PushClient) Send(ctx context.Context, msgs []*Message) (string, error) {
	if len(msgs) == 0 {
		return "", nil
	}

	payload, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("marshaling messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending push batch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return string(body), fmt.Errorf("push gateway error (status %d): %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}
