package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/healthboard/internal/domain/status"
)

const maxPayloadBytes = 1 << 20

// Fetcher retrieves the current status map.
type Fetcher interface {
	Fetch(ctx context.Context) (status.Map, error)
}

// HTTPFetcher GETs a /api/health style endpoint.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher returns a fetcher for url. A nil client uses http.DefaultClient.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: url, client: client}
}

// URL returns the endpoint being polled.
func (f *HTTPFetcher) URL() string { return f.url }

// Fetch issues one GET and decodes the body, keeping the server's key order.
func (f *HTTPFetcher) Fetch(ctx context.Context) (status.Map, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return status.Map{}, fmt.Errorf("%w: %w: %w", ErrPollFailed, ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return status.Map{}, fmt.Errorf("%w: %w: %w", ErrPollFailed, ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return status.Map{}, fmt.Errorf("%w: %w: %s", ErrPollFailed, ErrHTTPStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return status.Map{}, fmt.Errorf("%w: %w: %w", ErrPollFailed, ErrTransport, err)
	}
	if len(body) > maxPayloadBytes {
		return status.Map{}, fmt.Errorf("%w: %w: over %d bytes", ErrPollFailed, ErrPayloadTooLarge, maxPayloadBytes)
	}

	var m status.Map
	if err := json.Unmarshal(body, &m); err != nil {
		return status.Map{}, fmt.Errorf("%w: %w: %w", ErrPollFailed, ErrDecode, err)
	}
	return m, nil
}
