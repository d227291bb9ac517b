package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageBytes bounds a downloaded cover.
const maxImageBytes = 20 << 20

// ImageFetcher downloads cover art.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher fetches images over HTTP.
type HTTPImageFetcher struct {
	Client *http.Client
}

// NewHTTPImageFetcher creates an HTTPImageFetcher with a request timeout.
func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	return &HTTPImageFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch implements ImageFetcher.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The status alone is classified; the URL may contain digits.
		status := mapError(fmt.Errorf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		return nil, fmt.Errorf("GET %s: %w", url, status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", url, maxImageBytes)
	}
	return data, nil
}
