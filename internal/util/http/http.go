// Package http fetches remote avatar images.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/jmylchreest/avatint/internal/security"
	"github.com/jmylchreest/avatint/internal/version"
)

const (
	// DefaultTimeout bounds a single avatar fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBytes caps the response body size. Avatars are small;
	// anything past this is an error, not an image.
	DefaultMaxBytes int64 = 16 << 20
)

// FetchOptions configures an avatar fetch.
type FetchOptions struct {
	// Timeout bounds the whole request. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxBytes caps how much of the response body is read.
	// Zero means DefaultMaxBytes.
	MaxBytes int64
}

// FetchImage downloads an avatar and returns its raw bytes. The read is
// size-capped, and a response that declares a non-image content type is
// rejected here rather than surfacing as a decode error downstream.
func FetchImage(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("avatint/%s", version.Version))
	req.Header.Set("Accept", "image/*")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("avatar not found: %s", url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %q fetching %s", resp.Status, url)
	}

	if ct := resp.Header.Get("Content-Type"); !imageContentType(ct) {
		return nil, fmt.Errorf("not an image: content type %q from %s", ct, url)
	}

	data, err := io.ReadAll(security.NewLimitedReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// imageContentType reports whether a Content-Type header is acceptable
// for an avatar. An absent header is tolerated; some CDNs omit it.
func imageContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/octet-stream"
}
