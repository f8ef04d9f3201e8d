// Package imagecache keeps local copies of downloaded avatars so
// repeated extractions of a remote image hit disk, not the network.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	httputil "github.com/jmylchreest/avatint/internal/util/http"
)

// Options configures avatar download caching.
type Options struct {
	// Dir overrides the cache location. Empty means the user cache
	// directory under avatint/avatars.
	Dir string

	// Refresh forces a refetch even when a cached copy exists.
	Refresh bool
}

// DefaultDir returns the default avatar cache directory.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "avatint", "avatars"), nil
}

// Path returns the local cache path a URL maps to, without touching the
// network. The filename is a hash of the full URL plus the original
// extension, so distinct query strings stay distinct.
func Path(rawURL string, opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, cachedFilename(rawURL)), nil
}

// DownloadAndCache fetches a remote avatar into the cache and returns
// the local path. An existing cached copy is reused unless Refresh is
// set. The file lands atomically; readers never see a partial download.
func DownloadAndCache(ctx context.Context, rawURL string, opts Options) (string, error) {
	cachedPath, err := Path(rawURL, opts)
	if err != nil {
		return "", err
	}

	if !opts.Refresh {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(cachedPath), 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := httputil.FetchImage(ctx, rawURL, httputil.FetchOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to download avatar: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(cachedPath), ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close cached avatar: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachedPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to place cached avatar: %w", err)
	}

	return cachedPath, nil
}

// cachedFilename derives a deterministic filename from a URL: a SHA-256
// prefix of the whole URL plus the path's extension when it has a sane
// one, defaulting to .img for extension-less CDN URLs.
func cachedFilename(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))

	ext := ".img"
	if parsed, err := url.Parse(rawURL); err == nil {
		if e := filepath.Ext(parsed.Path); e != "" && len(e) <= 5 {
			ext = e
		}
	}

	return fmt.Sprintf("%x%s", hash[:16], ext)
}
