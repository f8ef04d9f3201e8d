package image

import (
	"context"
	"crypto/sha256"
	"fmt"
	"image"

	"github.com/jmylchreest/avatint/internal/security"
	"github.com/jmylchreest/avatint/internal/util/imagecache"
)

// Source is the capability the extraction pipeline depends on: a stable
// identity for caching and a way to obtain the decoded raster. Loading
// or decoding failure is an explicit error, never assumed away.
type Source interface {
	// Identity returns a stable key for this image. Two sources with
	// the same identity are assumed to hold the same pixels.
	Identity() string

	// Load decodes the image. Blocking work (network fetch, disk read)
	// honours the context deadline.
	Load(ctx context.Context) (image.Image, error)
}

// FileSource loads an avatar from the local filesystem. The path is the
// identity.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed image source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Identity returns the file path.
func (s *FileSource) Identity() string { return s.Path }

// Load opens and decodes the image file.
func (s *FileSource) Load(_ context.Context) (image.Image, error) {
	return DecodeFile(s.Path)
}

// URLSource loads an avatar over HTTPS. The URL is the identity.
// Downloads go through the on-disk image cache so repeated extractions
// of the same remote avatar fetch once.
type URLSource struct {
	URL string

	// CacheDir overrides the download cache directory. Empty uses the
	// default user cache location.
	CacheDir string
}

// NewURLSource creates a URL-backed image source.
func NewURLSource(url string) *URLSource {
	return &URLSource{URL: url}
}

// Identity returns the source URL.
func (s *URLSource) Identity() string { return s.URL }

// Load validates the URL, downloads through the image cache and decodes
// the result.
func (s *URLSource) Load(ctx context.Context) (image.Image, error) {
	if err := security.ValidateHTTPURL(s.URL); err != nil {
		return nil, fmt.Errorf("refusing to fetch avatar: %w", err)
	}

	cachedPath, err := imagecache.DownloadAndCache(ctx, s.URL, imagecache.Options{
		Dir: s.CacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch avatar: %w", err)
	}

	return DecodeFile(cachedPath)
}

// MemorySource loads an avatar from an in-memory byte blob, identified
// by a digest of its contents. Useful for callers that already hold the
// encoded image, and for tests.
type MemorySource struct {
	data     []byte
	identity string
}

// NewMemorySource creates a byte-backed image source. The identity is
// derived from a SHA-256 digest of the data.
func NewMemorySource(data []byte) *MemorySource {
	sum := sha256.Sum256(data)
	return &MemorySource{
		data:     data,
		identity: fmt.Sprintf("mem:%x", sum[:16]),
	}
}

// Identity returns the content digest.
func (s *MemorySource) Identity() string { return s.identity }

// Load decodes the held bytes.
func (s *MemorySource) Load(_ context.Context) (image.Image, error) {
	return DecodeBytes(s.data)
}

// FromPath builds a Source for a path that may be a local file or an
// HTTP(S) URL.
func FromPath(path string) Source {
	if IsURL(path) {
		return NewURLSource(path)
	}
	return NewFileSource(path)
}
