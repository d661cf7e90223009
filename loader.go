package easel

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// ResourceLoader resolves the external references of a scene: image sources
// and dataless path sources.
type ResourceLoader interface {
	// Fetch returns the raw bytes behind src.
	Fetch(ctx context.Context, src string) ([]byte, error)
	// LoadImage fetches and decodes the image behind src.
	LoadImage(ctx context.Context, src string) (image.Image, error)
}

// DefaultLoader reads data URLs, local files and http(s) URLs. PNG, JPEG,
// GIF and WebP images are decoded.
type DefaultLoader struct {
	// BaseDir resolves relative file paths. Empty uses the working directory.
	BaseDir string
	// Client fetches http(s) sources. Nil uses http.DefaultClient.
	Client *http.Client
	// MaxBytes caps the size of a fetched resource. Zero means 32 MiB.
	MaxBytes int64
	// DisableRemote refuses http(s) sources.
	DisableRemote bool
	// DisableFiles refuses file sources.
	DisableFiles bool
}

const defaultMaxResourceBytes = 32 << 20

func (l DefaultLoader) maxBytes() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return defaultMaxResourceBytes
}

// Fetch implements ResourceLoader.
func (l DefaultLoader) Fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		if l.DisableRemote {
			return nil, fmt.Errorf("fetch %s: remote sources disabled", src)
		}
		return l.fetchHTTP(ctx, src)
	}
	if l.DisableFiles {
		return nil, fmt.Errorf("fetch %s: file sources disabled", src)
	}
	path := strings.TrimPrefix(src, "file://")
	if l.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer f.Close()
	return readLimited(f, l.maxBytes())
}

func (l DefaultLoader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", src, resp.Status)
	}
	return readLimited(resp.Body, l.maxBytes())
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("resource exceeds %d bytes", limit)
	}
	return data, nil
}

// LoadImage implements ResourceLoader.
func (l DefaultLoader) LoadImage(ctx context.Context, src string) (image.Image, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", truncateSrc(src), err)
	}
	return img, nil
}

// decodeDataURL returns the payload of a data: URL.
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data url", ErrInvalidScene)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: data url: %v", ErrInvalidScene, err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: data url: %v", ErrInvalidScene, err)
	}
	return []byte(s), nil
}

func truncateSrc(src string) string {
	if len(src) > 64 {
		return src[:64] + "..."
	}
	return src
}
