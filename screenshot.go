package easel

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

// Screenshot writes the current surfaces to a timestamped PNG under the
// screenshot directory and returns its path. The top surface of an
// interactive canvas is composited over the scene.
func (c *StaticCanvas) Screenshot(label string) (string, error) {
	if c.disposed {
		return "", ErrDisposed
	}
	if err := os.MkdirAll(c.screenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: mkdir %s: %w", c.screenshotDir, err)
	}
	img := c.Snapshot()
	stamp := time.Now().Format("20060102_150405.000")
	path := filepath.Join(c.screenshotDir, fmt.Sprintf("%s_%s.png", strings.ReplaceAll(stamp, ".", "_"), sanitizeLabel(label)))
	if err := writePNG(path, img); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	logger().Debug("screenshot written", "path", path)
	return path, nil
}

// Snapshot copies the painted surfaces into a straight-alpha image.
func (c *StaticCanvas) Snapshot() *image.NRGBA {
	lower := c.lower.Image()
	b := lower.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), lower, b.Min, draw.Src)
	if c.interactive != nil && c.interactive.topDirty {
		top := c.interactive.top.Image()
		draw.Draw(img, img.Bounds(), top, top.Bounds().Min, draw.Over)
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
