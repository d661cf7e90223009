package easel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"
	"slices"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// ImageOptions controls raster export.
type ImageOptions struct {
	// Format is "png" (default) or "jpeg".
	Format string
	// Quality is the JPEG quality in (0, 1]. Zero means 0.92.
	Quality float64
	// Multiplier scales the output resolution. Zero means 1.
	Multiplier float64
	// Left, Top, Width and Height crop the output, in surface pixels. A zero
	// Width or Height means the canvas size.
	Left, Top     float64
	Width, Height float64
	// EnableRetinaScaling multiplies the output by the retina ratio.
	EnableRetinaScaling bool
	// Filter selects the objects to paint. Nil paints all.
	Filter func(*Object) bool
}

func (opts ImageOptions) mimeType() (string, error) {
	switch opts.Format {
	case "", "png":
		return "image/png", nil
	case "jpeg", "jpg":
		return "image/jpeg", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
}

// ToImage paints the scene into a new straight-alpha image. The live
// viewport and size are restored afterwards.
func (c *StaticCanvas) ToImage(opts ImageOptions) (image.Image, error) {
	dc, err := c.toContext(opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	src := dc.Image()
	img := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img, nil
}

// WriteImage encodes the exported scene to w.
func (c *StaticCanvas) WriteImage(w io.Writer, opts ImageOptions) error {
	if _, err := opts.mimeType(); err != nil {
		return err
	}
	dc, err := c.toContext(opts)
	if err != nil {
		return err
	}
	defer dc.Close()
	if opts.Format == "jpeg" || opts.Format == "jpg" {
		q := opts.Quality
		if q <= 0 {
			q = 0.92
		}
		return dc.EncodeJPEG(w, int(math.Round(clamp01(q)*100)))
	}
	return dc.EncodePNG(w)
}

// ToBlob returns the encoded exported scene.
func (c *StaticCanvas) ToBlob(opts ImageOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteImage(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToDataURL returns the exported scene as a base64 data URL.
func (c *StaticCanvas) ToDataURL(opts ImageOptions) (string, error) {
	mime, err := opts.mimeType()
	if err != nil {
		return "", err
	}
	data, err := c.ToBlob(opts)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// toContext paints the scene at the requested multiplier and crop into a
// throwaway context.
func (c *StaticCanvas) toContext(opts ImageOptions) (*gg.Context, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	m := opts.Multiplier
	if m <= 0 {
		m = 1
	}
	if opts.EnableRetinaScaling {
		m *= c.retina
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = float64(c.width)
	}
	if h <= 0 {
		h = float64(c.height)
	}
	sw := max(int(math.Ceil(w*m)), 1)
	sh := max(int(math.Ceil(h*m)), 1)

	objs := c.objects
	if opts.Filter != nil {
		objs = slices.DeleteFunc(slices.Clone(objs), func(o *Object) bool { return !opts.Filter(o) })
	}

	vp := c.vpt
	origW, origH, origVpt, origRetina := c.width, c.height, c.vpt, c.EnableRetinaScaling
	defer func() {
		c.width, c.height, c.vpt, c.EnableRetinaScaling = origW, origH, origVpt, origRetina
		c.vptCoords.valid = false
	}()
	c.EnableRetinaScaling = false
	c.vpt = Matrix{vp[0] * m, vp[1] * m, vp[2] * m, vp[3] * m, (vp[4] - opts.Left) * m, (vp[5] - opts.Top) * m}
	c.width, c.height = sw, sh

	dc := gg.NewContext(sw, sh)
	c.renderCanvas(dc, objs, false)
	return dc, nil
}
