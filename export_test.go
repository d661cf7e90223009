package easel

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"
)

func TestToImageMultiplier(t *testing.T) {
	c, _ := redSquareCanvas(t)
	img, err := c.ToImage(ImageOptions{Multiplier: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 100 {
		t.Fatalf("width = %d, want 100", got)
	}
	if px := rgbaAt(img, 40, 40); !isRed(px) {
		t.Errorf("pixel (40,40) = %v, want red", px)
	}
	if c.Zoom() != 1 || c.Width() != 50 {
		t.Errorf("export leaked state: zoom %v, width %d", c.Zoom(), c.Width())
	}
}

func TestToImageCrop(t *testing.T) {
	c, _ := redSquareCanvas(t)
	img, err := c.ToImage(ImageOptions{Left: 10, Top: 10, Width: 20, Height: 20})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("size = %dx%d, want 20x20", b.Dx(), b.Dy())
	}
	for _, p := range [][2]int{{0, 0}, {19, 19}, {10, 10}} {
		if px := rgbaAt(img, p[0], p[1]); !isRed(px) {
			t.Errorf("pixel %v = %v, want red", p, px)
		}
	}
}

func TestToImageFilter(t *testing.T) {
	c, red := redSquareCanvas(t)
	img, err := c.ToImage(ImageOptions{Filter: func(o *Object) bool { return o != red }})
	if err != nil {
		t.Fatal(err)
	}
	if px := rgbaAt(img, 20, 20); px[3] != 0 {
		t.Errorf("filtered object painted: %v", px)
	}
}

func TestExportSkipsControls(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	o := NewRect(20, 20, 40, 40)
	o.Fill = Color("red")
	c.Add(o)
	c.SetActiveObject(o, nil)
	img, err := c.ToImage(ImageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// the tl control would be painted around (20,20) outside the fill
	if px := rgbaAt(img, 15, 15); px[3] != 0 {
		t.Errorf("control painted into export: %v", px)
	}
}

func TestWriteImageFormats(t *testing.T) {
	c, _ := redSquareCanvas(t)

	var buf bytes.Buffer
	if err := c.WriteImage(&buf, ImageOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("png export does not decode: %v", err)
	}

	data, err := c.ToBlob(ImageOptions{Format: "jpeg", Quality: 0.8})
	if err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg export does not decode: %v", err)
	}
	r, g, b, _ := img.At(20, 20).RGBA()
	if r>>8 < 200 || g>>8 > 60 || b>>8 > 60 {
		t.Errorf("jpeg pixel (20,20) = %d,%d,%d, want roughly red", r>>8, g>>8, b>>8)
	}
}

func TestToDataURL(t *testing.T) {
	c, _ := redSquareCanvas(t)
	url, err := c.ToDataURL(ImageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("url = %.30q, want %q prefix", url, prefix)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("data url payload does not decode: %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	c, _ := redSquareCanvas(t)
	if _, err := c.ToBlob(ImageOptions{Format: "gif"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ToBlob(gif) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := c.ToDataURL(ImageOptions{Format: "webp"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ToDataURL(webp) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExportDisposed(t *testing.T) {
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{})
	c.Dispose()
	if _, err := c.ToImage(ImageOptions{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("ToImage() error = %v, want ErrDisposed", err)
	}
	if _, err := c.ToSVG(SVGOptions{}, nil); !errors.Is(err, ErrDisposed) {
		t.Errorf("ToSVG() error = %v, want ErrDisposed", err)
	}
}

// wellFormed reports the first XML syntax error in s.
func wellFormed(s string) error {
	d := xml.NewDecoder(strings.NewReader(s))
	d.Strict = false
	for {
		_, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func TestToSVG(t *testing.T) {
	c, _ := redSquareCanvas(t)
	c.Add(NewCircle(30, 5, 5))
	svg, err := c.ToSVG(SVGOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<?xml", "<svg", "<rect", "<circle", `width="50"`, `viewBox="0 0 50 50"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if err := wellFormed(svg); err != nil {
		t.Errorf("svg is not well formed: %v", err)
	}
}

func TestToSVGOptions(t *testing.T) {
	c, _ := redSquareCanvas(t)
	c.SetViewportTransform(Matrix{2, 0, 0, 2, 0, 0})
	var calls int
	svg, err := c.ToSVG(SVGOptions{SuppressPreamble: true}, func(markup string) string {
		calls++
		return "<!-- object -->" + markup
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(svg, "<?xml") {
		t.Error("preamble written despite SuppressPreamble")
	}
	if !strings.Contains(svg, `viewBox="0 0 25 25"`) {
		t.Errorf("viewBox does not reflect the zoom:\n%s", svg)
	}
	if calls != 1 || !strings.Contains(svg, "<!-- object -->") {
		t.Errorf("reviver called %d times, want 1", calls)
	}
}
