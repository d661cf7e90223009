package easel

import (
	"fmt"
	"image"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const epsilon = 1e-9

var approx = cmpopts.EquateApprox(0, 1e-6)

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertPoint(t *testing.T, name string, got, want Point) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
	}
}

// assertObjects compares object slices by identity.
func assertObjects(t *testing.T, name string, got, want []*Object) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("%s = %v, want %v", name, ids(got), ids(want))
	}
}

func ids(objs []*Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		if o == nil {
			out[i] = "<nil>"
			continue
		}
		out[i] = fmt.Sprintf("%s#%d", o.Type(), o.ID)
	}
	return out
}

// newTestCanvas returns an interactive canvas whose renders only happen
// when the test ticks its frame queue.
func newTestCanvas(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c := NewCanvas(w, h, CanvasOptions{
		StaticCanvasOptions: StaticCanvasOptions{ScreenshotDir: t.TempDir()},
	})
	t.Cleanup(func() { c.Dispose() })
	return c
}

// recordEvents subscribes to names on c and returns the fired sequence.
func recordEvents(c *Canvas, names ...string) *[]string {
	var got []string
	for _, n := range names {
		c.On(n, func(e *Event) { got = append(got, e.Name) })
	}
	return &got
}

func press(c *Canvas, x, y float64, mods KeyModifiers) {
	c.OnPointerDown(PointerEvent{X: x, Y: y, Modifiers: mods, Primary: true})
}

func move(c *Canvas, x, y float64, mods KeyModifiers) {
	c.OnPointerMove(PointerEvent{X: x, Y: y, Modifiers: mods, Primary: true})
}

func release(c *Canvas, x, y float64, mods KeyModifiers) {
	c.OnPointerUp(PointerEvent{X: x, Y: y, Modifiers: mods, Primary: true})
}

func click(c *Canvas, x, y float64, mods KeyModifiers) {
	press(c, x, y, mods)
	release(c, x, y, mods)
}

// rgbaAt returns the straight-alpha 8-bit colour of img at (x, y).
func rgbaAt(img image.Image, x, y int) [4]uint8 {
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return [4]uint8{}
	}
	// un-premultiply
	return [4]uint8{
		uint8(r * 0xff / a),
		uint8(g * 0xff / a),
		uint8(b * 0xff / a),
		uint8(a >> 8),
	}
}

func isRed(px [4]uint8) bool {
	return px[0] > 240 && px[1] < 15 && px[2] < 15 && px[3] > 240
}
