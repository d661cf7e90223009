package easel

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestZoomToPointKeepsPoint(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		zoom float64
	}{
		{"origin", Pt(0, 0), 2},
		{"centre", Pt(100, 100), 3},
		{"corner", Pt(200, 50), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStaticCanvas(200, 200, StaticCanvasOptions{})
			defer c.Dispose()
			c.RelativePan(Pt(13, -7))
			before := c.SurfaceToScene(tt.p)
			c.ZoomToPoint(tt.p, tt.zoom)
			assertNear(t, "Zoom", c.Zoom(), tt.zoom)
			assertPoint(t, "scene point", c.SurfaceToScene(tt.p), before)
		})
	}
}

func TestZoomToPointIgnoresNonPositive(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	c.ZoomToPoint(Pt(10, 10), 0)
	if c.ViewportTransform() != Identity {
		t.Errorf("viewport = %v, want identity", c.ViewportTransform())
	}
}

func TestPan(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	c.AbsolutePan(Pt(30, 40))
	assertPoint(t, "origin after AbsolutePan", c.SurfaceToScene(Pt(0, 0)), Pt(30, 40))
	c.RelativePan(Pt(10, 10))
	assertPoint(t, "origin after RelativePan", c.SurfaceToScene(Pt(0, 0)), Pt(20, 30))
}

func TestSceneSurfaceRoundTrip(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	c.SetViewportTransform(Matrix{1.5, 0, 0, 1.5, -20, 35})
	p := Pt(12, 34)
	assertPoint(t, "round trip", c.SurfaceToScene(c.SceneToSurface(p)), p)
}

func TestViewportCoords(t *testing.T) {
	c := NewStaticCanvas(100, 50, StaticCanvasOptions{})
	defer c.Dispose()
	c.SetViewportTransform(Matrix{2, 0, 0, 2, -20, 0})
	got := c.ViewportCoords()
	assertPoint(t, "tl", got[0], Pt(10, 0))
	assertPoint(t, "br", got[2], Pt(60, 25))
	assertPoint(t, "VpCenter", c.VpCenter(), Pt(35, 12.5))
}

func TestViewportCenterObject(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	o := NewRect(0, 0, 10, 10)
	c.Add(o)
	c.SetViewportTransform(Matrix{2, 0, 0, 2, 0, 0})
	c.ViewportCenterObject(o)
	assertPoint(t, "centre", o.GetCenterPoint(), Pt(25, 25))
	c.CenterObject(o)
	assertPoint(t, "centre ignoring viewport", o.GetCenterPoint(), Pt(50, 50))
}

func TestPanBoundsClamp(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	c.SetPanBounds(Rect{X: 0, Y: 0, Width: 400, Height: 300})

	c.AbsolutePan(Pt(-50, -50))
	assertPoint(t, "clamped low", c.SurfaceToScene(Pt(0, 0)), Pt(0, 0))

	c.AbsolutePan(Pt(1000, 1000))
	assertPoint(t, "clamped high", c.SurfaceToScene(Pt(0, 0)), Pt(300, 200))

	// zoomed out past the bounds the view is centred on them
	c.SetZoom(0.2)
	assertPoint(t, "centred", c.VpCenter(), Pt(200, 150))

	c.ClearPanBounds()
	c.SetViewportTransform(Matrix{1, 0, 0, 1, 500, 500})
	assertPoint(t, "unclamped", c.SurfaceToScene(Pt(0, 0)), Pt(-500, -500))
}

func TestViewportUpdatesObjectCoords(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	o := NewRect(10, 10, 10, 10)
	c.Add(o)
	c.SetViewportTransform(Matrix{1, 0, 0, 1, 50, 0})
	// a press at the panned position hits the object
	click(c, 65, 15, 0)
	if c.ActiveObject() != o {
		t.Error("click at the panned position missed the object")
	}
}

func TestAnimateViewport(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	to := Matrix{2, 0, 0, 2, -50, -50}
	tok := c.AnimateViewport(to, 1, ease.Linear)

	c.Frames().Tick(0.5)
	assertNear(t, "zoom halfway", c.Zoom(), 1.5)
	c.Frames().Tick(0.5)
	if c.ViewportTransform() != to {
		t.Errorf("viewport = %v, want %v", c.ViewportTransform(), to)
	}
	if !tok.Stopped() {
		t.Error("token not stopped after the animation finished")
	}
}

func TestAnimateViewportStop(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	tok := c.AnimateZoomToPoint(Pt(50, 50), 4, 1, nil)
	c.Frames().Tick(0.25)
	tok.Stop()
	z := c.Zoom()
	c.Frames().Tick(0.5)
	if c.Zoom() != z {
		t.Errorf("zoom changed to %v after Stop, want %v", c.Zoom(), z)
	}
	if z <= 1 || z >= 4 {
		t.Errorf("zoom = %v, want between 1 and 4", z)
	}
}
