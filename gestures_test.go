package easel

import "testing"

func pinchCanvas(t *testing.T) *Canvas {
	c := NewCanvas(300, 300, CanvasOptions{
		StaticCanvasOptions: StaticCanvasOptions{ScreenshotDir: t.TempDir()},
		PinchGestures:       true,
	})
	t.Cleanup(func() { c.Dispose() })
	return c
}

func touch(id int, x, y float64) PointerEvent {
	return PointerEvent{X: x, Y: y, Touch: true, PointerID: id, Primary: id == 1}
}

func TestPinchScalesObject(t *testing.T) {
	c := pinchCanvas(t)
	o := NewRect(100, 100, 40, 40)
	c.Add(o)
	c.SetActiveObject(o, nil)
	center := o.GetCenterPoint()
	var scaling, gestures, modified int
	c.On("object:scaling", func(*Event) { scaling++ })
	c.On("touch:gesture", func(*Event) { gestures++ })
	c.On("object:modified", func(*Event) { modified++ })

	c.OnPointerDown(touch(1, 120, 120))
	if c.CurrentTransform() == nil {
		t.Fatal("first finger did not start a session")
	}
	c.OnPointerDown(touch(2, 160, 120))
	if !c.Gestures.Active() {
		t.Fatal("second finger did not start a pinch")
	}
	c.OnPointerMove(touch(2, 200, 120))

	assertNear(t, "ScaleX", o.ScaleX, 2)
	assertNear(t, "ScaleY", o.ScaleY, 2)
	assertPoint(t, "centre", o.GetCenterPoint(), center)
	assertNear(t, "Angle", o.Angle, 0)
	if scaling != 1 || gestures != 1 {
		t.Errorf("scaling, gesture events = %d, %d, want 1, 1", scaling, gestures)
	}

	c.OnPointerUp(touch(2, 200, 120))
	if c.Gestures.Active() {
		t.Error("pinch still active after a finger lifted")
	}
	c.OnPointerUp(touch(1, 120, 120))
	if modified != 1 {
		t.Errorf("object:modified fired %d times, want 1", modified)
	}
	if c.CurrentTransform() != nil {
		t.Error("session not finalized")
	}
}

func TestPinchRotatesObject(t *testing.T) {
	c := pinchCanvas(t)
	o := NewRect(100, 100, 40, 40)
	c.Add(o)
	c.SetActiveObject(o, nil)

	c.OnPointerDown(touch(1, 120, 120))
	c.OnPointerDown(touch(2, 160, 120))
	c.OnPointerMove(touch(2, 120, 160))
	assertNear(t, "Angle", o.Angle, 90)
	assertNear(t, "ScaleX", o.ScaleX, 1)

	c.Gestures.DisableRotation = true
	c.OnPointerMove(touch(2, 120, 80))
	if o.Angle != 90 {
		t.Errorf("Angle = %v with rotation disabled, want 90", o.Angle)
	}
}

func TestPinchZoomsViewport(t *testing.T) {
	c := pinchCanvas(t)
	c.Gestures.MaxZoom = 3

	c.OnPointerDown(touch(1, 100, 100))
	c.OnPointerDown(touch(2, 120, 100))
	c.OnPointerMove(touch(2, 140, 100))
	assertNear(t, "Zoom", c.Zoom(), 2)

	c.OnPointerMove(touch(2, 300, 100))
	assertNear(t, "Zoom clamped", c.Zoom(), 3)
}

func TestPinchIgnoresMouse(t *testing.T) {
	c := pinchCanvas(t)
	o := NewRect(0, 0, 50, 50)
	c.Add(o)
	c.OnPointerDown(PointerEvent{X: 10, Y: 10, Primary: true})
	c.OnPointerDown(PointerEvent{X: 30, Y: 10, Primary: true, PointerID: 2})
	if c.Gestures.Active() {
		t.Error("mouse input started a pinch")
	}
}
