package easel

import (
	"math"
	"testing"
)

// selectedRect returns a 40×40 rect at (100,100) that is the active object.
func selectedRect(t *testing.T) (*Canvas, *Object) {
	t.Helper()
	c := newTestCanvas(t, 300, 300)
	o := NewRect(100, 100, 40, 40)
	c.Add(o)
	c.SetActiveObject(o, nil)
	return c, o
}

func TestCornerScaleKeepsOppositeCorner(t *testing.T) {
	c, o := selectedRect(t)
	var scaling int
	c.On("object:scaling", func(*Event) { scaling++ })

	press(c, 140, 140, 0)
	if tr := c.CurrentTransform(); tr == nil || tr.Corner != "br" {
		t.Fatalf("CurrentTransform() = %+v, want a br session", tr)
	}
	move(c, 160, 160, 0)
	move(c, 180, 180, 0)
	release(c, 180, 180, 0)

	assertNear(t, "ScaleX", o.ScaleX, 2)
	assertNear(t, "ScaleY", o.ScaleY, 2)
	assertPoint(t, "tl", o.GetCoords()[0], Pt(100, 100))
	if scaling != 2 {
		t.Errorf("object:scaling fired %d times, want 2", scaling)
	}
}

func TestCornerScaleUniformToggle(t *testing.T) {
	c, o := selectedRect(t)
	press(c, 140, 140, 0)
	move(c, 180, 140, ModShift)
	release(c, 180, 140, ModShift)
	assertNear(t, "ScaleX", o.ScaleX, 2)
	assertNear(t, "ScaleY", o.ScaleY, 1)
}

func TestScaleLocked(t *testing.T) {
	c, o := selectedRect(t)
	o.LockScalingX, o.LockScalingY = true, true
	var modified int
	c.On("object:modified", func(*Event) { modified++ })
	press(c, 140, 140, 0)
	move(c, 180, 180, 0)
	release(c, 180, 180, 0)
	if o.ScaleX != 1 || o.ScaleY != 1 {
		t.Errorf("scale = (%v, %v), want (1, 1)", o.ScaleX, o.ScaleY)
	}
	if modified != 0 {
		t.Errorf("object:modified fired %d times, want 0", modified)
	}
}

func TestRotateControl(t *testing.T) {
	c, o := selectedRect(t)
	// mtr sits 40px above the top edge
	press(c, 120, 60, 0)
	if tr := c.CurrentTransform(); tr == nil || tr.Action != ActionRotate {
		t.Fatalf("CurrentTransform() = %+v, want a rotate session", tr)
	}
	move(c, 160, 120, 0)
	release(c, 160, 120, 0)
	assertNear(t, "Angle", o.Angle, 90)
	assertPoint(t, "centre", o.GetRelativeCenterPoint(), Pt(120, 120))
}

func rotateSession(o *Object) *Transform {
	c := o.GetRelativeCenterPoint()
	return &Transform{
		Target:  o,
		Action:  ActionRotate,
		Corner:  "mtr",
		OriginX: OriginCenter,
		OriginY: OriginCenter,
		Ex:      c.X,
		Ey:      c.Y - 10,
		Theta:   degreesToRadians(o.Angle),
	}
}

func TestRotateLocked(t *testing.T) {
	o := NewRect(0, 0, 10, 10)
	o.LockRotation = true
	if RotationWithSnapping(nil, rotateSession(o), 15, 5) {
		t.Error("RotationWithSnapping reported a change on a locked object")
	}
	if o.Angle != 0 {
		t.Errorf("Angle = %v, want 0", o.Angle)
	}
}

func TestRotateSnapping(t *testing.T) {
	tests := []struct {
		name      string
		snap      float64
		threshold float64
		sweep     float64
		want      float64
	}{
		{"no snap", 0, 0, 85, 85},
		{"within threshold", 45, 10, 85, 90},
		{"outside threshold", 45, 3, 85, 85},
		{"snap below", 45, 10, 50, 45},
		{"negative wraps", 0, 0, -30, 330},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewRect(0, 0, 10, 10)
			o.SnapAngle, o.SnapThreshold = tt.snap, tt.threshold
			// press straight above the centre, sweep clockwise
			a := degreesToRadians(tt.sweep - 90)
			x, y := 5+10*math.Cos(a), 5+10*math.Sin(a)
			RotationWithSnapping(nil, rotateSession(o), x, y)
			assertNear(t, "Angle", o.Angle, tt.want)
		})
	}
}

func TestSkewWithAltAction(t *testing.T) {
	c, o := selectedRect(t)
	var skewing int
	o.On(EventSkewing, func(*Event) { skewing++ })
	// mr with the alternate action key skews vertically
	press(c, 140, 120, ModShift)
	move(c, 140, 140, ModShift)
	release(c, 140, 140, ModShift)
	assertNear(t, "SkewY", o.SkewY, 45)
	assertNear(t, "ScaleX", o.ScaleX, 1)
	if skewing == 0 {
		t.Error("skewing never fired")
	}
}

func TestControlsDisabledPerObject(t *testing.T) {
	c, o := selectedRect(t)
	o.SetControlVisible("br", false)
	press(c, 140, 140, 0)
	if tr := c.CurrentTransform(); tr == nil || tr.Corner != "" {
		t.Fatalf("hidden control started a session: %+v", tr)
	}
	release(c, 140, 140, 0)
}

func TestScaleFlipsThroughAnchor(t *testing.T) {
	c, o := selectedRect(t)
	press(c, 140, 140, ModShift)
	move(c, 150, 140, ModShift)
	move(c, 60, 140, ModShift)
	release(c, 60, 140, ModShift)
	if !o.FlipX {
		t.Error("FlipX = false after dragging br past the left edge")
	}
	assertNear(t, "ScaleX", o.ScaleX, 1)

	o.FlipX = false
	o.ScaleX = 1
	o.Left = 100
	o.LockScalingFlip = true
	o.SetCoords()
	press(c, 140, 140, ModShift)
	move(c, 150, 140, ModShift)
	move(c, 60, 140, ModShift)
	release(c, 60, 140, ModShift)
	if o.FlipX {
		t.Error("LockScalingFlip did not prevent flipping")
	}
}
