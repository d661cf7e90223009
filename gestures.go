package easel

import (
	"math"
)

// PinchGestures turns two-finger touch input into gestures. With an object
// being transformed the pinch scales and rotates it around its centre;
// otherwise it zooms the viewport around the midpoint of the fingers.
//
// It is registered by NewCanvas when CanvasOptions.PinchGestures is set and
// sees every pointer event before the canvas does.
type PinchGestures struct {
	// DisableRotation ignores the rotation part of a pinch.
	DisableRotation bool
	// DisableViewportZoom ignores pinches that have no object to transform.
	DisableViewportZoom bool
	// MinZoom and MaxZoom bound viewport zoom. Zero means unbounded.
	MinZoom, MaxZoom float64

	canvas  *Canvas
	touches map[int]Point
	order   []int

	active       bool
	pointer0     int
	pointer1     int
	initialDist  float64
	initialAngle float64
	startZoom    float64
	session      *Transform
}

func newPinchGestures(c *Canvas) *PinchGestures {
	return &PinchGestures{canvas: c, touches: make(map[int]Point)}
}

// Active reports whether a pinch is in progress.
func (g *PinchGestures) Active() bool { return g.active }

func (g *PinchGestures) track(e *PointerEvent) {
	if _, ok := g.touches[e.PointerID]; !ok {
		g.order = append(g.order, e.PointerID)
	}
	g.touches[e.PointerID] = g.canvas.viewportPoint(e)
}

func (g *PinchGestures) untrack(id int) {
	delete(g.touches, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// geometry returns the midpoint, distance and angle of the pinch fingers.
func (g *PinchGestures) geometry() (Point, float64, float64) {
	p0, p1 := g.touches[g.pointer0], g.touches[g.pointer1]
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	return p0.Mid(p1), math.Hypot(dx, dy), math.Atan2(dy, dx)
}

// pointerDown reports whether the press was consumed by the gesture.
func (g *PinchGestures) pointerDown(e *PointerEvent) bool {
	if !e.Touch || g.canvas.IsDrawingMode {
		return false
	}
	g.track(e)
	if len(g.touches) < 2 {
		return false
	}
	if g.active {
		return true
	}
	g.active = true
	g.pointer0, g.pointer1 = g.order[0], g.order[1]
	_, g.initialDist, g.initialAngle = g.geometry()
	g.startZoom = g.canvas.Zoom()
	g.session = nil
	c := g.canvas
	if t := c.currentTransform; t != nil && c.sessionAlive(t) {
		// take over the session the first finger started
		t.restoreOriginal()
		t.Action = ActionScale
		t.OriginX, t.OriginY = OriginCenter, OriginCenter
		g.session = t
	}
	return true
}

// pointerMove reports whether the move was consumed by the gesture.
func (g *PinchGestures) pointerMove(e *PointerEvent) bool {
	if !e.Touch {
		return false
	}
	if _, ok := g.touches[e.PointerID]; ok {
		g.touches[e.PointerID] = g.canvas.viewportPoint(e)
	}
	if !g.active {
		return false
	}
	mid, dist, angle := g.geometry()
	scale := 1.0
	if g.initialDist > 0 {
		scale = dist / g.initialDist
	}
	rotation := radiansToDegrees(angle - g.initialAngle)
	if g.DisableRotation {
		rotation = 0
	}
	c := g.canvas
	var target *Object
	switch {
	case g.session != nil && c.sessionAlive(g.session):
		t := g.session
		target = t.Target
		t.GestureScale = scale
		performed := ScalingEqually(e, t, 0, 0)
		if !target.LockRotation && rotation != 0 {
			angle := normalizeAngle(radiansToDegrees(t.Theta) + rotation)
			if target.Angle != angle {
				center := target.GetRelativeCenterPoint()
				target.Angle = angle
				target.setRelativeXYFromCenter(center)
				performed = true
				fireTransformEvent(EventRotating, &Event{E: e, Transform: t})
			}
		}
		if performed {
			target.SetCoords()
			t.ActionPerformed = true
		}
	case !g.DisableViewportZoom:
		zoom := g.startZoom * scale
		if g.MinZoom > 0 {
			zoom = math.Max(zoom, g.MinZoom)
		}
		if g.MaxZoom > 0 {
			zoom = math.Min(zoom, g.MaxZoom)
		}
		c.ZoomToPoint(mid, zoom)
	}
	c.Fire("touch:gesture", &Event{E: e, Target: target, Scale: scale, Rotation: rotation, Pointer: c.SurfaceToScene(mid)})
	c.RequestRenderAll()
	return true
}

// pointerUp reports whether the release was consumed by the gesture. The
// first finger's release still reaches the canvas so the session commits.
func (g *PinchGestures) pointerUp(e *PointerEvent) bool {
	if !e.Touch {
		return false
	}
	g.untrack(e.PointerID)
	if !g.active {
		return false
	}
	if len(g.touches) < 2 {
		g.active = false
		g.session = nil
	}
	return e.PointerID != g.pointer0
}
