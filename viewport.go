package easel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// viewportCache holds the scene-space corners of the visible surface,
// validated against the viewport transform and the surface size.
type viewportCache struct {
	valid  bool
	vpt    Matrix
	w, h   int
	coords [4]Point
}

// ViewportTransform returns the scene-to-surface matrix.
func (c *StaticCanvas) ViewportTransform() Matrix { return c.vpt }

// Zoom returns the horizontal scale of the viewport transform.
func (c *StaticCanvas) Zoom() float64 { return c.vpt[0] }

// SetViewportTransform replaces the viewport transform. With PanBounds set
// the translation is clamped first.
func (c *StaticCanvas) SetViewportTransform(vpt Matrix) {
	if c.disposed {
		return
	}
	c.vpt = c.clampPan(vpt)
	for _, o := range c.objects {
		if o.group == nil {
			o.SetCoords()
		}
	}
	for _, o := range []*Object{c.BackgroundImage, c.OverlayImage} {
		if o != nil {
			o.SetCoords()
		}
	}
	if c.interactive != nil {
		if a := c.interactive.ActiveObject(); a != nil {
			a.SetCoords()
		}
	}
	c.CalcViewportBoundaries()
	if c.RenderOnAddRemove {
		c.RequestRenderAll()
	}
}

// ZoomToPoint sets the zoom keeping the surface point p fixed.
func (c *StaticCanvas) ZoomToPoint(p Point, zoom float64) {
	if zoom <= 0 {
		return
	}
	vpt := c.vpt
	scene := p.Transform(invertAffine(vpt), false)
	vpt[0], vpt[3] = zoom, zoom
	after := scene.Transform(vpt, false)
	vpt[4] += p.X - after.X
	vpt[5] += p.Y - after.Y
	c.SetViewportTransform(vpt)
}

// SetZoom sets the zoom around the surface origin.
func (c *StaticCanvas) SetZoom(zoom float64) {
	c.ZoomToPoint(Point{}, zoom)
}

// AbsolutePan moves the viewport so the surface origin shows scene point p
// scaled by the zoom.
func (c *StaticCanvas) AbsolutePan(p Point) {
	vpt := c.vpt
	vpt[4], vpt[5] = -p.X, -p.Y
	c.SetViewportTransform(vpt)
}

// RelativePan moves the viewport by d surface pixels.
func (c *StaticCanvas) RelativePan(d Point) {
	c.AbsolutePan(Pt(-d.X-c.vpt[4], -d.Y-c.vpt[5]))
}

// CalcViewportBoundaries recomputes the scene-space corners tl, tr, br, bl
// of the visible surface.
func (c *StaticCanvas) CalcViewportBoundaries() [4]Point {
	inv := invertAffine(c.vpt)
	a := Point{}.Transform(inv, false)
	b := Pt(float64(c.width), float64(c.height)).Transform(inv, false)
	tl, br := a.Min(b), a.Max(b)
	c.vptCoords = viewportCache{
		valid:  true,
		vpt:    c.vpt,
		w:      c.width,
		h:      c.height,
		coords: [4]Point{tl, Pt(br.X, tl.Y), br, Pt(tl.X, br.Y)},
	}
	return c.vptCoords.coords
}

// ViewportCoords returns the visible scene rectangle, recomputing it when
// the viewport or the size changed.
func (c *StaticCanvas) ViewportCoords() [4]Point {
	vc := &c.vptCoords
	if !vc.valid || vc.vpt != c.vpt || vc.w != c.width || vc.h != c.height {
		return c.CalcViewportBoundaries()
	}
	return vc.coords
}

// SceneToSurface maps a scene point to surface coordinates.
func (c *StaticCanvas) SceneToSurface(p Point) Point {
	return p.Transform(c.vpt, false)
}

// SurfaceToScene maps a surface point to scene coordinates.
func (c *StaticCanvas) SurfaceToScene(p Point) Point {
	return p.Transform(invertAffine(c.vpt), false)
}

// CenterPoint returns the centre of the logical surface.
func (c *StaticCanvas) CenterPoint() Point {
	return Pt(float64(c.width)/2, float64(c.height)/2)
}

// VpCenter returns the scene point at the centre of the surface.
func (c *StaticCanvas) VpCenter() Point {
	return c.SurfaceToScene(c.CenterPoint())
}

// CenterObject centres o on the surface, ignoring the viewport.
func (c *StaticCanvas) CenterObject(o *Object) {
	c.centerObject(o, c.CenterPoint(), true, true)
}

// ViewportCenterObject centres o in the visible area.
func (c *StaticCanvas) ViewportCenterObject(o *Object) {
	c.centerObject(o, c.VpCenter(), true, true)
}

// ViewportCenterObjectH centres o horizontally in the visible area.
func (c *StaticCanvas) ViewportCenterObjectH(o *Object) {
	c.centerObject(o, c.VpCenter(), true, false)
}

// ViewportCenterObjectV centres o vertically in the visible area.
func (c *StaticCanvas) ViewportCenterObjectV(o *Object) {
	c.centerObject(o, c.VpCenter(), false, true)
}

func (c *StaticCanvas) centerObject(o *Object, center Point, h, v bool) {
	cur := o.GetCenterPoint()
	if !h {
		center.X = cur.X
	}
	if !v {
		center.Y = cur.Y
	}
	if o.group != nil {
		center = SendPointToPlane(center, Identity, o.group.CalcTransformMatrix())
	}
	o.SetPositionByOrigin(center, OriginCenter, OriginCenter)
	o.SetCoords()
	if c.RenderOnAddRemove {
		c.RequestRenderAll()
	}
}

// --- pan bounds ---

// SetPanBounds keeps the visible area inside the scene rectangle b for
// unrotated viewports.
func (c *StaticCanvas) SetPanBounds(b Rect) {
	c.panBounds = &b
	c.SetViewportTransform(c.vpt)
}

// ClearPanBounds removes the pan limit.
func (c *StaticCanvas) ClearPanBounds() {
	c.panBounds = nil
}

// clampPan restricts the translation so the visible area stays within the
// pan bounds. When the bounds are smaller than the view they are centred.
func (c *StaticCanvas) clampPan(vpt Matrix) Matrix {
	b := c.panBounds
	if b == nil || vpt[1] != 0 || vpt[2] != 0 || vpt[0] <= 0 || vpt[3] <= 0 {
		return vpt
	}
	vpt[4] = clampAxis(vpt[4], vpt[0], float64(c.width), b.X, b.Width)
	vpt[5] = clampAxis(vpt[5], vpt[3], float64(c.height), b.Y, b.Height)
	return vpt
}

func clampAxis(offset, zoom, view, lo, size float64) float64 {
	left := -offset / zoom
	visible := view / zoom
	minLeft, maxLeft := lo, lo+size-visible
	if minLeft > maxLeft {
		left = lo + size/2 - visible/2
	} else {
		left = max(minLeft, min(left, maxLeft))
	}
	return -left * zoom
}

// --- animation ---

// AnimateViewport tweens the viewport transform to `to` over duration
// seconds on the canvas frame queue. A nil easing is linear.
func (c *StaticCanvas) AnimateViewport(to Matrix, duration float32, easing ease.TweenFunc) *StopToken {
	if easing == nil {
		easing = ease.Linear
	}
	from := c.vpt
	var tweens [6]*gween.Tween
	for i := range from {
		tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, easing)
	}
	return c.frames.Repeat(func(dt float64) bool {
		if c.disposed {
			return false
		}
		var m Matrix
		done := true
		for i, tw := range tweens {
			v, fin := tw.Update(float32(dt))
			m[i] = float64(v)
			done = done && fin
		}
		if done {
			m = to
		}
		c.SetViewportTransform(m)
		return !done
	})
}

// AnimateZoomToPoint tweens the zoom keeping the surface point p fixed.
func (c *StaticCanvas) AnimateZoomToPoint(p Point, zoom float64, duration float32, easing ease.TweenFunc) *StopToken {
	vpt := c.vpt
	scene := p.Transform(invertAffine(vpt), false)
	vpt[0], vpt[3] = zoom, zoom
	after := scene.Transform(vpt, false)
	vpt[4] += p.X - after.X
	vpt[5] += p.Y - after.Y
	return c.AnimateViewport(vpt, duration, easing)
}
