package easel

import (
	"math"

	"github.com/gogpu/gg"
)

// pointerCache holds the two pointer projections of the event being
// handled. It is valid only while that event is processed.
type pointerCache struct {
	e        *PointerEvent
	viewport Point
	scene    Point
	valid    bool
}

// SetElementBounds tells the canvas where it is shown, in the host pixels
// PointerEvent coordinates use. A zero rectangle means events are already
// in viewport pixels.
func (c *Canvas) SetElementBounds(r Rect) {
	c.elementBounds = r
	c.pointers.valid = false
}

// GetViewportPoint maps e to viewport pixels, before the viewport transform.
func (c *Canvas) GetViewportPoint(e *PointerEvent) Point {
	if c.pointers.valid && c.pointers.e == e {
		return c.pointers.viewport
	}
	return c.viewportPoint(e)
}

func (c *Canvas) viewportPoint(e *PointerEvent) Point {
	if e == nil {
		return Point{}
	}
	b := c.elementBounds
	if b.Width <= 0 || b.Height <= 0 {
		return Pt(e.X-b.X, e.Y-b.Y)
	}
	return Pt((e.X-b.X)*float64(c.width)/b.Width, (e.Y-b.Y)*float64(c.height)/b.Height)
}

// GetScenePoint maps e to scene coordinates.
func (c *Canvas) GetScenePoint(e *PointerEvent) Point {
	if c.pointers.valid && c.pointers.e == e {
		return c.pointers.scene
	}
	return c.SurfaceToScene(c.viewportPoint(e))
}

// cacheTransformEventData resolves the pointer projections and the target
// of e once for the whole handler.
func (c *Canvas) cacheTransformEventData(e *PointerEvent) {
	c.resetTransformEventData()
	vp := c.viewportPoint(e)
	c.pointers = pointerCache{e: e, viewport: vp, scene: c.SurfaceToScene(vp), valid: true}
	if t := c.currentTransform; t != nil {
		c.target = t.Target
	} else {
		c.target = c.FindTarget(e)
	}
}

func (c *Canvas) resetTransformEventData() {
	c.target = nil
	c.pointers = pointerCache{}
}

// FindTarget returns the object under e. The sub targets crossed on the way
// are available from SubTargets until the next lookup.
//
// The active object wins when one of its controls is hit, when it is an
// active selection under the pointer, or when it is under the pointer and
// either stacking is not preserved or the alternate selection modifier is
// held. Otherwise the scene is searched top to bottom.
func (c *Canvas) FindTarget(e *PointerEvent) *Object {
	if c.SkipTargetFind || e == nil {
		return nil
	}
	p := c.GetViewportPoint(e)
	a := c.activeObject
	c.targets = nil
	if a != nil && len(c.ActiveObjects()) >= 1 {
		if _, _, ok := a.FindControl(p, e.Touch); ok {
			return a
		}
		if a.IsActiveSelection() && c.SearchPossibleTargets([]*Object{a}, p) != nil {
			return a
		}
		if a == c.SearchPossibleTargets([]*Object{a}, p) {
			if !c.PreserveObjectStacking {
				return a
			}
			sub := c.targets
			c.targets = nil
			t := c.SearchPossibleTargets(c.objects, p)
			if e.Modifiers.Has(c.Keys.AltSelection) && t != nil && t != a {
				c.targets = sub
				return a
			}
			return t
		}
	}
	return c.SearchPossibleTargets(c.objects, p)
}

// SubTargets returns the nested objects found under the pointer by the
// last FindTarget, innermost first.
func (c *Canvas) SubTargets() []*Object { return c.targets }

// SearchPossibleTargets hit-tests objs topmost first at the viewport point
// p. Inside an interactive group the innermost selectable member is
// returned; non-interactive groups are selected as a whole.
func (c *Canvas) SearchPossibleTargets(objs []*Object, p Point) *Object {
	t := c.searchPossibleTargets(objs, p)
	if t == nil {
		return nil
	}
	if g := GroupOf(t); g != nil && g.Interactive && len(c.targets) > 0 {
		for i := len(c.targets) - 1; i > 0; i-- {
			sub := c.targets[i]
			if sg := GroupOf(sub); sg == nil || !sg.Interactive {
				return sub
			}
		}
		return c.targets[0]
	}
	return t
}

func (c *Canvas) searchPossibleTargets(objs []*Object, p Point) *Object {
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		if !c.checkTarget(o, p) {
			continue
		}
		if g := GroupOf(o); g != nil && (g.SubTargetCheck || g.Interactive) {
			if sub := c.searchPossibleTargets(g.objects, p); sub != nil {
				c.targets = append(c.targets, sub)
			}
		}
		return o
	}
	return nil
}

// checkTarget reports whether the viewport point p hits o.
func (c *Canvas) checkTarget(o *Object, p Point) bool {
	if o == nil || !o.Visible || !o.Evented {
		return false
	}
	if !c.pointIsInObjectSelectionArea(o, c.SurfaceToScene(p)) {
		return false
	}
	if c.PerPixelTargetFind || o.PerPixelTargetFind {
		return !c.IsTargetTransparent(o, p.X, p.Y)
	}
	return true
}

// pointIsInObjectSelectionArea tests the scene point against the object's
// corner quad grown by its padding.
func (c *Canvas) pointIsInObjectSelectionArea(o *Object, p Point) bool {
	coords := o.GetCoords()
	padding := o.Padding / nonZero(c.Zoom())
	if padding != 0 {
		tl, tr, br, bl := coords[0], coords[1], coords[2], coords[3]
		angle := math.Atan2(tr.Y-tl.Y, tr.X-tl.X)
		cosP := math.Cos(angle) * padding
		sinP := math.Sin(angle) * padding
		sum, diff := cosP+sinP, cosP-sinP
		coords = [4]Point{
			Pt(tl.X-diff, tl.Y-sum),
			Pt(tr.X+sum, tr.Y-diff),
			Pt(br.X+diff, br.Y+sum),
			Pt(bl.X-sum, bl.Y+diff),
		}
	}
	return PointInPolygon(p, coords[:])
}

// IsTargetTransparent paints o alone into a (2t+1)² buffer around the
// viewport point (x, y), t being TargetFindTolerance, and reports whether
// every pixel of it is fully transparent.
func (c *Canvas) IsTargetTransparent(o *Object, x, y float64) bool {
	tol := max(int(math.Round(c.TargetFindTolerance)), 0)
	size := 2*tol + 1
	dc := gg.NewContext(size, size)
	defer dc.Close()

	bg := o.SelectionBackgroundColor
	o.SelectionBackgroundColor = ""
	defer func() { o.SelectionBackgroundColor = bg }()

	dc.Translate(-x+float64(tol), -y+float64(tol))
	dc.Transform(toGG(c.vpt))
	o.render(dc, RenderState{Alpha: 1})

	img := dc.Image()
	b := img.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			if _, _, _, a := img.At(px, py).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}
