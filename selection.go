package easel

import "slices"

// groupSelector is the marquee being dragged, in scene coordinates.
type groupSelector struct {
	x, y           float64
	deltaX, deltaY float64
}

func (g *groupSelector) rect() (tl, br Point) {
	p1 := Pt(g.x, g.y)
	p2 := p1.Add(Pt(g.deltaX, g.deltaY))
	return p1.Min(p2), p1.Max(p2)
}

func (c *Canvas) isSelectionKeyPressed(e *PointerEvent) bool {
	return e != nil && e.Modifiers.Has(c.Keys.Selection)
}

// shouldClearSelection reports whether a press on target drops the current
// selection: nothing was hit, an unselected object was hit without the
// selection key, or the target cannot take part.
func (c *Canvas) shouldClearSelection(e *PointerEvent, target *Object) bool {
	if target == nil {
		return true
	}
	a := c.activeObject
	if a != nil && a != target && !slices.Contains(c.ActiveObjects(), target) && !c.isSelectionKeyPressed(e) {
		return true
	}
	if !target.Evented {
		return true
	}
	return !target.Selectable && a != nil && a != target
}

// handleMultiSelection adds target to, or removes it from, the selection
// when the selection key is held. It reports whether it handled the press.
func (c *Canvas) handleMultiSelection(e *PointerEvent, target *Object) bool {
	a := c.activeObject
	if a == nil || !c.isSelectionKeyPressed(e) || !c.Selection || target == nil || !target.Selectable {
		return false
	}
	isAS := a.IsActiveSelection()
	if a == target && !isAS {
		return false
	}
	// selections hold top-level objects only
	if !isAS && (target.parent != nil || a.parent != nil || isAncestor(target, a) || isAncestor(a, target)) {
		return false
	}
	if target.OnSelect != nil && target.OnSelect(&Event{E: e, Target: target}) {
		return false
	}
	if _, _, ok := a.FindControl(c.GetViewportPoint(e), e.Touch); ok {
		return false
	}
	if isAS {
		as := ActiveSelectionOf(a)
		prev := slices.Clone(as.objects)
		if target == a {
			p := c.GetViewportPoint(e)
			target = c.SearchPossibleTargets(prev, p)
			if target == nil {
				target = c.SearchPossibleTargets(c.objects, p)
			}
			if target == nil || !target.Selectable || target.IsActiveSelection() {
				return false
			}
		}
		if target.parent != nil {
			return false
		}
		if target.group == a {
			as.Remove(a, target)
			c.hoveredTarget = target
			c.hoveredTargets = slices.Clone(c.targets)
			if len(as.objects) == 1 {
				c.setActiveObject(as.objects[0], e)
			}
		} else {
			as.Add(a, target)
			c.hoveredTarget = a
			c.hoveredTargets = slices.Clone(c.targets)
		}
		c.fireSelectionEvents(prev, e)
		return true
	}
	sel := NewActiveSelection()
	sel.canvas = c.StaticCanvas
	ActiveSelectionOf(sel).Add(sel, a, target)
	c.hoveredTarget = sel
	c.setActiveObject(sel, e)
	c.fireSelectionEvents([]*Object{a}, e)
	return true
}

// handleSelection turns a finished marquee into a selection.
func (c *Canvas) handleSelection(e *PointerEvent) bool {
	gs := c.groupSelector
	if !c.Selection || gs == nil {
		return false
	}
	c.groupSelector = nil
	tl, br := gs.rect()
	size := br.Sub(tl)
	collected := c.CollectObjects(Rect{X: tl.X, Y: tl.Y, Width: size.X, Height: size.Y}, c.SelectionFullyContained)
	var objs []*Object
	switch {
	case gs.deltaX == 0 && gs.deltaY == 0:
		if len(collected) > 0 {
			objs = collected[:1]
		}
	case len(collected) > 1:
		for _, o := range collected {
			if o.OnSelect == nil || !o.OnSelect(&Event{E: e, Target: o}) {
				objs = append(objs, o)
			}
		}
		slices.Reverse(objs)
	default:
		objs = collected
	}
	switch len(objs) {
	case 0:
	case 1:
		c.SetActiveObject(objs[0], e)
	default:
		sel := NewActiveSelection()
		sel.canvas = c.StaticCanvas
		ActiveSelectionOf(sel).Add(sel, objs...)
		c.SetActiveObject(sel, e)
	}
	return true
}
