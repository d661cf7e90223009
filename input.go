package easel

import "slices"

// --- event dispatch ---

// handleEvent fires mouse:<kind> on the canvas and mouse<kind> on the
// target and each sub target.
func (c *Canvas) handleEvent(e *PointerEvent, kind string) {
	target := c.target
	targets := c.targets
	ev := func() *Event {
		x := &Event{
			E:          e,
			Target:     target,
			SubTargets: targets,
			Pointer:    c.GetScenePoint(e),
			Transform:  c.currentTransform,
		}
		if kind == "up:before" || kind == "up" {
			x.IsClick = c.isClick
		}
		return x
	}
	c.Fire("mouse:"+kind, ev())
	if target != nil {
		target.fire("mouse"+kind, ev())
	}
	for _, t := range targets {
		if t != target {
			t.fire("mouse"+kind, ev())
		}
	}
}

// fireInOut fires the synthetic over/out pair when the hovered object
// changes. prefix is "mouse" or "drag".
func (c *Canvas) fireInOut(prefix string, e *PointerEvent, target, old *Object, fireCanvas bool) {
	if old == target {
		return
	}
	in, out := "over", "out"
	canvasIn, canvasOut := prefix+":"+in, prefix+":"+out
	if prefix == "drag" {
		in, out = "enter", "leave"
		canvasIn, canvasOut = "drag:enter", "drag:leave"
	}
	p := c.GetScenePoint(e)
	if old != nil {
		ev := &Event{E: e, Target: old, Pointer: p}
		if fireCanvas {
			c.Fire(canvasOut, ev)
		}
		old.fire(prefix+out, &Event{E: e, Target: old, Pointer: p})
	}
	if target != nil {
		ev := &Event{E: e, Target: target, Pointer: p}
		if fireCanvas {
			c.Fire(canvasIn, ev)
		}
		target.fire(prefix+in, &Event{E: e, Target: target, Pointer: p})
	}
}

// fireOverOutEvents updates hover tracking for target and its sub targets.
func (c *Canvas) fireOverOutEvents(e *PointerEvent, target *Object) {
	c.fireInOut("mouse", e, target, c.hoveredTarget, true)
	n := max(len(c.hoveredTargets), len(c.targets))
	for i := 0; i < n; i++ {
		var t, old *Object
		if i < len(c.targets) {
			t = c.targets[i]
		}
		if i < len(c.hoveredTargets) {
			old = c.hoveredTargets[i]
		}
		c.fireInOut("mouse", e, t, old, false)
	}
	c.hoveredTarget = target
	c.hoveredTargets = slices.Clone(c.targets)
}

// setCursorFromEvent picks the hover cursor for target or the control
// under the pointer.
func (c *Canvas) setCursorFromEvent(e *PointerEvent, target *Object) {
	if target == nil {
		c.setCursor(c.DefaultCursor)
		return
	}
	hover := firstNonEmpty(target.HoverCursor, c.HoverCursor)
	var control *Control
	a := c.activeObject
	if a == nil || !a.IsActiveSelection() || target.group != a {
		_, control, _ = target.FindControl(c.GetViewportPoint(e), e.Touch)
	}
	if control == nil {
		if g := GroupOf(target); g != nil && g.SubTargetCheck {
			for i := len(c.targets) - 1; i >= 0; i-- {
				hover = firstNonEmpty(c.targets[i].HoverCursor, hover)
			}
		}
		c.setCursor(hover)
		return
	}
	c.setCursor(control.Cursor(e, target))
}

// isMainEvent filters out secondary touch points.
func (c *Canvas) isMainEvent(e *PointerEvent) bool {
	return !e.Touch || e.Primary
}

func (c *Canvas) shouldRender(target *Object) bool {
	a := c.activeObject
	if a == nil || target == nil {
		return a != nil || target != nil
	}
	return a != target
}

// --- pointer entry points ---

// OnPointerDown handles a press.
func (c *Canvas) OnPointerDown(e PointerEvent) {
	if c.disposed {
		return
	}
	if c.Gestures != nil && c.Gestures.pointerDown(&e) {
		return
	}
	c.pointerDown(&e)
}

func (c *Canvas) pointerDown(e *PointerEvent) {
	c.isClick = true
	c.cacheTransformEventData(e)
	defer c.resetTransformEventData()
	c.handleEvent(e, "down:before")

	if e.Button != MouseButtonLeft {
		if (c.FireMiddleClick && e.Button == MouseButtonMiddle) || (c.FireRightClick && e.Button == MouseButtonRight) {
			c.handleEvent(e, "down")
		}
		return
	}
	if c.IsDrawingMode {
		c.onMouseDownInDrawingMode(e)
		return
	}
	if !c.isMainEvent(e) || c.currentTransform != nil {
		return
	}

	target := c.target
	render := c.shouldRender(target)
	grouped := false
	if c.handleMultiSelection(e, target) {
		target = c.activeObject
		grouped = true
		render = true
	} else if c.shouldClearSelection(e, target) {
		c.DiscardActiveObject(e)
	}

	if c.Selection && (target == nil || (!target.Selectable && target != c.activeObject)) {
		p := c.GetScenePoint(e)
		c.groupSelector = &groupSelector{x: p.X, y: p.Y}
	}

	if target != nil {
		alreadySelected := target == c.activeObject
		if target.Selectable {
			c.SetActiveObject(target, e)
		}
		_, control, found := target.FindControl(c.GetViewportPoint(e), e.Touch)
		if target == c.activeObject && (found || !grouped) {
			c.setupCurrentTransform(e, target, alreadySelected)
			if found && control.MouseDownHandler != nil && c.currentTransform != nil {
				p := pointerInPlane(target, c.GetScenePoint(e))
				control.MouseDownHandler(e, c.currentTransform, p.X, p.Y)
			}
		}
	}
	c.handleEvent(e, "down")
	if render {
		c.RequestRenderAll()
	}
}

// OnPointerMove handles a pointer move, pressed or not.
func (c *Canvas) OnPointerMove(e PointerEvent) {
	if c.disposed {
		return
	}
	if c.Gestures != nil && c.Gestures.pointerMove(&e) {
		return
	}
	c.pointerMove(&e)
}

func (c *Canvas) pointerMove(e *PointerEvent) {
	c.isClick = false
	c.cacheTransformEventData(e)
	defer c.resetTransformEventData()
	c.handleEvent(e, "move:before")

	if c.IsDrawingMode {
		c.onMouseMoveInDrawingMode(e)
		return
	}
	if !c.isMainEvent(e) {
		return
	}
	switch {
	case c.groupSelector != nil:
		p := c.GetScenePoint(e)
		c.groupSelector.deltaX = p.X - c.groupSelector.x
		c.groupSelector.deltaY = p.Y - c.groupSelector.y
		c.RenderTop()
	case c.currentTransform == nil:
		target := c.FindTarget(e)
		c.setCursorFromEvent(e, target)
		c.fireOverOutEvents(e, target)
	default:
		c.transformObject(e)
	}
	c.handleEvent(e, "move")
}

// OnPointerUp handles a release.
func (c *Canvas) OnPointerUp(e PointerEvent) {
	if c.disposed {
		return
	}
	if c.Gestures != nil && c.Gestures.pointerUp(&e) {
		return
	}
	c.pointerUp(&e)
}

func (c *Canvas) pointerUp(e *PointerEvent) {
	t := c.currentTransform
	c.cacheTransformEventData(e)
	defer c.resetTransformEventData()
	target := c.target
	isClick := c.isClick
	c.handleEvent(e, "up:before")

	if e.Button != MouseButtonLeft {
		if (c.FireMiddleClick && e.Button == MouseButtonMiddle) || (c.FireRightClick && e.Button == MouseButtonRight) {
			c.handleEvent(e, "up")
		}
		return
	}
	if c.IsDrawingMode && c.drawing {
		c.onMouseUpInDrawingMode(e)
		return
	}
	if !c.isMainEvent(e) {
		return
	}

	render := false
	if t != nil {
		c.finalizeCurrentTransform(e)
		render = t.ActionPerformed
	}
	if !isClick {
		wasActive := target == c.activeObject
		c.handleSelection(e)
		if !render {
			render = c.shouldRender(target) || (!wasActive && target == c.activeObject)
		}
	}

	var corner string
	if target != nil {
		name, control, found := target.FindControl(c.GetViewportPoint(e), e.Touch)
		corner = name
		if found && control.MouseUpHandler != nil && t != nil {
			p := pointerInPlane(target, c.GetScenePoint(e))
			control.MouseUpHandler(e, t, p.X, p.Y)
		}
		target.isMoving = false
	}
	// a session that ends on another control still owes its own mouse up
	if t != nil && c.sessionAlive(t) && (t.Target != target || t.Corner != corner) {
		if oc := t.Target.Controls.Get(t.Corner); oc != nil && oc.MouseUpHandler != nil {
			p := pointerInPlane(t.Target, c.GetScenePoint(e))
			oc.MouseUpHandler(e, t, p.X, p.Y)
		}
	}
	if t != nil && t.Target != nil {
		t.Target.isMoving = false
	}
	c.setCursorFromEvent(e, target)
	c.handleEvent(e, "up")
	c.groupSelector = nil
	c.currentTransform = nil
	if render {
		c.RequestRenderAll()
	} else if !isClick {
		c.RenderTop()
	}
}

// OnDoubleClick fires mouse:dblclick.
func (c *Canvas) OnDoubleClick(e PointerEvent) {
	if c.disposed {
		return
	}
	c.cacheTransformEventData(&e)
	defer c.resetTransformEventData()
	c.handleEvent(&e, "dblclick")
}

// OnPointerLeave tells the canvas the pointer left the element.
func (c *Canvas) OnPointerLeave(e PointerEvent) {
	if c.disposed {
		return
	}
	c.fireOverOutEvents(&e, nil)
	c.targets = nil
	c.hoveredTarget, c.hoveredTargets = nil, nil
	c.Fire("mouse:out", &Event{E: &e})
	c.setCursor(c.DefaultCursor)
}

// OnWheel fires mouse:wheel with the scroll amounts. The canvas does not
// react to it; handlers typically zoom or pan the viewport.
func (c *Canvas) OnWheel(e PointerEvent, dx, dy float64) {
	if c.disposed {
		return
	}
	c.cacheTransformEventData(&e)
	defer c.resetTransformEventData()
	ev := &Event{E: &e, Target: c.target, SubTargets: c.targets, Pointer: c.GetScenePoint(&e), DeltaX: dx, DeltaY: dy}
	c.Fire("mouse:wheel", ev)
	if c.target != nil {
		c.target.fire("mousewheel", &Event{E: &e, Target: c.target, Pointer: ev.Pointer, DeltaX: dx, DeltaY: dy})
	}
}

// --- drag and drop ---

// OnDragEnter starts an external drag over the canvas. data is the
// payload carried by drag events.
func (c *Canvas) OnDragEnter(e PointerEvent, data any) {
	if c.disposed {
		return
	}
	target := c.FindTarget(&e)
	c.Fire("dragenter", &Event{E: &e, Target: target, SubTargets: c.targets, Data: data, Pointer: c.GetScenePoint(&e)})
	c.fireInOut("drag", &e, target, c.dragTarget, true)
	c.dragTarget = target
}

// OnDragOver moves an external drag over the canvas.
func (c *Canvas) OnDragOver(e PointerEvent, data any) {
	if c.disposed {
		return
	}
	target := c.FindTarget(&e)
	p := c.GetScenePoint(&e)
	c.Fire("dragover", &Event{E: &e, Target: target, SubTargets: c.targets, Data: data, Pointer: p})
	c.fireInOut("drag", &e, target, c.dragTarget, true)
	c.dragTarget = target
	if target != nil {
		target.fire("dragover", &Event{E: &e, Target: target, Data: data, Pointer: p})
	}
	for _, t := range c.targets {
		if t != target {
			t.fire("dragover", &Event{E: &e, Target: t, Data: data, Pointer: p})
		}
	}
}

// OnDragLeave ends an external drag that left the canvas.
func (c *Canvas) OnDragLeave(e PointerEvent, data any) {
	if c.disposed {
		return
	}
	c.Fire("dragleave", &Event{E: &e, Target: c.dragTarget, Data: data})
	c.fireInOut("drag", &e, nil, c.dragTarget, true)
	c.dragTarget = nil
}

// OnDrop completes an external drag over the canvas.
func (c *Canvas) OnDrop(e PointerEvent, data any) {
	if c.disposed {
		return
	}
	c.cacheTransformEventData(&e)
	defer c.resetTransformEventData()
	target := c.target
	p := c.GetScenePoint(&e)
	for _, name := range []string{"drop:before", "drop"} {
		c.Fire(name, &Event{E: &e, Target: target, SubTargets: c.targets, Data: data, Pointer: p})
		if target != nil {
			target.fire(name, &Event{E: &e, Target: target, Data: data, Pointer: p})
		}
	}
	c.fireInOut("drag", &e, nil, c.dragTarget, true)
	c.dragTarget = nil
}
