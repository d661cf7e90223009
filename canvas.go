package easel

import (
	"slices"

	"github.com/gogpu/gg"
)

// ModifierKeys chooses which modifier triggers each interaction variant.
// A zero field disables that variant.
type ModifierKeys struct {
	// Selection adds or removes objects from the active selection on click.
	Selection KeyModifiers
	// Centered toggles transforming around the object centre.
	Centered KeyModifiers
	// AltAction switches edge controls from scaling to skewing.
	AltAction KeyModifiers
	// AltSelection picks the active object under others when stacking is
	// preserved.
	AltSelection KeyModifiers
	// UniScale toggles UniformScaling for corner controls.
	UniScale KeyModifiers
}

// DefaultModifierKeys returns the standard bindings.
func DefaultModifierKeys() ModifierKeys {
	return ModifierKeys{
		Selection: ModShift,
		Centered:  ModAlt,
		AltAction: ModShift,
		UniScale:  ModShift,
	}
}

// CanvasOptions configures a Canvas. The zero value selects the defaults.
type CanvasOptions struct {
	StaticCanvasOptions

	// Keys overrides DefaultModifierKeys when non-nil.
	Keys *ModifierKeys

	DisableSelection       bool
	DisableUniformScaling  bool
	PreserveObjectStacking bool
	PerPixelTargetFind     bool
	// TargetFindTolerance widens per-pixel hit-testing by this many pixels.
	TargetFindTolerance float64
	// SelectionFullyContained makes the marquee select only objects it
	// contains entirely.
	SelectionFullyContained bool

	// FireRightClick and FireMiddleClick deliver mouse:down/up for those
	// buttons.
	FireRightClick  bool
	FireMiddleClick bool

	// PinchGestures registers two-finger scale and rotate handling.
	PinchGestures bool
}

// Canvas is a StaticCanvas with pointer interaction: selection, controls,
// transform sessions, marquee, free drawing and drag-and-drop. Ephemeral
// feedback is painted on a second surface, Top.
type Canvas struct {
	*StaticCanvas

	Keys ModifierKeys

	Selection               bool
	UniformScaling          bool
	CenteredScaling         bool
	CenteredRotation        bool
	PreserveObjectStacking  bool
	PerPixelTargetFind      bool
	TargetFindTolerance     float64
	SkipTargetFind          bool
	SelectionFullyContained bool
	FireRightClick          bool
	FireMiddleClick         bool

	// Marquee style.
	SelectionColor       string
	SelectionBorderColor string
	SelectionDashArray   []float64
	SelectionLineWidth   float64

	DefaultCursor     string
	HoverCursor       string
	MoveCursor        string
	FreeDrawingCursor string
	NotAllowedCursor  string

	// IsDrawingMode routes pointer input to FreeDrawingBrush.
	IsDrawingMode    bool
	FreeDrawingBrush Brush

	// Gestures is set when CanvasOptions.PinchGestures was given.
	Gestures *PinchGestures

	top        *gg.Context
	topDirty   bool
	topRenders uint64

	activeObject     *Object
	currentTransform *Transform

	target         *Object
	targets        []*Object
	hoveredTarget  *Object
	hoveredTargets []*Object
	dragTarget     *Object

	groupSelector *groupSelector

	pointers      pointerCache
	elementBounds Rect
	isClick       bool
	drawing       bool
	cursor        string

	injectQueue []injectedEvent
	injectMods  KeyModifiers
}

// NewCanvas creates an interactive canvas with a w×h logical surface.
func NewCanvas(w, h int, opts CanvasOptions) *Canvas {
	sc := &StaticCanvas{}
	sc.init(w, h, opts.StaticCanvasOptions)
	c := &Canvas{
		StaticCanvas:            sc,
		Keys:                    DefaultModifierKeys(),
		Selection:               !opts.DisableSelection,
		UniformScaling:          !opts.DisableUniformScaling,
		PreserveObjectStacking:  opts.PreserveObjectStacking,
		PerPixelTargetFind:      opts.PerPixelTargetFind,
		TargetFindTolerance:     opts.TargetFindTolerance,
		SelectionFullyContained: opts.SelectionFullyContained,
		FireRightClick:          opts.FireRightClick,
		FireMiddleClick:         opts.FireMiddleClick,
		SelectionColor:          "rgba(100,100,255,0.3)",
		SelectionBorderColor:    "rgba(255,255,255,0.3)",
		SelectionLineWidth:      1,
		DefaultCursor:           CursorDefault,
		HoverCursor:             CursorMove,
		MoveCursor:              CursorMove,
		FreeDrawingCursor:       CursorCrosshair,
		NotAllowedCursor:        CursorNotAllowed,
		cursor:                  CursorDefault,
	}
	if opts.Keys != nil {
		c.Keys = *opts.Keys
	}
	bw, bh := sc.backingSize()
	c.top = gg.NewContext(bw, bh)
	c.FreeDrawingBrush = NewPencilBrush(c)
	if opts.PinchGestures {
		c.Gestures = newPinchGestures(c)
	}
	sc.interactive = c
	return c
}

// Top returns the surface ephemeral feedback is painted on.
func (c *Canvas) Top() *gg.Context { return c.top }

// TopRenderCount returns how many times the top surface was repainted.
func (c *Canvas) TopRenderCount() uint64 { return c.topRenders }

// Cursor returns the cursor the host should show.
func (c *Canvas) Cursor() string { return c.cursor }

func (c *Canvas) setCursor(name string) {
	if name == "" {
		name = c.DefaultCursor
	}
	c.cursor = name
}

// --- active object ---

// ActiveObject returns the selected object or active selection, or nil.
func (c *Canvas) ActiveObject() *Object { return c.activeObject }

// ActiveObjects returns the selected objects: the members of an active
// selection, or the single active object.
func (c *Canvas) ActiveObjects() []*Object {
	a := c.activeObject
	if a == nil {
		return nil
	}
	if as := ActiveSelectionOf(a); as != nil {
		return slices.Clone(as.objects)
	}
	return []*Object{a}
}

// CurrentTransform returns the running transform session, or nil.
func (c *Canvas) CurrentTransform() *Transform { return c.currentTransform }

// SetActiveObject selects o, firing selection events for the difference
// with the previous selection. It reports false when o is already active or
// a deselect or select hook refused the change.
func (c *Canvas) SetActiveObject(o *Object, e *PointerEvent) bool {
	prev := c.ActiveObjects()
	ok := c.setActiveObject(o, e)
	c.fireSelectionEvents(prev, e)
	return ok
}

func (c *Canvas) setActiveObject(o *Object, e *PointerEvent) bool {
	prev := c.activeObject
	if o == nil || prev == o {
		return false
	}
	if !c.discardActive(e, o) && c.activeObject != nil {
		return false
	}
	if o.OnSelect != nil && o.OnSelect(&Event{E: e, Target: o}) {
		return false
	}
	c.activeObject = o
	if o.IsActiveSelection() {
		o.canvas = c.StaticCanvas
	}
	o.SetCoords()
	return true
}

// DiscardActiveObject clears the selection. It reports false when nothing
// was active or the deselect hook refused.
func (c *Canvas) DiscardActiveObject(e *PointerEvent) bool {
	prev := c.ActiveObjects()
	if len(prev) > 0 {
		c.Fire("before:selection:cleared", &Event{E: e, Deselected: []*Object{c.activeObject}})
	}
	ok := c.discardActive(e, nil)
	c.fireSelectionEvents(prev, e)
	return ok
}

// discardActive drops the active object without events. next is the object
// about to replace it, if any.
func (c *Canvas) discardActive(e *PointerEvent, next *Object) bool {
	a := c.activeObject
	if a == nil {
		return false
	}
	if a.OnDeselect != nil && a.OnDeselect(&Event{E: e, Target: next}) {
		return false
	}
	if t := c.currentTransform; t != nil && t.Target == a {
		c.endCurrentTransform(e)
	}
	if as := ActiveSelectionOf(a); as != nil {
		as.release(a)
		if c.hoveredTarget == a {
			c.hoveredTarget = nil
		}
	}
	c.activeObject = nil
	return true
}

// fireSelectionEvents diffs old against the current active objects and
// fires selected/deselected on the objects that changed plus one of
// selection:created, selection:updated or selection:cleared.
func (c *Canvas) fireSelectionEvents(old []*Object, e *PointerEvent) {
	cur := c.ActiveObjects()
	var added, removed []*Object
	for _, o := range old {
		if !slices.Contains(cur, o) {
			o.fire("deselected", &Event{E: e, Target: o})
			removed = append(removed, o)
		}
	}
	for _, o := range cur {
		if !slices.Contains(old, o) {
			o.fire("selected", &Event{E: e, Target: o})
			added = append(added, o)
		}
	}
	switch {
	case len(old) > 0 && len(cur) > 0:
		if len(added) > 0 || len(removed) > 0 {
			c.Fire("selection:updated", &Event{E: e, Selected: added, Deselected: removed})
		}
	case len(cur) > 0:
		c.Fire("selection:created", &Event{E: e, Selected: added})
	case len(old) > 0:
		c.Fire("selection:cleared", &Event{E: e, Deselected: removed})
	}
}

// --- transform sessions ---

// shouldCenterTransform reports whether action pivots on the centre. The
// centred modifier inverts the configured behaviour.
func (c *Canvas) shouldCenterTransform(o *Object, action string, modifier bool) bool {
	var centered bool
	switch action {
	case ActionScale, ActionScaleX, ActionScaleY, ActionResizing:
		centered = c.CenteredScaling || o.CenteredScaling
	case ActionRotate:
		centered = c.CenteredRotation || o.CenteredRotation
	}
	if centered {
		return !modifier
	}
	return modifier
}

// pointerInPlane maps the scene point into the plane o lives in.
func pointerInPlane(o *Object, p Point) Point {
	if o.group != nil {
		return SendPointToPlane(p, Identity, o.group.CalcTransformMatrix())
	}
	return p
}

// setupCurrentTransform starts a session on target. Any running session is
// finalized first.
func (c *Canvas) setupCurrentTransform(e *PointerEvent, target *Object, alreadySelected bool) {
	if c.currentTransform != nil {
		c.endCurrentTransform(e)
	}
	p := pointerInPlane(target, c.GetScenePoint(e))
	corner, control, _ := target.FindControl(c.GetViewportPoint(e), e.Touch)
	handler := ActionHandler(DragHandler)
	if alreadySelected && control != nil {
		handler = control.ActionHandler
	}
	action := actionFromCorner(alreadySelected, corner, e, target)
	altKey := e.Modifiers.Has(c.Keys.Centered)
	originX, originY := originFromCorner(target, corner)
	if c.shouldCenterTransform(target, action, altKey) {
		originX, originY = OriginCenter, OriginCenter
	}
	t := &Transform{
		Target:        target,
		Action:        action,
		ActionHandler: handler,
		Corner:        corner,
		ScaleX:        target.ScaleX,
		ScaleY:        target.ScaleY,
		SkewX:         target.SkewX,
		SkewY:         target.SkewY,
		Theta:         degreesToRadians(target.Angle),
		Width:         target.Width,
		Height:        target.Height,
		OffsetX:       p.X - target.Left,
		OffsetY:       p.Y - target.Top,
		OriginX:       originX,
		OriginY:       originY,
		Ex:            p.X,
		Ey:            p.Y,
		LastX:         p.X,
		LastY:         p.Y,
		ShiftKey:      e.Modifiers.Has(ModShift),
		AltKey:        altKey,
		Original:      saveObjectTransform(target),
	}
	if control == nil {
		t.Corner = ""
	} else {
		t.PointIndex = control.PointIndex
	}
	c.currentTransform = t
	c.Fire("before:transform", &Event{E: e, Transform: t, Target: target})
}

// transformObject feeds one pointer move into the running session.
func (c *Canvas) transformObject(e *PointerEvent) {
	t := c.currentTransform
	if !c.sessionAlive(t) {
		c.abandonTransform()
		return
	}
	p := pointerInPlane(t.Target, c.GetScenePoint(e))
	t.ShiftKey = e.Modifiers.Has(ModShift)
	t.AltKey = e.Modifiers.Has(c.Keys.Centered)
	c.performTransformAction(e, t, p)
	if t.ActionPerformed {
		c.RequestRenderAll()
	}
}

func (c *Canvas) performTransformAction(e *PointerEvent, t *Transform, p Point) {
	performed := t.ActionHandler != nil && t.ActionHandler(e, t, p.X, p.Y)
	if performed {
		t.Target.SetCoords()
	}
	if t.Action == ActionDrag && performed {
		t.Target.isMoving = true
		c.setCursor(firstNonEmpty(t.Target.MoveCursor, c.MoveCursor))
	}
	t.LastX, t.LastY = p.X, p.Y
	t.ActionPerformed = t.ActionPerformed || performed
}

// sessionAlive reports whether the target of t is still on this canvas.
func (c *Canvas) sessionAlive(t *Transform) bool {
	return t != nil && t.Target != nil && !t.Target.disposed && t.Target.canvas == c.StaticCanvas
}

// abandonTransform drops the session without committing it.
func (c *Canvas) abandonTransform() {
	if t := c.currentTransform; t != nil {
		logger().Debug("transform abandoned", "action", t.Action)
		if t.Target != nil {
			t.Target.isMoving = false
		}
	}
	c.currentTransform = nil
}

// finalizeCurrentTransform fires the single object:modified of a session
// that changed its target.
func (c *Canvas) finalizeCurrentTransform(e *PointerEvent) {
	t := c.currentTransform
	if !c.sessionAlive(t) {
		return
	}
	target := t.Target
	target.SetCoords()
	if t.ActionPerformed {
		ev := &Event{E: e, Target: target, Transform: t, Action: t.Action}
		c.Fire("object:modified", ev)
		target.fire("modified", &Event{E: e, Target: target, Transform: t, Action: t.Action})
	}
}

// endCurrentTransform commits and clears the running session.
func (c *Canvas) endCurrentTransform(e *PointerEvent) {
	t := c.currentTransform
	if t == nil {
		return
	}
	if c.sessionAlive(t) {
		c.finalizeCurrentTransform(e)
	} else {
		logger().Debug("transform abandoned", "action", t.Action)
	}
	if t.Target != nil {
		t.Target.isMoving = false
	}
	c.currentTransform = nil
}

// EndCurrentTransform commits a running session as if the pointer was
// released.
func (c *Canvas) EndCurrentTransform() {
	c.endCurrentTransform(nil)
}

// --- hooks called by StaticCanvas ---

func (c *Canvas) resizeTop(bw, bh int) {
	_ = c.top.Resize(bw, bh)
	c.topDirty = false
}

// beforeObjectRemoved keeps selection, hover and session state consistent
// with o leaving the canvas.
func (c *Canvas) beforeObjectRemoved(o *Object) {
	if sessionInvolves(c.currentTransform, o) {
		c.abandonTransform()
	}
	a := c.activeObject
	switch {
	case o == a:
		c.Fire("before:selection:cleared", &Event{Deselected: []*Object{o}})
		prev := c.ActiveObjects()
		c.discardActive(nil, nil)
		c.activeObject = nil
		c.fireSelectionEvents(prev, nil)
	case a != nil && o.group == a && a.IsActiveSelection():
		logger().Warn("removed object left the active selection", "id", o.ID)
		prev := c.ActiveObjects()
		as := ActiveSelectionOf(a)
		as.Remove(a, o)
		if len(as.objects) == 0 {
			c.activeObject = nil
		}
		c.fireSelectionEvents(prev, nil)
	}
	if c.hoveredTarget == o {
		c.hoveredTarget = nil
		c.hoveredTargets = nil
	}
	if c.target == o {
		c.target = nil
	}
}

// sessionInvolves reports whether t acts on o, on a group nested in o, or on
// an active selection o belongs to.
func sessionInvolves(t *Transform, o *Object) bool {
	if t == nil || t.Target == nil {
		return false
	}
	if o.group == t.Target && t.Target.IsActiveSelection() {
		return true
	}
	for p := t.Target; p != nil; p = p.group {
		if p == o {
			return true
		}
	}
	return false
}

func (c *Canvas) clearInteraction() {
	c.DiscardActiveObject(nil)
	c.activeObject = nil
	c.abandonTransform()
	c.hoveredTarget, c.hoveredTargets = nil, nil
	c.target, c.targets = nil, nil
	c.groupSelector = nil
	c.clearTop()
}

func (c *Canvas) beforeRenderAll() {
	if c.topDirty && c.groupSelector == nil && !c.IsDrawingMode {
		c.clearTop()
	}
}

// chooseObjectsToRender lifts the active objects to the top of the paint
// order unless stacking is preserved.
func (c *Canvas) chooseObjectsToRender() []*Object {
	active := c.ActiveObjects()
	if c.PreserveObjectStacking || len(active) == 0 {
		return c.objects
	}
	objs := make([]*Object, 0, len(c.objects))
	var lifted []*Object
	for _, o := range c.objects {
		if slices.Contains(active, o) {
			lifted = append(lifted, o)
			continue
		}
		objs = append(objs, o)
	}
	return append(objs, lifted...)
}

// drawControls paints the chrome of the active object in viewport space.
func (c *Canvas) drawControls(dc *gg.Context) {
	a := c.activeObject
	if a == nil || a.canvas != c.StaticCanvas {
		return
	}
	if as := ActiveSelectionOf(a); as != nil {
		noControls := false
		member := &ControlStyle{HasControls: &noControls, forActiveSelection: true}
		for _, o := range as.objects {
			o.renderControls(dc, member)
		}
	}
	a.renderControls(dc, nil)
}

func (c *Canvas) destroyInteraction() {
	c.currentTransform = nil
	c.activeObject = nil
	c.hoveredTarget, c.hoveredTargets = nil, nil
	c.target, c.targets = nil, nil
	c.dragTarget = nil
	c.groupSelector = nil
	c.injectQueue = nil
	c.top.Clear()
	_ = c.top.Close()
}

// --- object list helpers ---

// CollectObjects returns the selectable visible objects touching the scene
// rectangle r, topmost first. With fullyContained only objects inside r
// are returned.
func (c *Canvas) CollectObjects(r Rect, fullyContained bool) []*Object {
	tl := Pt(r.X, r.Y)
	br := Pt(r.X+r.Width, r.Y+r.Height)
	var out []*Object
	for i := len(c.objects) - 1; i >= 0; i-- {
		o := c.objects[i]
		if !o.Selectable || !o.Visible {
			continue
		}
		hit := o.IsContainedWithinRect(tl, br)
		if !fullyContained {
			hit = hit || o.IntersectsWithRect(tl, br) || o.ContainsPoint(tl) || o.ContainsPoint(br)
		}
		if hit {
			out = append(out, o)
		}
	}
	return out
}
