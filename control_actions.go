package easel

import (
	"math"
)

// Event names fired while a transform is in progress, on the target as
// the bare name and on the canvas with an "object:" prefix.
const (
	EventMoving     = "moving"
	EventScaling    = "scaling"
	EventRotating   = "rotating"
	EventSkewing    = "skewing"
	EventResizing   = "resizing"
	EventModifyPoly = "modifyPoly"
	EventModifyPath = "modifyPath"
)

// Prebuilt handlers used by the default controls.
var (
	ScalingEqually       = WrapWithFireEvent(EventScaling, WrapWithFixedAnchor(scaleObjectFromCorner))
	ScalingX             = WrapWithFireEvent(EventScaling, WrapWithFixedAnchor(scaleObjectX))
	ScalingY             = WrapWithFireEvent(EventScaling, WrapWithFixedAnchor(scaleObjectY))
	RotationWithSnapping = WrapWithFireEvent(EventRotating, WrapWithFixedAnchor(rotateObjectWithSnapping))
	ChangeWidth          = WrapWithFireEvent(EventResizing, WrapWithFixedAnchor(changeObjectWidth))
)

// WrapWithFixedAnchor keeps the point of the target at the transform's
// origin in place while h runs. The origin is read again afterwards because
// scaling through the anchor flips it.
func WrapWithFixedAnchor(h ActionHandler) ActionHandler {
	return func(e *PointerEvent, t *Transform, x, y float64) bool {
		target := t.Target
		constraint := target.TranslateToOriginPoint(target.GetRelativeCenterPoint(), t.OriginX, t.OriginY)
		performed := h(e, t, x, y)
		target.SetPositionByOrigin(constraint, t.OriginX, t.OriginY)
		return performed
	}
}

// WrapWithFireEvent fires name when h reports a change.
func WrapWithFireEvent(name string, h ActionHandler) ActionHandler {
	return func(e *PointerEvent, t *Transform, x, y float64) bool {
		performed := h(e, t, x, y)
		if performed {
			fireTransformEvent(name, &Event{E: e, Transform: t, Pointer: Pt(x, y), PointIndex: t.PointIndex})
		}
		return performed
	}
}

func fireTransformEvent(name string, ev *Event) {
	target := ev.Transform.Target
	ev.Target = target
	if target.canvas != nil {
		target.canvas.Fire("object:"+name, ev)
	}
	target.fire(name, ev)
}

// DragHandler moves the target so it keeps its offset from the pointer.
func DragHandler(e *PointerEvent, t *Transform, x, y float64) bool {
	target := t.Target
	newLeft, newTop := x-t.OffsetX, y-t.OffsetY
	moveX := !target.LockMovementX && target.Left != newLeft
	moveY := !target.LockMovementY && target.Top != newTop
	if moveX {
		target.Left = newLeft
	}
	if moveY {
		target.Top = newTop
	}
	if moveX || moveY {
		fireTransformEvent(EventMoving, &Event{E: e, Transform: t, Pointer: Pt(x, y)})
	}
	return moveX || moveY
}

func interactiveOf(o *Object) *Canvas {
	if o == nil || o.canvas == nil {
		return nil
	}
	return o.canvas.interactive
}

// isAltAction reports whether the modifier switching scale to skew is held.
func isAltAction(e *PointerEvent, o *Object) bool {
	c := interactiveOf(o)
	return c != nil && e != nil && e.Modifiers.Has(c.Keys.AltAction)
}

// scaleProportionally reports whether corner scaling keeps the aspect ratio:
// UniformScaling unless the uniform-scale modifier toggles it.
func scaleProportionally(e *PointerEvent, o *Object) bool {
	c := interactiveOf(o)
	if c == nil {
		return true
	}
	toggled := e != nil && e.Modifiers.Has(c.Keys.UniScale)
	return c.UniformScaling != toggled
}

// scalingIsForbidden reports whether locks forbid scaling along by ("x",
// "y" or "" for both).
func scalingIsForbidden(o *Object, by string, proportional bool) bool {
	lockX, lockY := o.LockScalingX, o.LockScalingY
	if lockX && lockY {
		return true
	}
	if by == "" && (lockX || lockY) && proportional {
		return true
	}
	if lockX && by == "x" {
		return true
	}
	if lockY && by == "y" {
		return true
	}
	// zero-size objects cannot be scaled along that axis
	sw := o.strokeWidthForDims()
	if o.Width == 0 && sw == 0 && by != "y" {
		return true
	}
	if o.Height == 0 && sw == 0 && by != "x" {
		return true
	}
	return false
}

// normalizePoint maps (x, y) to the target's unrotated frame, relative to
// the given origin.
func normalizePoint(o *Object, p Point, originX, originY float64) Point {
	center := o.GetRelativeCenterPoint()
	anchor := o.TranslateToGivenOrigin(center, OriginCenter, OriginCenter, originX, originY)
	if o.Angle != 0 {
		p = p.Rotate(-degreesToRadians(o.Angle), center)
	}
	return p.Sub(anchor)
}

// localPoint is the pointer relative to the anchor in the target's
// unrotated frame, less padding and the control's offset.
func localPoint(t *Transform, originX, originY, x, y float64) Point {
	target := t.Target
	padding := target.Padding / target.zoom()
	p := normalizePoint(target, Pt(x, y), originX, originY)
	if p.X >= padding {
		p.X -= padding
	}
	if p.X <= -padding {
		p.X += padding
	}
	if p.Y >= padding {
		p.Y -= padding
	}
	if p.Y <= -padding {
		p.Y += padding
	}
	if c := target.Controls.Get(t.Corner); c != nil {
		p.X -= c.OffsetX
		p.Y -= c.OffsetY
	}
	return p
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func orOne(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 1
}

func scaleObject(e *PointerEvent, t *Transform, x, y float64, by string) bool {
	target := t.Target
	proportional := scaleProportionally(e, target)
	if scalingIsForbidden(target, by, proportional) {
		return false
	}
	var scaleX, scaleY float64
	if t.GestureScale != 0 {
		scaleX = t.ScaleX * t.GestureScale
		scaleY = t.ScaleY * t.GestureScale
	} else {
		p := localPoint(t, t.OriginX, t.OriginY, x, y)
		signX, signY := 1.0, 1.0
		if by != "y" {
			signX = sign(orOne(p.X, t.SignX))
		}
		if by != "x" {
			signY = sign(orOne(p.Y, t.SignY))
		}
		if t.SignX == 0 {
			t.SignX = signX
		}
		if t.SignY == 0 {
			t.SignY = signY
		}
		if target.LockScalingFlip && (t.SignX != signX || t.SignY != signY) {
			return false
		}
		dim := target.TransformedDimensions()
		if proportional && by == "" {
			distance := math.Abs(p.X) + math.Abs(p.Y)
			orig := t.Original
			originalDistance := math.Abs(dim.X*orig.ScaleX/target.ScaleX) + math.Abs(dim.Y*orig.ScaleY/target.ScaleY)
			if originalDistance == 0 {
				return false
			}
			s := distance / originalDistance
			scaleX, scaleY = orig.ScaleX*s, orig.ScaleY*s
		} else {
			scaleX = math.Abs(p.X * target.ScaleX / nonZero(dim.X))
			scaleY = math.Abs(p.Y * target.ScaleY / nonZero(dim.Y))
		}
		if isTransformCentered(t) {
			scaleX *= 2
			scaleY *= 2
		}
		if t.SignX != signX && by != "y" {
			t.OriginX = invertOrigin(t.OriginX)
			scaleX = -scaleX
			t.SignX = signX
		}
		if t.SignY != signY && by != "x" {
			t.OriginY = invertOrigin(t.OriginY)
			scaleY = -scaleY
			t.SignY = signY
		}
	}
	oldX, oldY := target.ScaleX, target.ScaleY
	oldFlipX, oldFlipY := target.FlipX, target.FlipY
	switch by {
	case "":
		if !target.LockScalingX {
			target.SetScaleX(scaleX)
		}
		if !target.LockScalingY {
			target.SetScaleY(scaleY)
		}
	case "x":
		target.SetScaleX(scaleX)
	case "y":
		target.SetScaleY(scaleY)
	}
	return oldX != target.ScaleX || oldY != target.ScaleY ||
		oldFlipX != target.FlipX || oldFlipY != target.FlipY
}

func scaleObjectFromCorner(e *PointerEvent, t *Transform, x, y float64) bool {
	return scaleObject(e, t, x, y, "")
}

func scaleObjectX(e *PointerEvent, t *Transform, x, y float64) bool {
	return scaleObject(e, t, x, y, "x")
}

func scaleObjectY(e *PointerEvent, t *Transform, x, y float64) bool {
	return scaleObject(e, t, x, y, "y")
}

// ScalingXOrSkewingY scales horizontally, or skews vertically while the
// alternate-action modifier is held.
func ScalingXOrSkewingY(e *PointerEvent, t *Transform, x, y float64) bool {
	if isAltAction(e, t.Target) {
		return SkewHandlerY(e, t, x, y)
	}
	return ScalingX(e, t, x, y)
}

// ScalingYOrSkewingX scales vertically, or skews horizontally while the
// alternate-action modifier is held.
func ScalingYOrSkewingX(e *PointerEvent, t *Transform, x, y float64) bool {
	if isAltAction(e, t.Target) {
		return SkewHandlerX(e, t, x, y)
	}
	return ScalingY(e, t, x, y)
}

// SkewHandlerX skews along x, anchored on the side opposite the skew.
func SkewHandlerX(e *PointerEvent, t *Transform, x, y float64) bool {
	return skewHandler("x", e, t, x, y)
}

// SkewHandlerY skews along y, anchored on the side opposite the skew.
func SkewHandlerY(e *PointerEvent, t *Transform, x, y float64) bool {
	return skewHandler("y", e, t, x, y)
}

func skewHandler(axis string, e *PointerEvent, t *Transform, x, y float64) bool {
	target := t.Target
	var locked, flip, counterFlip bool
	var skew, counterOrigin float64
	if axis == "x" {
		locked, flip, counterFlip = target.LockSkewingX, target.FlipX, target.FlipY
		skew, counterOrigin = target.SkewX, t.OriginY
	} else {
		locked, flip, counterFlip = target.LockSkewingY, target.FlipY, target.FlipX
		skew, counterOrigin = target.SkewY, t.OriginX
	}
	if locked {
		return false
	}
	counterFactor := resolveOrigin(counterOrigin)
	if counterFlip {
		counterFactor = -counterFactor
	}
	side := -sign(counterFactor)
	if flip {
		side = -side
	}
	// a centred counter origin skews as if anchored on the far side
	if side == 0 {
		side = 1
	}
	var direction float64
	lp := localPoint(t, OriginCenter, OriginCenter, x, y)
	axisValue := lp.X
	if axis == "y" {
		axisValue = lp.Y
	}
	if (skew == 0 && axisValue > 0) || skew > 0 {
		direction = side
	} else {
		direction = -side
	}
	origin := -direction*0.5 + 0.5

	st := *t
	st.skewingSide = side
	if axis == "x" {
		st.OriginX = origin
	} else {
		st.OriginY = origin
	}
	h := WrapWithFireEvent(EventSkewing, WrapWithFixedAnchor(func(e *PointerEvent, t *Transform, x, y float64) bool {
		return skewObject(axis, t, Pt(x, y))
	}))
	return h(e, &st, x, y)
}

func skewObject(axis string, t *Transform, pointer Point) bool {
	target := t.Target
	offsetV := pointer.Sub(Pt(t.Ex, t.Ey)).Div(Pt(target.ScaleX, target.ScaleY))
	var offset, before, start float64
	if axis == "x" {
		offset, before, start = offsetV.X, target.SkewX, t.SkewX
	} else {
		offset, before, start = offsetV.Y, target.SkewY, t.SkewY
	}
	shearingStart := math.Tan(degreesToRadians(start))
	d := target.currentDimOptions()
	d.scaleX, d.scaleY = 1, 1
	var size float64
	if axis == "y" {
		d.skewX = 0
		size = target.getTransformedDimensions(d).X
	} else {
		size = target.getTransformedDimensions(d).Y
	}
	shearing := 2*offset*t.skewingSide/math.Max(size, 1) + shearingStart
	skewing := radiansToDegrees(math.Atan(shearing))
	if axis == "x" {
		target.SkewX = skewing
	} else {
		target.SkewY = skewing
	}
	changed := before != skewing
	if changed && axis == "y" && target.SkewX != 0 {
		// keep the apparent width while skewing y
		db := target.currentDimOptions()
		db.skewY = before
		dimBefore := target.getTransformedDimensions(db)
		dimAfter := target.TransformedDimensions()
		if dimAfter.X != 0 {
			if f := dimBefore.X / dimAfter.X; f != 1 {
				target.SetScaleX(f * target.ScaleX)
			}
		}
	}
	return changed
}

// rotateObjectWithSnapping rotates around the transform origin by the angle
// the pointer swept since the press, snapping to SnapAngle multiples within
// SnapThreshold.
func rotateObjectWithSnapping(e *PointerEvent, t *Transform, x, y float64) bool {
	target := t.Target
	pivot := target.TranslateToOriginPoint(target.GetRelativeCenterPoint(), t.OriginX, t.OriginY)
	if target.LockRotation {
		return false
	}
	last := math.Atan2(t.Ey-pivot.Y, t.Ex-pivot.X)
	cur := math.Atan2(y-pivot.Y, x-pivot.X)
	angle := radiansToDegrees(cur - last + t.Theta)
	if snap := target.SnapAngle; snap > 0 {
		threshold := target.SnapThreshold
		if threshold == 0 {
			threshold = snap
		}
		right := math.Ceil(angle/snap) * snap
		left := math.Floor(angle/snap) * snap
		if math.Abs(angle-left) < threshold {
			angle = left
		} else if math.Abs(angle-right) < threshold {
			angle = right
		}
	}
	if angle < 0 {
		angle += 360
	}
	angle = math.Mod(angle, 360)
	changed := target.Angle != angle
	target.Angle = angle
	return changed
}

// changeObjectWidth resizes the unscaled width from the dragged side. Text
// boxes re-wrap to the new width.
func changeObjectWidth(e *PointerEvent, t *Transform, x, y float64) bool {
	p := localPoint(t, t.OriginX, t.OriginY, x, y)
	ox := resolveOrigin(t.OriginX)
	if !(ox == 0 || (ox > 0 && p.X < 0) || (ox < 0 && p.X > 0)) {
		return false
	}
	target := t.Target
	strokePadding := target.strokeWidthForDims()
	if target.StrokeUniform {
		strokePadding /= target.ScaleX
	}
	multiplier := 1.0
	if isTransformCentered(t) {
		multiplier = 2
	}
	oldWidth := target.Width
	newWidth := math.Abs(p.X*multiplier/target.ScaleX) - strokePadding
	target.Width = math.Max(newWidth, 1)
	if s, ok := target.shape.(interface{ InitDimensions(*Object) }); ok {
		s.InitDimensions(target)
	}
	return oldWidth != target.Width
}

// vertex editing

func polyPositionHandler(dim Point, final Matrix, o *Object, c *Control) Point {
	p := o.shape.(*Poly)
	if c.PointIndex >= len(p.Points) {
		return Point{}
	}
	pt := p.Points[c.PointIndex].Sub(p.PathOffset)
	return pt.Transform(multiplyAffine(o.viewportTransform(), o.CalcTransformMatrix()), false)
}

// polyActionHandler moves vertex i to the pointer and keeps the previous
// vertex fixed in the parent plane while the bounds change.
func polyActionHandler(i int) ActionHandler {
	move := func(e *PointerEvent, t *Transform, x, y float64) bool {
		o := t.Target
		p, ok := o.shape.(*Poly)
		if !ok || i >= len(p.Points) {
			return false
		}
		anchorIndex := i - 1
		if i == 0 {
			anchorIndex = len(p.Points) - 1
		}
		anchor := p.Points[anchorIndex]
		before := anchor.Sub(p.PathOffset).Transform(o.CalcOwnMatrix(), false)

		local := SendPointToPlane(Pt(x, y), Identity, o.CalcOwnMatrix())
		p.Points[i] = local.Add(p.PathOffset)
		p.SetDimensions(o)

		after := p.Points[anchorIndex].Sub(p.PathOffset).Transform(o.CalcOwnMatrix(), false)
		diff := after.Sub(before)
		o.Left -= diff.X
		o.Top -= diff.Y
		return true
	}
	return WrapWithFireEvent(EventModifyPoly, func(e *PointerEvent, t *Transform, x, y float64) bool {
		t.PointIndex = i
		return move(e, t, x, y)
	})
}

// pathEnd returns the end point of command i.
func pathEnd(cmd PathCommand) Point {
	n := len(cmd.Args)
	return Pt(cmd.Args[n-2], cmd.Args[n-1])
}

func pathPositionHandler(dim Point, final Matrix, o *Object, c *Control) Point {
	p := o.shape.(*Path)
	if c.PointIndex >= len(p.Commands) || len(p.Commands[c.PointIndex].Args) < 2 {
		return Point{}
	}
	pt := pathEnd(p.Commands[c.PointIndex]).Sub(p.PathOffset)
	return pt.Transform(multiplyAffine(o.viewportTransform(), o.CalcTransformMatrix()), false)
}

// pathActionHandler moves the end point of command i, keeping the path's
// first point fixed in the parent plane.
func pathActionHandler(i int) ActionHandler {
	return WrapWithFireEvent(EventModifyPath, func(e *PointerEvent, t *Transform, x, y float64) bool {
		t.PointIndex = i
		o := t.Target
		p, ok := o.shape.(*Path)
		if !ok || i >= len(p.Commands) || len(p.Commands[i].Args) < 2 {
			return false
		}
		anchorIndex := 0
		if i == 0 {
			anchorIndex = len(p.Commands) - 1
		}
		anchorCmd := p.Commands[anchorIndex]
		if len(anchorCmd.Args) < 2 {
			return false
		}
		anchor := pathEnd(anchorCmd)
		before := anchor.Sub(p.PathOffset).Transform(o.CalcOwnMatrix(), false)

		local := SendPointToPlane(Pt(x, y), Identity, o.CalcOwnMatrix()).Add(p.PathOffset)
		args := p.Commands[i].Args
		n := len(args)
		if args[n-2] == local.X && args[n-1] == local.Y {
			return false
		}
		args[n-2], args[n-1] = local.X, local.Y
		p.SourcePath = ""
		p.setDimensions(o)

		after := pathEnd(p.Commands[anchorIndex]).Sub(p.PathOffset).Transform(o.CalcOwnMatrix(), false)
		diff := after.Sub(before)
		o.Left -= diff.X
		o.Top -= diff.Y
		return true
	})
}

// cursors

var (
	scaleCursorMap = [...]string{"e", "se", "s", "sw", "w", "nw", "n", "ne", "e"}
	skewCursorMap  = [...]string{"ns", "nesw", "ew", "nwse"}
)

// cornerQuadrant returns the 45 degree sector the control points to.
func cornerQuadrant(o *Object, c *Control) int {
	a := o.TotalAngle() + radiansToDegrees(math.Atan2(c.Y, c.X)) + 360
	return int(math.Round(math.Mod(a, 360) / 45))
}

func scaleCursorStyleHandler(e *PointerEvent, c *Control, o *Object) string {
	by := ""
	switch {
	case c.X != 0 && c.Y == 0:
		by = "x"
	case c.X == 0 && c.Y != 0:
		by = "y"
	}
	if scalingIsForbidden(o, by, scaleProportionally(e, o)) {
		return CursorNotAllowed
	}
	return scaleCursorMap[cornerQuadrant(o, c)] + "-resize"
}

func skewCursorStyleHandler(e *PointerEvent, c *Control, o *Object) string {
	if c.X != 0 && o.LockSkewingY {
		return CursorNotAllowed
	}
	if c.Y != 0 && o.LockSkewingX {
		return CursorNotAllowed
	}
	return skewCursorMap[cornerQuadrant(o, c)%4] + "-resize"
}

func scaleSkewCursorStyleHandler(e *PointerEvent, c *Control, o *Object) string {
	if isAltAction(e, o) {
		return skewCursorStyleHandler(e, c, o)
	}
	return scaleCursorStyleHandler(e, c, o)
}

func rotationStyleHandler(e *PointerEvent, c *Control, o *Object) string {
	if o.LockRotation {
		return CursorNotAllowed
	}
	return c.CursorStyle
}

func scaleOrSkewActionName(e *PointerEvent, c *Control, o *Object) string {
	alt := isAltAction(e, o)
	switch {
	case c.X == 0:
		if alt {
			return ActionSkewX
		}
		return ActionScaleY
	case c.Y == 0:
		if alt {
			return ActionSkewY
		}
		return ActionScaleX
	}
	return ""
}
