package easel

import (
	"math"
	"slices"
	"strconv"
	"sync"

	"github.com/gogpu/gg"
)

// ActionHandler applies a pointer move to the transform's target. x and y
// are in the target's parent plane. It reports whether anything changed.
type ActionHandler func(e *PointerEvent, t *Transform, x, y float64) bool

// ControlMouseHandler runs when a control is pressed or released.
type ControlMouseHandler func(e *PointerEvent, t *Transform, x, y float64) bool

// Control describes one handle of an object's selection chrome. Controls are
// declarative and shared between objects; per-drag state lives in Transform.
type Control struct {
	// Visible is the default visibility. Object.SetControlVisible overrides
	// it per object.
	Visible bool
	// ActionName is the action reported by GetActionName unless
	// ActionNameFunc overrides it.
	ActionName string
	// Angle rotates the control's hit box.
	Angle float64
	// X and Y place the control in the object's box, from -0.5 to 0.5.
	X, Y float64
	// OffsetX and OffsetY move the control by fixed screen pixels.
	OffsetX, OffsetY float64
	// SizeX/SizeY and TouchSizeX/TouchSizeY override the object's corner
	// sizes when non-zero.
	SizeX, SizeY           float64
	TouchSizeX, TouchSizeY float64
	CursorStyle            string
	// WithConnection draws a line from the box edge to the control.
	WithConnection bool

	ActionHandler    ActionHandler
	MouseDownHandler ControlMouseHandler
	MouseUpHandler   ControlMouseHandler

	// ActionNameFunc resolves the action for a modifier combination.
	ActionNameFunc func(e *PointerEvent, c *Control, o *Object) string
	// CursorStyleFunc returns the hover cursor.
	CursorStyleFunc func(e *PointerEvent, c *Control, o *Object) string
	// PositionFunc projects the control into viewport space. dim is the
	// object's viewport size including padding; final maps the
	// object-centred, rotated, unzoomed plane to the viewport.
	PositionFunc func(dim Point, final Matrix, o *Object, c *Control) Point
	// RenderFunc draws the control centred at (left, top) in viewport space.
	RenderFunc func(dc *gg.Context, left, top float64, style *ControlStyle, o *Object)

	// PointIndex is the vertex a poly or path control edits.
	PointIndex int
}

// ControlStyle overrides the owning object's chrome style while drawing.
type ControlStyle struct {
	CornerSize         float64
	CornerColor        string
	CornerStrokeColor  string
	CornerStyle        string
	TransparentCorners *bool
	CornerDashArray    []float64
	BorderColor        string
	BorderDashArray    []float64
	HasBorders         *bool
	HasControls        *bool
	// forActiveSelection draws a member's border inside an active selection.
	forActiveSelection bool
}

// ShouldActivate reports whether a press at the viewport point p hits the
// control. The object must be the active object and the control visible.
func (c *Control) ShouldActivate(name string, o *Object, p Point, quad [4]Point) bool {
	if o.canvas == nil || o.canvas.interactive == nil || o.canvas.interactive.ActiveObject() != o {
		return false
	}
	return o.IsControlVisible(name) && PointInPolygon(p, quad[:])
}

// GetActionName returns the logical action the control performs for e.
func (c *Control) GetActionName(e *PointerEvent, o *Object) string {
	if c.ActionNameFunc != nil {
		return c.ActionNameFunc(e, c, o)
	}
	return c.ActionName
}

// Cursor returns the hover cursor for the control.
func (c *Control) Cursor(e *PointerEvent, o *Object) string {
	if c.CursorStyleFunc != nil {
		return c.CursorStyleFunc(e, c, o)
	}
	return c.CursorStyle
}

// Position returns the control centre in viewport space.
func (c *Control) Position(dim Point, final Matrix, o *Object) Point {
	if c.PositionFunc != nil {
		return c.PositionFunc(dim, final, o, c)
	}
	return Pt(c.X*dim.X+c.OffsetX, c.Y*dim.Y+c.OffsetY).Transform(final, false)
}

// CalcCornerCoords returns the hit quad tl, tr, br, bl of a control centred
// at (cx, cy).
func (c *Control) CalcCornerCoords(angle, objectCornerSize, cx, cy float64, touch bool) [4]Point {
	sx, sy := c.SizeX, c.SizeY
	if touch {
		sx, sy = c.TouchSizeX, c.TouchSizeY
	}
	if sx == 0 {
		sx = objectCornerSize
	}
	if sy == 0 {
		sy = objectCornerSize
	}
	t := multiplyAll(translateMatrix(cx, cy), RotateMatrix(angle+c.Angle), scaleMatrix(sx, sy))
	return [4]Point{
		Pt(-0.5, -0.5).Transform(t, false),
		Pt(0.5, -0.5).Transform(t, false),
		Pt(0.5, 0.5).Transform(t, false),
		Pt(-0.5, 0.5).Transform(t, false),
	}
}

// Render draws the handle.
func (c *Control) Render(dc *gg.Context, left, top float64, style *ControlStyle, o *Object) {
	if c.RenderFunc != nil {
		c.RenderFunc(dc, left, top, style, o)
		return
	}
	cornerStyle := o.CornerStyle
	if style != nil && style.CornerStyle != "" {
		cornerStyle = style.CornerStyle
	}
	if cornerStyle == "circle" {
		RenderCircleControl(dc, left, top, c, style, o)
		return
	}
	RenderSquareControl(dc, left, top, c, style, o)
}

type controlPaint struct {
	xSize, ySize float64
	fill         gg.RGBA
	stroke       gg.RGBA
	doFill       bool
	doStroke     bool
	dash         []float64
}

func resolveControlPaint(c *Control, style *ControlStyle, o *Object) controlPaint {
	if style == nil {
		style = &ControlStyle{}
	}
	size := o.CornerSize
	if style.CornerSize != 0 {
		size = style.CornerSize
	}
	p := controlPaint{xSize: c.SizeX, ySize: c.SizeY}
	if p.xSize == 0 {
		p.xSize = size
	}
	if p.ySize == 0 {
		p.ySize = size
	}
	transparent := o.TransparentCorners
	if style.TransparentCorners != nil {
		transparent = *style.TransparentCorners
	}
	cornerColor := firstNonEmpty(style.CornerColor, o.CornerColor)
	strokeColor := firstNonEmpty(style.CornerStrokeColor, o.CornerStrokeColor)
	fill, _ := ParseColor(cornerColor)
	p.fill = fill
	if transparent {
		p.stroke = fill
		p.doStroke = true
	} else {
		p.doFill = true
		if s, ok := ParseColor(strokeColor); ok && strokeColor != "" {
			p.stroke = s
			p.doStroke = true
		}
	}
	p.dash = style.CornerDashArray
	if p.dash == nil {
		p.dash = o.CornerDashArray
	}
	return p
}

func (p controlPaint) apply(dc *gg.Context) {
	if p.doFill {
		dc.SetFillBrush(gg.Solid(p.fill))
		_ = dc.FillPreserve()
	}
	if p.doStroke {
		dc.SetStrokeBrush(gg.Solid(p.stroke))
		dc.SetLineWidth(1)
		if len(p.dash) > 0 {
			dc.SetDash(p.dash...)
		} else {
			dc.ClearDash()
		}
		_ = dc.StrokePreserve()
	}
	dc.ClearPath()
}

// RenderCircleControl draws a round handle. Unequal sizes draw an ellipse.
func RenderCircleControl(dc *gg.Context, left, top float64, c *Control, style *ControlStyle, o *Object) {
	p := resolveControlPaint(c, style, o)
	dc.Push()
	defer dc.Pop()
	dc.ClearPath()
	dc.DrawEllipse(left, top, p.xSize/2, p.ySize/2)
	p.apply(dc)
}

// RenderSquareControl draws a square handle rotated with the object.
func RenderSquareControl(dc *gg.Context, left, top float64, c *Control, style *ControlStyle, o *Object) {
	p := resolveControlPaint(c, style, o)
	dc.Push()
	defer dc.Pop()
	dc.Translate(left, top)
	dc.Rotate(degreesToRadians(o.TotalAngle()))
	dc.ClearPath()
	dc.DrawRectangle(-p.xSize/2, -p.ySize/2, p.xSize, p.ySize)
	p.apply(dc)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ControlSet is an ordered map of named controls. Hit-testing walks it from
// the last entry to the first.
type ControlSet struct {
	names    []string
	controls map[string]*Control
	version  uint64
}

// NewControlSet returns an empty set.
func NewControlSet() *ControlSet {
	return &ControlSet{controls: make(map[string]*Control)}
}

// Set adds or replaces the named control.
func (s *ControlSet) Set(name string, c *Control) {
	if _, ok := s.controls[name]; !ok {
		s.names = append(s.names, name)
	}
	s.controls[name] = c
	s.version++
}

// Get returns the named control or nil.
func (s *ControlSet) Get(name string) *Control {
	if s == nil {
		return nil
	}
	return s.controls[name]
}

// Delete removes the named control.
func (s *ControlSet) Delete(name string) {
	if _, ok := s.controls[name]; !ok {
		return
	}
	delete(s.controls, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	s.version++
}

// Names returns the control names in order. The slice must not be mutated.
func (s *ControlSet) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Len returns the number of controls.
func (s *ControlSet) Len() int { return len(s.names) }

// Clone returns a copy whose entries can be replaced without affecting s.
// The controls themselves are shared.
func (s *ControlSet) Clone() *ControlSet {
	out := NewControlSet()
	for _, n := range s.names {
		out.Set(n, s.controls[n])
	}
	return out
}

var (
	defaultControlsOnce sync.Once
	defaultControls     *ControlSet
	resizeControlsOnce  sync.Once
	resizeControls      *ControlSet
)

// DefaultControls returns the control set shared by all objects: four edge
// controls that scale or skew, four corner controls that scale, and a
// rotation handle above the top edge.
func DefaultControls() *ControlSet {
	defaultControlsOnce.Do(func() {
		defaultControls = newObjectControls()
	})
	return defaultControls
}

func newObjectControls() *ControlSet {
	s := NewControlSet()
	edge := func(x, y float64, handler ActionHandler) *Control {
		return &Control{
			Visible: true, X: x, Y: y, ActionName: ActionScale, CursorStyle: CursorCrosshair,
			ActionHandler:   handler,
			CursorStyleFunc: scaleSkewCursorStyleHandler,
			ActionNameFunc:  scaleOrSkewActionName,
		}
	}
	corner := func(x, y float64) *Control {
		return &Control{
			Visible: true, X: x, Y: y, ActionName: ActionScale, CursorStyle: CursorCrosshair,
			ActionHandler:   ScalingEqually,
			CursorStyleFunc: scaleCursorStyleHandler,
		}
	}
	s.Set("ml", edge(-0.5, 0, ScalingXOrSkewingY))
	s.Set("mr", edge(0.5, 0, ScalingXOrSkewingY))
	s.Set("mb", edge(0, 0.5, ScalingYOrSkewingX))
	s.Set("mt", edge(0, -0.5, ScalingYOrSkewingX))
	s.Set("tl", corner(-0.5, -0.5))
	s.Set("tr", corner(0.5, -0.5))
	s.Set("bl", corner(-0.5, 0.5))
	s.Set("br", corner(0.5, 0.5))
	s.Set("mtr", &Control{
		Visible: true, X: 0, Y: -0.5, OffsetY: -40,
		ActionName: ActionRotate, CursorStyle: CursorCrosshair, WithConnection: true,
		ActionHandler:   RotationWithSnapping,
		CursorStyleFunc: rotationStyleHandler,
	})
	return s
}

// ResizeControls returns the shared set for width-resizable objects such as
// text boxes: the default set with side controls that change the width.
func ResizeControls() *ControlSet {
	resizeControlsOnce.Do(func() {
		s := newObjectControls()
		for _, name := range []string{"ml", "mr"} {
			c := *s.Get(name)
			c.ActionName = ActionResizing
			c.ActionHandler = ChangeWidth
			c.ActionNameFunc = nil
			s.Set(name, &c)
		}
		resizeControls = s
	})
	return resizeControls
}

// PolyControls returns one control per vertex of a polyline or polygon
// object. Dragging a control moves the vertex and fires modifyPoly.
func PolyControls(o *Object) *ControlSet {
	s := NewControlSet()
	p, ok := o.shape.(*Poly)
	if !ok {
		return s
	}
	for i := range p.Points {
		s.Set(polyControlName(i), &Control{
			Visible:       true,
			ActionName:    ActionModifyPoly,
			CursorStyle:   CursorCrosshair,
			PointIndex:    i,
			PositionFunc:  polyPositionHandler,
			ActionHandler: polyActionHandler(i),
		})
	}
	return s
}

func polyControlName(i int) string { return "p" + strconv.Itoa(i) }

// PathControls returns one control per path command end point. Dragging a
// control moves that point and fires modifyPath.
func PathControls(o *Object) *ControlSet {
	s := NewControlSet()
	p, ok := o.shape.(*Path)
	if !ok {
		return s
	}
	for i, cmd := range p.Commands {
		if len(cmd.Args) < 2 {
			continue
		}
		s.Set("c"+strconv.Itoa(i), &Control{
			Visible:       true,
			ActionName:    ActionModifyPath,
			CursorStyle:   CursorCrosshair,
			PointIndex:    i,
			PositionFunc:  pathPositionHandler,
			ActionHandler: pathActionHandler(i),
		})
	}
	return s
}

// ControlCoords is the computed viewport geometry of one control.
type ControlCoords struct {
	// Position is the control centre.
	Position Point
	// Corner and TouchCorner are the mouse and touch hit quads, tl tr br bl.
	Corner      [4]Point
	TouchCorner [4]Point
}

type ocoordsKey struct {
	transform        transformKey
	matrix           Matrix
	vpt              Matrix
	padding          float64
	cornerSize       float64
	touchCornerSize  float64
	controls         *ControlSet
	controlsVersion  uint64
	pointsGeneration uint64
}

type ocoordsCache struct {
	valid  bool
	key    ocoordsKey
	coords map[string]ControlCoords
}

func (o *Object) ocoordsKey() ocoordsKey {
	k := ocoordsKey{
		transform:       o.transformKey(),
		matrix:          o.CalcTransformMatrix(),
		vpt:             o.viewportTransform(),
		padding:         o.Padding,
		cornerSize:      o.CornerSize,
		touchCornerSize: o.TouchCornerSize,
		controls:        o.Controls,
	}
	if o.Controls != nil {
		k.controlsVersion = o.Controls.version
	}
	return k
}

// OCoords returns the viewport geometry of every control, recomputing it
// when the object, its controls or the viewport changed since the last read.
func (o *Object) OCoords() map[string]ControlCoords {
	key := o.ocoordsKey()
	// vertex controls depend on point data the key cannot see
	if o.ocoordsCache.valid && o.ocoordsCache.key == key && !o.hasVertexControls() {
		return o.ocoordsCache.coords
	}
	coords := o.calcOCoords()
	o.ocoordsCache = ocoordsCache{valid: true, key: key, coords: coords}
	return coords
}

func (o *Object) hasVertexControls() bool {
	switch o.shape.(type) {
	case *Poly, *Path:
		return o.Controls != DefaultControls() && o.Controls != ResizeControls()
	}
	return false
}

func (o *Object) calcOCoords() map[string]ControlCoords {
	vpt := o.viewportTransform()
	center := o.GetCenterPoint()
	angle := o.TotalAngle()
	if o.group != nil && o.FlipX {
		angle -= 180
	}
	final := multiplyAll(vpt, translateMatrix(center.X, center.Y), RotateMatrix(angle),
		scaleMatrix(1/nonZero(vpt[0]), 1/nonZero(vpt[3])))
	dim := o.currentViewportDimensions()
	coords := make(map[string]ControlCoords, o.Controls.Len())
	total := o.TotalAngle()
	for _, name := range o.Controls.Names() {
		c := o.Controls.Get(name)
		pos := c.Position(dim, final, o)
		coords[name] = ControlCoords{
			Position:    pos,
			Corner:      c.CalcCornerCoords(total, o.CornerSize, pos.X, pos.Y, false),
			TouchCorner: c.CalcCornerCoords(total, o.TouchCornerSize, pos.X, pos.Y, true),
		}
	}
	return coords
}

// currentViewportDimensions is the object's size in viewport pixels plus
// padding on both sides.
func (o *Object) currentViewportDimensions() Point {
	d := o.currentDimOptions()
	if o.group != nil {
		t := QrDecompose(o.CalcTransformMatrix())
		d.scaleX, d.scaleY = math.Abs(t.ScaleX), math.Abs(t.ScaleY)
		d.skewX, d.skewY = t.SkewX, t.SkewY
	}
	return o.getTransformedDimensions(d).Transform(o.viewportTransform(), true).ScalarAdd(2 * o.Padding)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// FindControl returns the name of the control under the viewport point p,
// searching the last control first. touch selects the larger touch quads.
func (o *Object) FindControl(p Point, touch bool) (string, *Control, bool) {
	if !o.HasControls || o.canvas == nil || o.Controls == nil {
		return "", nil, false
	}
	coords := o.OCoords()
	names := o.Controls.Names()
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		c := o.Controls.Get(name)
		cc := coords[name]
		quad := cc.Corner
		if touch {
			quad = cc.TouchCorner
		}
		if c.ShouldActivate(name, o, p, quad) {
			return name, c, true
		}
	}
	return "", nil, false
}

// renderControls draws borders and controls in viewport space. dc carries
// only the retina scale.
func (o *Object) renderControls(dc *gg.Context, style *ControlStyle) {
	hasBorders, hasControls := o.HasBorders, o.HasControls
	if style != nil {
		if style.HasBorders != nil {
			hasBorders = *style.HasBorders
		}
		if style.HasControls != nil {
			hasControls = *style.HasControls
		}
	}
	m := multiplyAffine(o.viewportTransform(), o.CalcTransformMatrix())
	opts := QrDecompose(m)
	alpha := 1.0
	if o.group == o.parent && o.isMoving {
		alpha = o.BorderOpacityWhenMoving
	}
	if o.FlipX {
		opts.Angle -= 180
	}
	angle := o.Angle
	if o.group != nil {
		angle = opts.Angle
	}
	if hasBorders {
		dc.Push()
		dc.Translate(opts.TranslateX, opts.TranslateY)
		dc.Rotate(degreesToRadians(angle))
		o.drawBorders(dc, opts, style, alpha)
		dc.Pop()
	}
	if hasControls {
		o.drawControls(dc, style)
	}
}

func (o *Object) drawBorders(dc *gg.Context, opts TransformOptions, style *ControlStyle, alpha float64) {
	var size Point
	if (style != nil && style.forActiveSelection) || o.group != nil {
		bbox := sizeAfterTransform(o.Width, o.Height, CalcDimensionsMatrix(opts))
		var stroke Point
		if sw := o.strokeWidthForDims(); sw != 0 {
			if o.StrokeUniform {
				stroke = Pt(0, 0).ScalarAdd(o.zoom()).Scale(sw)
			} else {
				stroke = Pt(opts.ScaleX, opts.ScaleY).Scale(sw)
			}
		}
		size = bbox.Add(stroke).ScalarAdd(o.BorderScaleFactor).ScalarAdd(o.Padding * 2)
	} else {
		size = o.currentViewportDimensions().ScalarAdd(o.BorderScaleFactor)
	}
	borderColor := o.BorderColor
	dash := o.BorderDashArray
	hasControls := o.HasControls
	if style != nil {
		borderColor = firstNonEmpty(style.BorderColor, borderColor)
		if style.BorderDashArray != nil {
			dash = style.BorderDashArray
		}
		if style.HasControls != nil {
			hasControls = *style.HasControls
		}
	}
	col, ok := ParseColor(borderColor)
	if !ok {
		return
	}
	dc.SetStrokeBrush(gg.Solid(withAlpha(col, alpha)))
	dc.SetLineWidth(o.BorderScaleFactor)
	if len(dash) > 0 {
		dc.SetDash(dash...)
	} else {
		dc.ClearDash()
	}
	dc.ClearPath()
	dc.DrawRectangle(-size.X/2, -size.Y/2, size.X, size.Y)
	_ = dc.Stroke()
	if hasControls {
		o.drawControlsConnectingLines(dc, size)
	}
}

func (o *Object) drawControlsConnectingLines(dc *gg.Context, size Point) {
	stroke := false
	dc.ClearPath()
	for _, name := range o.Controls.Names() {
		c := o.Controls.Get(name)
		if !c.WithConnection || !o.IsControlVisible(name) {
			continue
		}
		stroke = true
		dc.MoveTo(c.X*size.X, c.Y*size.Y)
		dc.LineTo(c.X*size.X+c.OffsetX, c.Y*size.Y+c.OffsetY)
	}
	if stroke {
		_ = dc.Stroke()
	}
	dc.ClearPath()
}

func (o *Object) drawControls(dc *gg.Context, style *ControlStyle) {
	coords := o.OCoords()
	for _, name := range o.Controls.Names() {
		if !o.IsControlVisible(name) {
			continue
		}
		p := coords[name].Position
		o.Controls.Get(name).Render(dc, p.X, p.Y, style, o)
	}
}
