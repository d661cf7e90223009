package easel

import (
	"sync/atomic"

	"github.com/gogpu/gg"
)

// Shape is the type-specific part of an Object: its path, its extra
// serialized properties and its SVG markup. Shapes draw in object-local
// space, centred on the origin, at the object's unscaled width/height.
type Shape interface {
	// Type is the serialization discriminator, e.g. "rect".
	Type() string
	// Render draws the shape. The context transform is already set.
	Render(o *Object, dc *gg.Context, rs RenderState)
	// Props returns the type-specific serialized properties.
	Props(o *Object, opts SerializeOptions) map[string]any
	// SVG returns the shape element(s) in object-local space.
	SVG(o *Object) string
}

// RenderState carries inherited render parameters down the tree.
type RenderState struct {
	// Alpha is the opacity inherited from enclosing groups.
	Alpha float64
	// Clipping renders the silhouette only: opaque black fill, no stroke.
	Clipping bool
	// inGroup means the context already holds the enclosing group's matrix.
	inGroup bool
	// noStroke suppresses strokes, for shadows that ignore them.
	noStroke bool
}

// Renderable draws itself onto a gg context.
type Renderable interface {
	Render(dc *gg.Context)
}

// Transformable exposes the geometry of a scene element.
type Transformable interface {
	CalcTransformMatrix() Matrix
	GetCoords() [4]Point
	GetBoundingRect() Rect
}

// Selectable is implemented by elements that take part in selection.
type Selectable interface {
	Transformable
	ContainsPoint(p Point) bool
	IsSelectable() bool
}

// Container owns an ordered list of objects.
type Container interface {
	Objects() []*Object
	Add(objs ...*Object) int
	Remove(objs ...*Object) []*Object
}

var (
	_ Renderable = (*Object)(nil)
	_ Selectable = (*Object)(nil)
)

var objectIDCounter atomic.Uint32

func nextObjectID() uint32 {
	return objectIDCounter.Add(1)
}

// Object is a drawable, transformable, interactive scene element. A single
// flat struct carries the geometry, style and interaction state shared by all
// shapes; Shape supplies the type-specific drawing.
//
// Geometric fields may be written directly. Derived values (the transform
// matrix, corner coordinates, control coordinates) are validated against the
// fields they depend on each time they are read.
type Object struct {
	Emitter

	ID   uint32
	Name string

	shape Shape

	// Geometry
	Left, Top      float64
	Width, Height  float64
	ScaleX, ScaleY float64
	SkewX, SkewY   float64
	Angle          float64
	FlipX, FlipY   bool
	// OriginX/OriginY locate Left/Top within the box (0 left/top, 1 right/bottom).
	OriginX, OriginY float64

	// Style
	Fill                     Paint
	Stroke                   Paint
	StrokeWidth              float64
	StrokeDashArray          []float64
	StrokeDashOffset         float64
	StrokeLineCap            string
	StrokeLineJoin           string
	StrokeMiterLimit         float64
	StrokeUniform            bool
	PaintFirst               string
	FillRule                 string
	Opacity                  float64
	GlobalCompositeOperation string
	BackgroundColor          string
	Shadow                   *Shadow
	Visible                  bool

	// ClipPath masks this object. When the clip path is AbsolutePositioned its
	// geometry is in scene space, otherwise relative to this object's centre.
	ClipPath *Object
	// Inverted and AbsolutePositioned apply when this object is a clip path.
	Inverted           bool
	AbsolutePositioned bool

	ExcludeFromExport bool

	// Interaction
	Selectable         bool
	Evented            bool
	HasControls        bool
	HasBorders         bool
	LockMovementX      bool
	LockMovementY      bool
	LockRotation       bool
	LockScalingX       bool
	LockScalingY       bool
	LockSkewingX       bool
	LockSkewingY       bool
	LockScalingFlip    bool
	PerPixelTargetFind bool
	CenteredScaling    bool
	CenteredRotation   bool
	MinScaleLimit      float64
	SnapAngle          float64
	SnapThreshold      float64

	// Selection chrome
	Padding                  float64
	CornerSize               float64
	TouchCornerSize          float64
	TransparentCorners       bool
	CornerColor              string
	CornerStrokeColor        string
	CornerStyle              string
	CornerDashArray          []float64
	BorderColor              string
	BorderDashArray          []float64
	BorderScaleFactor        float64
	BorderOpacityWhenMoving  float64
	SelectionBackgroundColor string
	HoverCursor              string
	MoveCursor               string

	// Controls is the control set. Objects share DefaultControls unless
	// given their own.
	Controls *ControlSet

	// OnSelect and OnDeselect may refuse a selection change by returning true.
	OnSelect   func(e *Event) (cancel bool)
	OnDeselect func(e *Event) (cancel bool)

	// Extra holds custom properties. They survive revival and are serialized
	// when named in SerializeOptions.PropertiesToInclude.
	Extra map[string]any
	// UserData is never serialized.
	UserData any

	canvas *StaticCanvas
	// parent is the owning group; group is the plane the object lives in,
	// which is the active selection while the object is selected.
	parent *Object
	group  *Object

	controlsVisibility map[string]bool

	matrixCache  matrixCache
	ownCache     matrixCache
	ocoordsCache ocoordsCache

	isMoving bool
	disposed bool
}

// NewObject creates a detached object of the given shape with default
// properties.
func NewObject(shape Shape) *Object {
	o := &Object{shape: shape}
	objectDefaults(o)
	return o
}

// objectDefaults sets the default field values shared by all constructors.
func objectDefaults(o *Object) {
	o.ID = nextObjectID()
	o.ScaleX = 1
	o.ScaleY = 1
	o.Fill = Paint{Color: "rgb(0,0,0)"}
	o.StrokeWidth = 1
	o.StrokeLineCap = "butt"
	o.StrokeLineJoin = "miter"
	o.StrokeMiterLimit = 4
	o.PaintFirst = "fill"
	o.FillRule = "nonzero"
	o.Opacity = 1
	o.GlobalCompositeOperation = "source-over"
	o.Visible = true

	o.Selectable = true
	o.Evented = true
	o.HasControls = true
	o.HasBorders = true
	o.CenteredRotation = true

	o.CornerSize = 13
	o.TouchCornerSize = 24
	o.TransparentCorners = true
	o.CornerColor = "rgb(178,204,255)"
	o.CornerStyle = "rect"
	o.BorderColor = "rgb(178,204,255)"
	o.BorderScaleFactor = 1
	o.BorderOpacityWhenMoving = 0.4
	o.Controls = DefaultControls()
}

// Type returns the serialization discriminator of the object's shape.
func (o *Object) Type() string {
	if o.shape == nil {
		return "object"
	}
	return o.shape.Type()
}

// Shape returns the object's shape.
func (o *Object) Shape() Shape { return o.shape }

// Canvas returns the canvas the object is attached to, or nil.
func (o *Object) Canvas() *StaticCanvas { return o.canvas }

// Parent returns the group that owns the object, or nil.
func (o *Object) Parent() *Object { return o.parent }

// Group returns the plane the object lives in: its owning group, or the
// active selection while it is selected.
func (o *Object) Group() *Object { return o.group }

// IsSelectable reports whether the object may become the active object.
func (o *Object) IsSelectable() bool { return o.Selectable && o.Evented && o.Visible }

// IsDisposed reports whether the object has been disposed.
func (o *Object) IsDisposed() bool { return o.disposed }

// IsMoving reports whether the object is being dragged.
func (o *Object) IsMoving() bool { return o.isMoving }

// Objects returns the members of a group or active selection, or nil. The
// returned slice must not be mutated.
func (o *Object) Objects() []*Object {
	if g := o.groupShape(); g != nil {
		return g.objects
	}
	return nil
}

func (o *Object) groupShape() *Group {
	switch s := o.shape.(type) {
	case *Group:
		return s
	case *ActiveSelection:
		return &s.Group
	}
	return nil
}

// IsActiveSelection reports whether o is a multi-object active selection.
func (o *Object) IsActiveSelection() bool {
	_, ok := o.shape.(*ActiveSelection)
	return ok
}

// IsGroup reports whether o is a group (not an active selection).
func (o *Object) IsGroup() bool {
	_, ok := o.shape.(*Group)
	return ok
}

// --- typed setters ---

// SetPosition sets Left and Top.
func (o *Object) SetPosition(left, top float64) {
	o.Left, o.Top = left, top
}

// SetSize sets the unscaled width and height, floored at 0.
func (o *Object) SetSize(w, h float64) {
	o.Width = max(w, 0)
	o.Height = max(h, 0)
}

// SetScale sets both scale factors.
func (o *Object) SetScale(sx, sy float64) {
	o.SetScaleX(sx)
	o.SetScaleY(sy)
}

// SetScaleX sets the horizontal scale. A negative value toggles FlipX; the
// magnitude is floored at MinScaleLimit and never reaches zero.
func (o *Object) SetScaleX(v float64) {
	v, flip := o.constrainScale(v)
	if flip {
		o.FlipX = !o.FlipX
	}
	o.ScaleX = v
}

// SetScaleY sets the vertical scale. See SetScaleX.
func (o *Object) SetScaleY(v float64) {
	v, flip := o.constrainScale(v)
	if flip {
		o.FlipY = !o.FlipY
	}
	o.ScaleY = v
}

// minScale is the smallest scale that keeps the transform invertible.
const minScale = 0.0001

func (o *Object) constrainScale(v float64) (float64, bool) {
	flip := false
	if v < 0 {
		flip = true
		v = -v
	}
	if v < o.MinScaleLimit {
		v = o.MinScaleLimit
	}
	if v == 0 {
		v = minScale
	}
	return v, flip
}

// SetSkew sets both skew angles in degrees.
func (o *Object) SetSkew(x, y float64) {
	o.SkewX, o.SkewY = x, y
}

// SetOrigin sets the origin fractions.
func (o *Object) SetOrigin(x, y float64) {
	o.OriginX, o.OriginY = x, y
}

// Rotate sets the angle in degrees. With CenteredRotation the centre stays in
// place; otherwise the origin point does.
func (o *Object) Rotate(angle float64) {
	if o.CenteredRotation && (o.OriginX != OriginCenter || o.OriginY != OriginCenter) {
		center := o.GetRelativeCenterPoint()
		o.Angle = angle
		o.setRelativeXYFromCenter(center)
		return
	}
	o.Angle = angle
}

func (o *Object) setRelativeXYFromCenter(center Point) {
	p := o.TranslateToOriginPoint(center, o.OriginX, o.OriginY)
	o.Left, o.Top = p.X, p.Y
}

// SetControlVisible overrides the visibility of the named control for this
// object only.
func (o *Object) SetControlVisible(name string, visible bool) {
	if o.controlsVisibility == nil {
		o.controlsVisibility = make(map[string]bool)
	}
	o.controlsVisibility[name] = visible
}

// SetControlsVisibility applies several overrides at once.
func (o *Object) SetControlsVisibility(v map[string]bool) {
	for name, vis := range v {
		o.SetControlVisible(name, vis)
	}
}

// IsControlVisible reports whether the named control shows for this object.
// Per-object overrides win over the control's own default.
func (o *Object) IsControlVisible(name string) bool {
	if v, ok := o.controlsVisibility[name]; ok {
		return v
	}
	if o.Controls == nil {
		return false
	}
	c := o.Controls.Get(name)
	return c != nil && c.Visible
}

// --- lifecycle ---

// setCanvas attaches o (and any members) to c.
func (o *Object) setCanvas(c *StaticCanvas) {
	o.canvas = c
	for _, child := range o.Objects() {
		child.setCanvas(c)
	}
}

// Dispose removes the object from its group or canvas and releases it and
// its members. A disposed object renders nothing.
func (o *Object) Dispose() {
	if o.disposed {
		return
	}
	switch {
	case o.parent != nil:
		if g := o.parent.groupShape(); g != nil {
			g.remove(o.parent, o)
		}
	case o.canvas != nil:
		o.canvas.Remove(o)
	}
	o.dispose()
}

func (o *Object) dispose() {
	o.disposed = true
	if g := o.groupShape(); g != nil {
		for _, child := range g.objects {
			child.parent = nil
			child.group = nil
			child.dispose()
		}
		g.objects = nil
	}
	if im, ok := o.shape.(*Image); ok {
		im.element = nil
	}
	o.canvas = nil
	o.parent = nil
	o.group = nil
	o.ClipPath = nil
	o.Off("")
	o.OnSelect = nil
	o.OnDeselect = nil
	o.UserData = nil
}

// fire emits name on the object.
func (o *Object) fire(name string, ev *Event) {
	o.Fire(name, ev)
}

// isNotVisible reports whether render can skip the object entirely.
func (o *Object) isNotVisible() bool {
	return o.disposed || !o.Visible || o.Opacity == 0 ||
		(o.Width == 0 && o.Height == 0 && o.strokeWidthForDims() == 0)
}

// shouldRenderSelf is false for active selections, whose members are drawn
// by the canvas.
func (o *Object) shouldRenderSelf() bool {
	return !o.IsActiveSelection()
}
