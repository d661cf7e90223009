package easel

// Action names a transform session performs.
const (
	ActionDrag       = "drag"
	ActionScale      = "scale"
	ActionScaleX     = "scaleX"
	ActionScaleY     = "scaleY"
	ActionSkewX      = "skewX"
	ActionSkewY      = "skewY"
	ActionRotate     = "rotate"
	ActionResizing   = "resizing"
	ActionModifyPoly = "modifyPoly"
	ActionModifyPath = "modifyPath"
)

// ObjectTransform is a snapshot of the fields a transform session can change.
type ObjectTransform struct {
	Left, Top        float64
	Width, Height    float64
	ScaleX, ScaleY   float64
	SkewX, SkewY     float64
	Angle            float64
	FlipX, FlipY     bool
	OriginX, OriginY float64
}

func saveObjectTransform(o *Object) ObjectTransform {
	return ObjectTransform{
		Left: o.Left, Top: o.Top,
		Width: o.Width, Height: o.Height,
		ScaleX: o.ScaleX, ScaleY: o.ScaleY,
		SkewX: o.SkewX, SkewY: o.SkewY,
		Angle: o.Angle,
		FlipX: o.FlipX, FlipY: o.FlipY,
		OriginX: o.OriginX, OriginY: o.OriginY,
	}
}

func (t ObjectTransform) restore(o *Object) {
	o.Left, o.Top = t.Left, t.Top
	o.Width, o.Height = t.Width, t.Height
	o.ScaleX, o.ScaleY = t.ScaleX, t.ScaleY
	o.SkewX, o.SkewY = t.SkewX, t.SkewY
	o.Angle = t.Angle
	o.FlipX, o.FlipY = t.FlipX, t.FlipY
	o.OriginX, o.OriginY = t.OriginX, t.OriginY
	if t2, ok := o.shape.(interface{ InitDimensions(*Object) }); ok {
		t2.InitDimensions(o)
	}
	o.SetCoords()
}

// Transform is the state of one pointer-driven manipulation, from press to
// release. All coordinates are in the target's parent plane.
type Transform struct {
	Target        *Object
	Action        string
	ActionHandler ActionHandler
	// Corner is the control being dragged, empty for a body drag.
	Corner string
	// ActionPerformed becomes true once any move changed the target.
	ActionPerformed bool

	// Values at session start.
	ScaleX, ScaleY float64
	SkewX, SkewY   float64
	Theta          float64
	Width, Height  float64

	// OffsetX/OffsetY are the pointer offset from Left/Top at start.
	OffsetX, OffsetY float64
	// OriginX/OriginY is the anchor the action keeps fixed. Scale handlers
	// flip it when the pointer crosses the anchor.
	OriginX, OriginY float64

	// Ex/Ey is the press point; LastX/LastY the latest one.
	Ex, Ey       float64
	LastX, LastY float64

	ShiftKey bool
	AltKey   bool

	// Original is the target before the session started.
	Original ObjectTransform

	// SignX/SignY track the pointer side of the anchor to detect flips.
	SignX, SignY float64
	// GestureScale scales relative to the start when set by a pinch.
	GestureScale float64
	// PointIndex is the vertex edited by a poly or path control.
	PointIndex int

	skewingSide float64
}

// originFromCorner returns the anchor for a control: the opposite side of
// the box along each axis the control sits on.
func originFromCorner(o *Object, corner string) (float64, float64) {
	x, y := o.OriginX, o.OriginY
	switch corner {
	case "ml", "tl", "bl":
		x = OriginRight
	case "mr", "tr", "br":
		x = OriginLeft
	}
	switch corner {
	case "tl", "mt", "tr":
		y = OriginBottom
	case "bl", "mb", "br":
		y = OriginTop
	}
	return x, y
}

func actionFromCorner(alreadySelected bool, corner string, e *PointerEvent, o *Object) string {
	if corner == "" || !alreadySelected {
		return ActionDrag
	}
	c := o.Controls.Get(corner)
	if c == nil {
		return ActionDrag
	}
	return c.GetActionName(e, o)
}

func isTransformCentered(t *Transform) bool {
	return t.OriginX == OriginCenter && t.OriginY == OriginCenter
}

// restoreOriginal puts the target back as it was at session start.
func (t *Transform) restoreOriginal() {
	t.Original.restore(t.Target)
}
