package easel

import "math"

// transformKey is every field the own matrix depends on.
type transformKey struct {
	left, top, width, height float64
	scaleX, scaleY           float64
	skewX, skewY             float64
	angle                    float64
	originX, originY         float64
	flipX, flipY             bool
	strokeWidth              float64
	strokeUniform            bool
}

type matrixCache struct {
	valid bool
	key   transformKey
	group Matrix
	m     Matrix
}

func (o *Object) transformKey() transformKey {
	return transformKey{
		left: o.Left, top: o.Top, width: o.Width, height: o.Height,
		scaleX: o.ScaleX, scaleY: o.ScaleY,
		skewX: o.SkewX, skewY: o.SkewY,
		angle:   o.Angle,
		originX: o.OriginX, originY: o.OriginY,
		flipX: o.FlipX, flipY: o.FlipY,
		strokeWidth:   o.strokeWidthForDims(),
		strokeUniform: o.StrokeUniform,
	}
}

// SetCoords drops every cached derived value so the next read recomputes
// it. Reads validate their caches anyway; call this after changing state the
// caches cannot observe, such as a control's position.
func (o *Object) SetCoords() {
	o.matrixCache.valid = false
	o.ownCache.valid = false
	o.ocoordsCache.valid = false
	for _, child := range o.Objects() {
		child.SetCoords()
	}
}

// strokeWidthForDims is the stroke width counted in the object's
// dimensions: zero when no stroke paint is set.
func (o *Object) strokeWidthForDims() float64 {
	if o.Stroke.IsZero() {
		return 0
	}
	return o.StrokeWidth
}

// dimOptions overrides parts of the geometry in getTransformedDimensions.
type dimOptions struct {
	scaleX, scaleY float64
	skewX, skewY   float64
	width, height  float64
}

func (o *Object) currentDimOptions() dimOptions {
	return dimOptions{
		scaleX: o.ScaleX, scaleY: o.ScaleY,
		skewX: o.SkewX, skewY: o.SkewY,
		width: o.Width, height: o.Height,
	}
}

// TransformedDimensions returns the object's size after scale and skew,
// including stroke.
func (o *Object) TransformedDimensions() Point {
	return o.getTransformedDimensions(o.currentDimOptions())
}

func (o *Object) getTransformedDimensions(d dimOptions) Point {
	sw := o.strokeWidthForDims()
	pre, post := sw, 0.0
	if o.StrokeUniform {
		pre, post = 0, sw
	}
	dimX := d.width + pre
	dimY := d.height + pre
	var final Point
	if d.skewX == 0 && d.skewY == 0 {
		final = Pt(dimX*d.scaleX, dimY*d.scaleY)
	} else {
		final = sizeAfterTransform(dimX, dimY, CalcDimensionsMatrix(TransformOptions{
			ScaleX: d.scaleX, ScaleY: d.scaleY, SkewX: d.skewX, SkewY: d.skewY,
		}))
	}
	return final.ScalarAdd(post)
}

// NonTransformedDimensions returns width and height plus stroke.
func (o *Object) NonTransformedDimensions() Point {
	sw := o.strokeWidthForDims()
	return Pt(o.Width+sw, o.Height+sw)
}

// ScaledWidth returns the width after transformation, including stroke.
func (o *Object) ScaledWidth() float64 { return o.TransformedDimensions().X }

// ScaledHeight returns the height after transformation, including stroke.
func (o *Object) ScaledHeight() float64 { return o.TransformedDimensions().Y }

// ScaleToWidth scales the object uniformly so its bounding width is w.
func (o *Object) ScaleToWidth(w float64) {
	bw := o.GetBoundingRect().Width / o.ScaleX
	if bw == 0 {
		return
	}
	o.Scale(w / bw)
}

// ScaleToHeight scales the object uniformly so its bounding height is h.
func (o *Object) ScaleToHeight(h float64) {
	bh := o.GetBoundingRect().Height / o.ScaleY
	if bh == 0 {
		return
	}
	o.Scale(h / bh)
}

// Scale sets both scale factors to v.
func (o *Object) Scale(v float64) {
	o.SetScaleX(v)
	o.SetScaleY(v)
}

// --- origins ---

// TranslateToGivenOrigin moves point, expressed at origin (fromX, fromY), to
// the equivalent point at origin (toX, toY), ignoring rotation.
func (o *Object) TranslateToGivenOrigin(p Point, fromX, fromY, toX, toY float64) Point {
	offX := resolveOrigin(toX) - resolveOrigin(fromX)
	offY := resolveOrigin(toY) - resolveOrigin(fromY)
	if offX != 0 || offY != 0 {
		dim := o.TransformedDimensions()
		p.X += offX * dim.X
		p.Y += offY * dim.Y
	}
	return p
}

// TranslateToCenterPoint returns the centre for an object whose origin
// (originX, originY) sits at p.
func (o *Object) TranslateToCenterPoint(p Point, originX, originY float64) Point {
	c := o.TranslateToGivenOrigin(p, originX, originY, OriginCenter, OriginCenter)
	if o.Angle != 0 {
		return c.Rotate(degreesToRadians(o.Angle), p)
	}
	return c
}

// TranslateToOriginPoint returns the location of origin (originX, originY)
// for an object centred at center.
func (o *Object) TranslateToOriginPoint(center Point, originX, originY float64) Point {
	p := o.TranslateToGivenOrigin(center, OriginCenter, OriginCenter, originX, originY)
	if o.Angle != 0 {
		return p.Rotate(degreesToRadians(o.Angle), center)
	}
	return p
}

// GetRelativeCenterPoint returns the centre in the parent's plane.
func (o *Object) GetRelativeCenterPoint() Point {
	return o.TranslateToCenterPoint(Pt(o.Left, o.Top), o.OriginX, o.OriginY)
}

// GetCenterPoint returns the centre in scene space.
func (o *Object) GetCenterPoint() Point {
	c := o.GetRelativeCenterPoint()
	if o.group != nil {
		return c.Transform(o.group.CalcTransformMatrix(), false)
	}
	return c
}

// GetPointByOrigin returns the location of the given origin in the parent's
// plane.
func (o *Object) GetPointByOrigin(originX, originY float64) Point {
	return o.TranslateToOriginPoint(o.GetRelativeCenterPoint(), originX, originY)
}

// SetPositionByOrigin moves the object so that origin (originX, originY)
// sits at pos in the parent's plane.
func (o *Object) SetPositionByOrigin(pos Point, originX, originY float64) {
	center := o.TranslateToCenterPoint(pos, originX, originY)
	p := o.TranslateToOriginPoint(center, o.OriginX, o.OriginY)
	o.Left, o.Top = p.X, p.Y
}

// GetXY returns the scene-space location of the object's origin.
func (o *Object) GetXY() Point {
	p := o.GetPointByOrigin(o.OriginX, o.OriginY)
	if o.group != nil {
		return p.Transform(o.group.CalcTransformMatrix(), false)
	}
	return p
}

// SetXY moves the object so its origin sits at the scene point p.
func (o *Object) SetXY(p Point) {
	if o.group != nil {
		p = SendPointToPlane(p, Identity, o.group.CalcTransformMatrix())
	}
	o.SetPositionByOrigin(p, o.OriginX, o.OriginY)
}

// SetCenterPoint moves the object so its centre sits at c in the parent plane.
func (o *Object) SetCenterPoint(c Point) {
	o.SetPositionByOrigin(c, OriginCenter, OriginCenter)
}

// --- matrices ---

// CalcOwnMatrix returns the matrix from the object's local plane to its
// parent's plane.
func (o *Object) CalcOwnMatrix() Matrix {
	key := o.transformKey()
	if o.ownCache.valid && o.ownCache.key == key {
		return o.ownCache.m
	}
	c := o.GetRelativeCenterPoint()
	m := ComposeMatrix(TransformOptions{
		Angle:      o.Angle,
		ScaleX:     o.ScaleX,
		ScaleY:     o.ScaleY,
		SkewX:      o.SkewX,
		SkewY:      o.SkewY,
		FlipX:      o.FlipX,
		FlipY:      o.FlipY,
		TranslateX: c.X,
		TranslateY: c.Y,
	})
	o.ownCache = matrixCache{valid: true, key: key, m: m}
	return m
}

// CalcTransformMatrix returns the matrix from the object's local plane to
// scene space.
func (o *Object) CalcTransformMatrix() Matrix {
	return o.calcTransformMatrix(false)
}

func (o *Object) calcTransformMatrix(skipGroup bool) Matrix {
	own := o.CalcOwnMatrix()
	if skipGroup || o.group == nil {
		return own
	}
	gm := o.group.CalcTransformMatrix()
	key := o.transformKey()
	if o.matrixCache.valid && o.matrixCache.key == key && o.matrixCache.group == gm {
		return o.matrixCache.m
	}
	m := multiplyAffine(gm, own)
	o.matrixCache = matrixCache{valid: true, key: key, group: gm, m: m}
	return m
}

// TotalAngle returns the object's angle in scene space.
func (o *Object) TotalAngle() float64 {
	if o.group != nil {
		return QrDecompose(o.CalcTransformMatrix()).Angle
	}
	return o.Angle
}

// viewportTransform returns the canvas viewport, or Identity when detached.
func (o *Object) viewportTransform() Matrix {
	if o.canvas != nil {
		return o.canvas.vpt
	}
	return Identity
}

func (o *Object) zoom() float64 {
	if o.canvas != nil {
		return o.canvas.Zoom()
	}
	return 1
}

// --- corner coordinates ---

// CalcACoords returns the corners tl, tr, br, bl of the bounding quad in the
// parent's plane.
func (o *Object) CalcACoords() [4]Point {
	c := o.GetRelativeCenterPoint()
	m := multiplyAffine(translateMatrix(c.X, c.Y), RotateMatrix(o.Angle))
	dim := o.TransformedDimensions()
	w, h := dim.X/2, dim.Y/2
	return [4]Point{
		Pt(-w, -h).Transform(m, false),
		Pt(w, -h).Transform(m, false),
		Pt(w, h).Transform(m, false),
		Pt(-w, h).Transform(m, false),
	}
}

// GetCoords returns the bounding quad tl, tr, br, bl in scene space.
func (o *Object) GetCoords() [4]Point {
	pts := o.CalcACoords()
	if o.group != nil {
		t := o.group.CalcTransformMatrix()
		for i := range pts {
			pts[i] = pts[i].Transform(t, false)
		}
	}
	return pts
}

// GetBoundingRect returns the axis-aligned scene-space bounds.
func (o *Object) GetBoundingRect() Rect {
	pts := o.GetCoords()
	return boundsOf(pts[:])
}

// ContainsPoint reports whether the scene point p lies inside the object's
// bounding quad.
func (o *Object) ContainsPoint(p Point) bool {
	pts := o.GetCoords()
	return PointInPolygon(p, pts[:])
}

// IntersectsWithRect reports whether the quad crosses the scene rectangle
// with corners tl and br.
func (o *Object) IntersectsWithRect(tl, br Point) bool {
	pts := o.GetCoords()
	rect := []Point{tl, Pt(br.X, tl.Y), br, Pt(tl.X, br.Y)}
	return polygonEdgesIntersect(pts[:], rect)
}

// IntersectsWithObject reports whether the two bounding quads overlap.
func (o *Object) IntersectsWithObject(other *Object) bool {
	a, b := o.GetCoords(), other.GetCoords()
	return polygonEdgesIntersect(a[:], b[:]) ||
		other.isContainedWithinQuad(a[:]) ||
		o.isContainedWithinQuad(b[:])
}

func (o *Object) isContainedWithinQuad(quad []Point) bool {
	for _, p := range o.GetCoords() {
		if !PointInPolygon(p, quad) {
			return false
		}
	}
	return true
}

// IsContainedWithinObject reports whether o lies entirely inside other.
func (o *Object) IsContainedWithinObject(other *Object) bool {
	q := other.GetCoords()
	return o.isContainedWithinQuad(q[:])
}

// IsContainedWithinRect reports whether the bounding box lies inside the
// scene rectangle with corners tl and br.
func (o *Object) IsContainedWithinRect(tl, br Point) bool {
	b := o.GetBoundingRect()
	return b.X >= tl.X && b.X+b.Width <= br.X && b.Y >= tl.Y && b.Y+b.Height <= br.Y
}

// IsOnScreen reports whether any part of the object is inside the canvas
// viewport. Detached objects are never on screen.
func (o *Object) IsOnScreen() bool {
	if o.canvas == nil {
		return false
	}
	vc := o.canvas.ViewportCoords()
	tl, br := vc[0], vc[2]
	for _, p := range o.GetCoords() {
		if p.X <= br.X && p.X >= tl.X && p.Y <= br.Y && p.Y >= tl.Y {
			return true
		}
	}
	if o.IntersectsWithRect(tl, br) {
		return true
	}
	return o.ContainsPoint(tl.Mid(br))
}

// IsPartiallyOnScreen reports whether the object crosses the viewport edge.
func (o *Object) IsPartiallyOnScreen() bool {
	if o.canvas == nil {
		return false
	}
	vc := o.canvas.ViewportCoords()
	tl, br := vc[0], vc[2]
	if o.IntersectsWithRect(tl, br) {
		return true
	}
	inside := 0
	for _, p := range o.GetCoords() {
		if p.X <= br.X && p.X >= tl.X && p.Y <= br.Y && p.Y >= tl.Y {
			inside++
		}
	}
	return inside > 0 && inside < 4
}

// --- transform application ---

// applyTransformToObject sets the object's decomposed geometry so that its
// own matrix equals m. The centre is preserved through the origin.
func applyTransformToObject(o *Object, m Matrix) {
	t := QrDecompose(m)
	o.FlipX, o.FlipY = false, false
	o.SetScaleX(t.ScaleX)
	o.SetScaleY(t.ScaleY)
	o.SkewX = t.SkewX
	o.SkewY = 0
	o.Angle = t.Angle
	o.SetPositionByOrigin(Pt(t.TranslateX, t.TranslateY), OriginCenter, OriginCenter)
}

// addTransformToObject composes m onto the object's own matrix.
func addTransformToObject(o *Object, m Matrix) {
	applyTransformToObject(o, multiplyAffine(m, o.CalcOwnMatrix()))
}

// normalizeAngle wraps deg into [0, 360).
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
