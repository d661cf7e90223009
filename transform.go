package easel

import "math"

// Point is a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point         { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point         { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(q Point) Point         { return Point{p.X * q.X, p.Y * q.Y} }
func (p Point) Scale(s float64) Point     { return Point{p.X * s, p.Y * s} }
func (p Point) ScalarAdd(s float64) Point { return Point{p.X + s, p.Y + s} }
func (p Point) Min(q Point) Point         { return Point{math.Min(p.X, q.X), math.Min(p.Y, q.Y)} }
func (p Point) Max(q Point) Point         { return Point{math.Max(p.X, q.X), math.Max(p.Y, q.Y)} }
func (p Point) Mid(q Point) Point         { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) Eq(q Point) bool           { return p.X == q.X && p.Y == q.Y }

// Div divides component-wise. Zero divisors leave the component unchanged.
func (p Point) Div(q Point) Point {
	r := p
	if q.X != 0 {
		r.X /= q.X
	}
	if q.Y != 0 {
		r.Y /= q.Y
	}
	return r
}

// Rotate rotates p by rad radians around origin.
func (p Point) Rotate(rad float64, origin Point) Point {
	s, c := sin(rad), cos(rad)
	x, y := p.X-origin.X, p.Y-origin.Y
	return Point{x*c - y*s + origin.X, x*s + y*c + origin.Y}
}

// Transform applies m to p. With ignoreOffset the translation is skipped,
// which maps vectors rather than positions.
func (p Point) Transform(m Matrix, ignoreOffset bool) Point {
	if ignoreOffset {
		return Point{m[0]*p.X + m[2]*p.Y, m[1]*p.X + m[3]*p.Y}
	}
	x, y := transformPoint(m, p.X, p.Y)
	return Point{x, y}
}

// Matrix is a 2D affine matrix in canvas order [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix [6]float64

// Identity is the identity matrix.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool { return m == Identity }

// Multiply returns m * n (n applied first).
func (m Matrix) Multiply(n Matrix) Matrix { return multiplyAffine(m, n) }

// Invert returns the inverse of m, or the identity if m is singular.
func (m Matrix) Invert() Matrix { return invertAffine(m) }

// multiplyAffine multiplies two 2D affine matrices: result = p * c.
func multiplyAffine(p, c Matrix) Matrix {
	return Matrix{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// multiplyAll folds the matrices left to right.
func multiplyAll(ms ...Matrix) Matrix {
	r := Identity
	for _, m := range ms {
		r = multiplyAffine(r, m)
	}
	return r
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m Matrix) Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// SendPointToPlane maps p from the plane described by from into the plane
// described by to. Either may be Identity for scene space.
func SendPointToPlane(p Point, from, to Matrix) Point {
	return p.Transform(multiplyAffine(invertAffine(to), from), false)
}

func translateMatrix(x, y float64) Matrix { return Matrix{1, 0, 0, 1, x, y} }
func scaleMatrix(x, y float64) Matrix     { return Matrix{x, 0, 0, y, 0, 0} }

// RotateMatrix returns a rotation by deg degrees.
func RotateMatrix(deg float64) Matrix {
	if deg == 0 {
		return Identity
	}
	r := degreesToRadians(deg)
	c, s := cos(r), sin(r)
	return Matrix{c, s, -s, c, 0, 0}
}

// TransformOptions are the decomposed parts of an object transform.
// Angles are in degrees.
type TransformOptions struct {
	Angle        float64
	ScaleX       float64
	ScaleY       float64
	SkewX, SkewY float64
	FlipX, FlipY bool
	TranslateX   float64
	TranslateY   float64
}

// CalcDimensionsMatrix returns the scale/flip/skew part of a transform.
func CalcDimensionsMatrix(o TransformOptions) Matrix {
	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	m := scaleMatrix(sx, sy)
	if o.SkewX != 0 {
		m = multiplyAffine(m, Matrix{1, 0, math.Tan(degreesToRadians(o.SkewX)), 1, 0, 0})
	}
	if o.SkewY != 0 {
		m = multiplyAffine(m, Matrix{1, math.Tan(degreesToRadians(o.SkewY)), 0, 1, 0, 0})
	}
	return m
}

// ComposeMatrix builds translate * rotate * scale/skew.
//
// Composition order:
//
//	Translate(TranslateX, TranslateY) -> Rotate(Angle) -> Scale/Flip -> SkewX -> SkewY
func ComposeMatrix(o TransformOptions) Matrix {
	m := Identity
	if o.TranslateX != 0 || o.TranslateY != 0 {
		m = translateMatrix(o.TranslateX, o.TranslateY)
	}
	if o.Angle != 0 {
		m = multiplyAffine(m, RotateMatrix(o.Angle))
	}
	dim := CalcDimensionsMatrix(o)
	if !dim.IsIdentity() {
		m = multiplyAffine(m, dim)
	}
	return m
}

// QrDecompose splits m into angle, scale, skewX and translation. SkewY is
// always 0; flips are folded into negative scales.
func QrDecompose(m Matrix) TransformOptions {
	angle := math.Atan2(m[1], m[0])
	denom := m[0]*m[0] + m[1]*m[1]
	scaleX := math.Sqrt(denom)
	var scaleY, skewX float64
	if scaleX != 0 {
		scaleY = (m[0]*m[3] - m[2]*m[1]) / scaleX
		skewX = math.Atan2(m[0]*m[2]+m[1]*m[3], denom)
	}
	return TransformOptions{
		Angle:      radiansToDegrees(angle),
		ScaleX:     scaleX,
		ScaleY:     scaleY,
		SkewX:      radiansToDegrees(skewX),
		TranslateX: m[4],
		TranslateY: m[5],
	}
}

// sizeAfterTransform returns the axis-aligned size of a w×h box centred on
// the origin after applying m.
func sizeAfterTransform(w, h float64, m Matrix) Point {
	hw, hh := w/2, h/2
	pts := [4]Point{
		Pt(-hw, -hh).Transform(m, true),
		Pt(hw, -hh).Transform(m, true),
		Pt(-hw, hh).Transform(m, true),
		Pt(hw, hh).Transform(m, true),
	}
	b := boundsOf(pts[:])
	return Pt(b.Width, b.Height)
}

// boundsOf returns the axis-aligned bounds of pts.
func boundsOf(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minP, maxP := pts[0], pts[0]
	for _, p := range pts[1:] {
		minP = minP.Min(p)
		maxP = maxP.Max(p)
	}
	return Rect{X: minP.X, Y: minP.Y, Width: maxP.X - minP.X, Height: maxP.Y - minP.Y}
}

// PointInPolygon reports whether p lies inside the polygon. Points on an
// edge are inside.
func PointInPolygon(p Point, poly []Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if onSegment(p, a, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p, a, b Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > 1e-9 {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-1e-9 && p.X <= math.Max(a.X, b.X)+1e-9 &&
		p.Y >= math.Min(a.Y, b.Y)-1e-9 && p.Y <= math.Max(a.Y, b.Y)+1e-9
}

// segmentsIntersect reports whether segment ab crosses segment cd.
func segmentsIntersect(a, b, c, d Point) bool {
	d1 := cross3(c, d, a)
	d2 := cross3(c, d, b)
	d3 := cross3(a, b, c)
	d4 := cross3(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(a, c, d)) || (d2 == 0 && onSegment(b, c, d)) ||
		(d3 == 0 && onSegment(c, a, b)) || (d4 == 0 && onSegment(d, a, b))
}

func cross3(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// polygonIntersectsPolygon reports whether any edge of a crosses any edge of b.
func polygonEdgesIntersect(a, b []Point) bool {
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if segmentsIntersect(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

func degreesToRadians(d float64) float64 { return d * math.Pi / 180 }
func radiansToDegrees(r float64) float64 { return r * 180 / math.Pi }

// cos and sin snap quarter turns to exact values so that 90° rotations do
// not leak 6e-17 noise into matrices.
func cos(r float64) float64 {
	if r == 0 {
		return 1
	}
	q := math.Abs(r) / (math.Pi / 2)
	if q == math.Trunc(q) {
		switch int(q) % 4 {
		case 1, 3:
			return 0
		case 2:
			return -1
		default:
			return 1
		}
	}
	return math.Cos(r)
}

func sin(r float64) float64 {
	if r == 0 {
		return 0
	}
	q := r / (math.Pi / 2)
	if q == math.Trunc(q) {
		sign := 1.0
		if r < 0 {
			sign = -1
		}
		switch int(math.Abs(q)) % 4 {
		case 1:
			return sign
		case 3:
			return -sign
		default:
			return 0
		}
	}
	return math.Sin(r)
}
