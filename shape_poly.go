package easel

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"
)

// Poly is a polyline or, when Closed, a polygon. Points are in the object's
// own coordinates; PathOffset is the centre of their bounds.
type Poly struct {
	Points     []Point
	Closed     bool
	PathOffset Point
}

// NewPolyline returns an open polyline positioned at its bounds.
func NewPolyline(points []Point) *Object {
	return newPoly(points, false)
}

// NewPolygon returns a closed polygon positioned at its bounds.
func NewPolygon(points []Point) *Object {
	return newPoly(points, true)
}

func newPoly(points []Point, closed bool) *Object {
	p := &Poly{Points: points, Closed: closed}
	o := NewObject(p)
	b := boundsOf(points)
	o.Left, o.Top = b.X, b.Y
	p.SetDimensions(o)
	return o
}

func (p *Poly) Type() string {
	if p.Closed {
		return "polygon"
	}
	return "polyline"
}

// SetDimensions recomputes size and PathOffset from the points.
func (p *Poly) SetDimensions(o *Object) {
	b := boundsOf(p.Points)
	o.Width, o.Height = b.Width, b.Height
	p.PathOffset = Pt(b.X+b.Width/2, b.Y+b.Height/2)
}

func (p *Poly) Render(o *Object, dc *gg.Context, rs RenderState) {
	if len(p.Points) == 0 {
		return
	}
	dc.ClearPath()
	off := p.PathOffset
	dc.MoveTo(p.Points[0].X-off.X, p.Points[0].Y-off.Y)
	for _, pt := range p.Points[1:] {
		dc.LineTo(pt.X-off.X, pt.Y-off.Y)
	}
	if p.Closed {
		dc.ClosePath()
	}
	o.fillAndStroke(dc, rs)
}

func (p *Poly) Props(o *Object, opts SerializeOptions) map[string]any {
	pts := make([]any, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = map[string]any{"x": round(pt.X), "y": round(pt.Y)}
	}
	return map[string]any{"points": pts}
}

func (p *Poly) SVG(o *Object) string {
	var b strings.Builder
	for i, pt := range p.Points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(num(pt.X - p.PathOffset.X))
		b.WriteByte(',')
		b.WriteString(num(pt.Y - p.PathOffset.Y))
	}
	return fmt.Sprintf(`<%s style="%s" points="%s" />`, p.Type(), o.svgStyle(), b.String())
}

func parsePoints(v any) []Point {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	pts := make([]Point, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		pp := Props(m)
		pts = append(pts, Pt(pp.Num("x", 0), pp.Num("y", 0)))
	}
	return pts
}

// pointPlaneMatrix maps the poly's point coordinates to its local plane.
func (p *Poly) pointPlaneMatrix() Matrix {
	return translateMatrix(-p.PathOffset.X, -p.PathOffset.Y)
}
