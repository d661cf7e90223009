package easel

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// kappa is the bezier handle ratio that approximates a quarter circle.
const kappa = 0.5522847498

// RectShape is a rectangle with optional rounded corners.
type RectShape struct {
	Rx, Ry float64
}

// NewRect returns a rectangle object of the given size at (left, top).
func NewRect(left, top, width, height float64) *Object {
	o := NewObject(&RectShape{})
	o.Left, o.Top = left, top
	o.Width, o.Height = width, height
	return o
}

func (*RectShape) Type() string { return "rect" }

func (r *RectShape) radii(o *Object) (float64, float64) {
	rx := math.Min(r.Rx, o.Width/2)
	ry := math.Min(r.Ry, o.Height/2)
	if rx < 0 {
		rx = 0
	}
	if ry < 0 {
		ry = 0
	}
	return rx, ry
}

func (r *RectShape) Render(o *Object, dc *gg.Context, rs RenderState) {
	w, h := o.Width, o.Height
	x, y := -w/2, -h/2
	rx, ry := r.radii(o)
	k := 1 - kappa
	dc.ClearPath()
	dc.MoveTo(x+rx, y)
	dc.LineTo(x+w-rx, y)
	if rx != 0 || ry != 0 {
		dc.CubicTo(x+w-k*rx, y, x+w, y+k*ry, x+w, y+ry)
	}
	dc.LineTo(x+w, y+h-ry)
	if rx != 0 || ry != 0 {
		dc.CubicTo(x+w, y+h-k*ry, x+w-k*rx, y+h, x+w-rx, y+h)
	}
	dc.LineTo(x+rx, y+h)
	if rx != 0 || ry != 0 {
		dc.CubicTo(x+k*rx, y+h, x, y+h-k*ry, x, y+h-ry)
	}
	dc.LineTo(x, y+ry)
	if rx != 0 || ry != 0 {
		dc.CubicTo(x, y+k*ry, x+k*rx, y, x+rx, y)
	}
	dc.ClosePath()
	o.fillAndStroke(dc, rs)
}

func (r *RectShape) Props(o *Object, opts SerializeOptions) map[string]any {
	return map[string]any{"rx": round(r.Rx), "ry": round(r.Ry)}
}

func (r *RectShape) SVG(o *Object) string {
	rx, ry := r.radii(o)
	return fmt.Sprintf(`<rect style="%s" x="%s" y="%s" rx="%s" ry="%s" width="%s" height="%s" />`,
		o.svgStyle(), num(-o.Width/2), num(-o.Height/2), num(rx), num(ry), num(o.Width), num(o.Height))
}

func reviveRect(p Props) Shape {
	return &RectShape{Rx: p.Num("rx", 0), Ry: p.Num("ry", 0)}
}
