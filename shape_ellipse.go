package easel

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// Ellipse is an axis-aligned ellipse with radii Rx and Ry.
type Ellipse struct {
	Rx, Ry float64
}

// NewEllipse returns an ellipse object with its top-left at (left, top).
func NewEllipse(left, top, rx, ry float64) *Object {
	o := NewObject(&Ellipse{Rx: rx, Ry: ry})
	o.Left, o.Top = left, top
	o.Width, o.Height = rx*2, ry*2
	return o
}

func (*Ellipse) Type() string { return "ellipse" }

// SetRadii updates the radii and the object's size together.
func (e *Ellipse) SetRadii(o *Object, rx, ry float64) {
	e.Rx, e.Ry = rx, ry
	o.Width, o.Height = rx*2, ry*2
}

func (e *Ellipse) Render(o *Object, dc *gg.Context, rs RenderState) {
	dc.ClearPath()
	dc.DrawEllipse(0, 0, e.Rx, e.Ry)
	o.fillAndStroke(dc, rs)
}

func (e *Ellipse) Props(o *Object, opts SerializeOptions) map[string]any {
	return map[string]any{"rx": round(e.Rx), "ry": round(e.Ry)}
}

func (e *Ellipse) SVG(o *Object) string {
	return fmt.Sprintf(`<ellipse style="%s" cx="0" cy="0" rx="%s" ry="%s" />`,
		o.svgStyle(), num(e.Rx), num(e.Ry))
}

func reviveEllipse(p Props) Shape {
	return &Ellipse{Rx: p.Num("rx", 0), Ry: p.Num("ry", 0)}
}

// Circle is a circle or circular arc. Angles are in degrees, clockwise from
// the positive x axis.
type Circle struct {
	Radius           float64
	StartAngle       float64
	EndAngle         float64
	CounterClockwise bool
}

// NewCircle returns a full circle with its top-left at (left, top).
func NewCircle(left, top, radius float64) *Object {
	o := NewObject(&Circle{Radius: radius, EndAngle: 360})
	o.Left, o.Top = left, top
	o.Width, o.Height = radius*2, radius*2
	return o
}

func (*Circle) Type() string { return "circle" }

// SetRadius updates the radius and the object's size together.
func (c *Circle) SetRadius(o *Object, r float64) {
	c.Radius = r
	o.Width, o.Height = r*2, r*2
}

func (c *Circle) isFull() bool {
	return math.Abs(c.EndAngle-c.StartAngle) >= 360
}

func (c *Circle) Render(o *Object, dc *gg.Context, rs RenderState) {
	dc.ClearPath()
	if c.isFull() {
		dc.DrawCircle(0, 0, c.Radius)
	} else {
		a1, a2 := degreesToRadians(c.StartAngle), degreesToRadians(c.EndAngle)
		if c.CounterClockwise {
			a1, a2 = a2, a1
		}
		for a2 < a1 {
			a2 += 2 * math.Pi
		}
		dc.DrawArc(0, 0, c.Radius, a1, a2)
	}
	o.fillAndStroke(dc, rs)
}

func (c *Circle) Props(o *Object, opts SerializeOptions) map[string]any {
	return map[string]any{
		"radius":           round(c.Radius),
		"startAngle":       round(c.StartAngle),
		"endAngle":         round(c.EndAngle),
		"counterClockwise": c.CounterClockwise,
	}
}

func (c *Circle) SVG(o *Object) string {
	if c.isFull() {
		return fmt.Sprintf(`<circle style="%s" cx="0" cy="0" r="%s" />`, o.svgStyle(), num(c.Radius))
	}
	a1, a2 := degreesToRadians(c.StartAngle), degreesToRadians(c.EndAngle)
	sx, sy := math.Cos(a1)*c.Radius, math.Sin(a1)*c.Radius
	ex, ey := math.Cos(a2)*c.Radius, math.Sin(a2)*c.Radius
	span := math.Mod(c.EndAngle-c.StartAngle+360, 360)
	large := 0
	if span > 180 {
		large = 1
	}
	sweep := 1
	if c.CounterClockwise {
		sweep = 0
		large = 1 - large
	}
	return fmt.Sprintf(`<path d="M %s %s A %s %s 0 %d %d %s %s" style="%s" />`,
		num(sx), num(sy), num(c.Radius), num(c.Radius), large, sweep, num(ex), num(ey), o.svgStyle())
}

func reviveCircle(p Props) Shape {
	return &Circle{
		Radius:           p.Num("radius", 0),
		StartAngle:       p.Num("startAngle", 0),
		EndAngle:         p.Num("endAngle", 360),
		CounterClockwise: p.Bool("counterClockwise", false),
	}
}
