package easel

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
)

// Paint is a fill or stroke: a CSS colour, a gradient, or an image pattern.
// The zero Paint paints nothing.
type Paint struct {
	Color    string
	Gradient *Gradient
	Pattern  *Pattern
}

// Color returns a solid paint.
func Color(css string) Paint { return Paint{Color: css} }

// IsZero reports whether the paint draws nothing.
func (p Paint) IsZero() bool {
	return p.Gradient == nil && p.Pattern == nil && (p.Color == "" || p.Color == "transparent")
}

// ColorStop is one stop of a gradient.
type ColorStop struct {
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity,omitempty"`
}

// GradientCoords are the gradient geometry in object pixels measured from the
// top-left of the object's box (or fractions when GradientUnits is
// "percentage").
type GradientCoords struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
	R1 float64 `json:"r1,omitempty"`
	R2 float64 `json:"r2,omitempty"`
}

// Gradient is a linear or radial gradient.
type Gradient struct {
	Type              string         `json:"type"`
	GradientUnits     string         `json:"gradientUnits"`
	Coords            GradientCoords `json:"coords"`
	ColorStops        []ColorStop    `json:"colorStops"`
	OffsetX           float64        `json:"offsetX"`
	OffsetY           float64        `json:"offsetY"`
	GradientTransform *Matrix        `json:"gradientTransform,omitempty"`
}

// NewLinearGradient returns a pixel-unit linear gradient.
func NewLinearGradient(x1, y1, x2, y2 float64, stops ...ColorStop) *Gradient {
	return &Gradient{
		Type:          "linear",
		GradientUnits: "pixels",
		Coords:        GradientCoords{X1: x1, Y1: y1, X2: x2, Y2: y2},
		ColorStops:    stops,
	}
}

// NewRadialGradient returns a pixel-unit radial gradient from circle
// (x1, y1, r1) to circle (x2, y2, r2).
func NewRadialGradient(x1, y1, r1, x2, y2, r2 float64, stops ...ColorStop) *Gradient {
	return &Gradient{
		Type:          "radial",
		GradientUnits: "pixels",
		Coords:        GradientCoords{X1: x1, Y1: y1, X2: x2, Y2: y2, R1: r1, R2: r2},
		ColorStops:    stops,
	}
}

// Pattern is a repeating image fill. Source is the reference used for
// serialization; the decoded image is resolved on load.
type Pattern struct {
	Source           string  `json:"source"`
	Repeat           string  `json:"repeat"`
	OffsetX          float64 `json:"offsetX"`
	OffsetY          float64 `json:"offsetY"`
	PatternTransform *Matrix `json:"patternTransform,omitempty"`

	img image.Image
}

// NewPattern returns a pattern over an already decoded image.
func NewPattern(img image.Image, repeat string) *Pattern {
	return &Pattern{img: img, Repeat: repeat}
}

// Image returns the decoded pattern image, or nil if not resolved.
func (p *Pattern) Image() image.Image { return p.img }

// MarshalJSON encodes a colour as a string, gradients and patterns as
// objects, and the zero paint as null.
func (p Paint) MarshalJSON() ([]byte, error) {
	switch {
	case p.Gradient != nil:
		return json.Marshal(gradientObject(p.Gradient))
	case p.Pattern != nil:
		return json.Marshal(patternObject(p.Pattern, false))
	case p.Color != "":
		return json.Marshal(p.Color)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a colour string, a gradient object or a pattern
// object. Pattern images are left unresolved.
func (p *Paint) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := parsePaint(v)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// parsePaint converts a decoded JSON value into a Paint.
func parsePaint(v any) (Paint, error) {
	switch t := v.(type) {
	case nil:
		return Paint{}, nil
	case string:
		return Paint{Color: t}, nil
	case Paint:
		return t, nil
	case map[string]any:
		r := Props(t)
		if _, ok := t["colorStops"]; ok || r.Str("type", "") == "linear" || r.Str("type", "") == "radial" {
			return Paint{Gradient: parseGradient(r)}, nil
		}
		if _, ok := t["source"]; ok {
			return Paint{Pattern: parsePattern(r)}, nil
		}
		return Paint{}, fmt.Errorf("%w: unrecognised paint object", ErrInvalidScene)
	}
	return Paint{}, fmt.Errorf("%w: paint of type %T", ErrInvalidScene, v)
}

func parseGradient(r Props) *Gradient {
	g := &Gradient{
		Type:          r.Str("type", "linear"),
		GradientUnits: r.Str("gradientUnits", "pixels"),
		OffsetX:       r.Num("offsetX", 0),
		OffsetY:       r.Num("offsetY", 0),
	}
	if c, ok := r["coords"].(map[string]any); ok {
		cr := Props(c)
		g.Coords = GradientCoords{
			X1: cr.Num("x1", 0), Y1: cr.Num("y1", 0),
			X2: cr.Num("x2", 0), Y2: cr.Num("y2", 0),
			R1: cr.Num("r1", 0), R2: cr.Num("r2", 0),
		}
	}
	if stops, ok := r["colorStops"].([]any); ok {
		for _, s := range stops {
			m, ok := s.(map[string]any)
			if !ok {
				continue
			}
			sr := Props(m)
			g.ColorStops = append(g.ColorStops, ColorStop{
				Offset:  sr.Num("offset", 0),
				Color:   sr.Str("color", "black"),
				Opacity: sr.Num("opacity", 0),
			})
		}
	}
	if m, ok := r.Matrix("gradientTransform"); ok {
		g.GradientTransform = &m
	}
	return g
}

func parsePattern(r Props) *Pattern {
	p := &Pattern{
		Source:  r.Str("source", ""),
		Repeat:  r.Str("repeat", "repeat"),
		OffsetX: r.Num("offsetX", 0),
		OffsetY: r.Num("offsetY", 0),
	}
	if m, ok := r.Matrix("patternTransform"); ok {
		p.PatternTransform = &m
	}
	return p
}

func gradientObject(g *Gradient) map[string]any {
	stops := make([]any, len(g.ColorStops))
	for i, s := range g.ColorStops {
		m := map[string]any{"offset": round(s.Offset), "color": s.Color}
		if s.Opacity != 0 {
			m["opacity"] = round(s.Opacity)
		}
		stops[i] = m
	}
	coords := map[string]any{
		"x1": round(g.Coords.X1), "y1": round(g.Coords.Y1),
		"x2": round(g.Coords.X2), "y2": round(g.Coords.Y2),
	}
	if g.Type == "radial" {
		coords["r1"] = round(g.Coords.R1)
		coords["r2"] = round(g.Coords.R2)
	}
	m := map[string]any{
		"type":          g.Type,
		"gradientUnits": g.GradientUnits,
		"coords":        coords,
		"colorStops":    stops,
		"offsetX":       round(g.OffsetX),
		"offsetY":       round(g.OffsetY),
	}
	if g.GradientTransform != nil {
		m["gradientTransform"] = matrixValue(*g.GradientTransform)
	}
	return m
}

func patternObject(p *Pattern, dataless bool) map[string]any {
	src := p.Source
	if src == "" && p.img != nil && !dataless {
		src = encodeDataURL(p.img)
	}
	m := map[string]any{
		"type":    "pattern",
		"source":  src,
		"repeat":  p.Repeat,
		"offsetX": round(p.OffsetX),
		"offsetY": round(p.OffsetY),
	}
	if p.PatternTransform != nil {
		m["patternTransform"] = matrixValue(*p.PatternTransform)
	}
	return m
}

func paintValue(p Paint, dataless bool) any {
	switch {
	case p.Gradient != nil:
		return gradientObject(p.Gradient)
	case p.Pattern != nil:
		return patternObject(p.Pattern, dataless)
	case p.Color != "":
		return p.Color
	}
	return nil
}

// brush converts p into a gg brush for an object of size (w, h) drawn with
// the context's current transform ctm, where object-local (0, 0) is the
// object's centre. ok is false when nothing should be painted.
func (p Paint) brush(ctm gg.Matrix, w, h, opacity float64) (gg.Brush, bool) {
	switch {
	case p.Gradient != nil:
		return p.Gradient.brush(ctm, w, h, opacity), true
	case p.Pattern != nil:
		if p.Pattern.img == nil {
			return nil, false
		}
		return p.Pattern.brush(ctm, w, h, opacity), true
	}
	c, ok := ParseColor(p.Color)
	if !ok || c.A == 0 {
		return nil, false
	}
	return gg.Solid(withAlpha(c, opacity)), true
}

// localSampler maps device pixels back into a paint's own plane.
func localSampler(ctm gg.Matrix, local Matrix) func(x, y float64) (float64, float64) {
	inv := invertAffine(multiplyAffine(fromGG(ctm), local))
	return func(x, y float64) (float64, float64) {
		return transformPoint(inv, x, y)
	}
}

func (g *Gradient) brush(ctm gg.Matrix, w, h, opacity float64) gg.Brush {
	c := g.Coords
	if g.GradientUnits == "percentage" {
		c.X1 *= w
		c.X2 *= w
		c.Y1 *= h
		c.Y2 *= h
		c.R1 *= math.Min(w, h)
		c.R2 *= math.Min(w, h)
	}
	local := translateMatrix(-w/2+g.OffsetX, -h/2+g.OffsetY)
	if g.GradientTransform != nil {
		local = multiplyAffine(local, *g.GradientTransform)
	}
	var inner gg.Brush
	if g.Type == "radial" {
		rb := gg.NewRadialGradientBrush(c.X2, c.Y2, c.R1, c.R2).SetFocus(c.X1, c.Y1)
		for _, s := range g.ColorStops {
			rb.AddColorStop(s.Offset, stopColor(s, opacity))
		}
		inner = rb
	} else {
		lb := gg.NewLinearGradientBrush(c.X1, c.Y1, c.X2, c.Y2)
		for _, s := range g.ColorStops {
			lb.AddColorStop(s.Offset, stopColor(s, opacity))
		}
		inner = lb
	}
	toLocal := localSampler(ctm, local)
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		lx, ly := toLocal(x, y)
		return inner.ColorAt(lx, ly)
	})
}

func stopColor(s ColorStop, opacity float64) gg.RGBA {
	c, ok := ParseColor(s.Color)
	if !ok {
		c = gg.Black
	}
	if s.Opacity != 0 {
		c.A *= s.Opacity
	}
	return withAlpha(c, opacity)
}

func (p *Pattern) brush(ctm gg.Matrix, w, h, opacity float64) gg.Brush {
	local := translateMatrix(-w/2+p.OffsetX, -h/2+p.OffsetY)
	if p.PatternTransform != nil {
		local = multiplyAffine(local, *p.PatternTransform)
	}
	toLocal := localSampler(ctm, local)
	b := p.img.Bounds()
	pw, ph := b.Dx(), b.Dy()
	repeatX := p.Repeat == "" || p.Repeat == "repeat" || p.Repeat == "repeat-x"
	repeatY := p.Repeat == "" || p.Repeat == "repeat" || p.Repeat == "repeat-y"
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		lx, ly := toLocal(x, y)
		ix, iy := int(math.Floor(lx)), int(math.Floor(ly))
		if pw == 0 || ph == 0 {
			return gg.Transparent
		}
		if repeatX {
			ix = ((ix % pw) + pw) % pw
		} else if ix < 0 || ix >= pw {
			return gg.Transparent
		}
		if repeatY {
			iy = ((iy % ph) + ph) % ph
		} else if iy < 0 || iy >= ph {
			return gg.Transparent
		}
		c := straightColor(p.img.At(b.Min.X+ix, b.Min.Y+iy))
		return withAlpha(c, opacity)
	})
}

// fromGG converts a gg matrix to canvas order.
func fromGG(m gg.Matrix) Matrix {
	return Matrix{m.A, m.D, m.B, m.E, m.C, m.F}
}

// toGG converts a canvas-order matrix to a gg matrix.
func toGG(m Matrix) gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

// straightColor converts any colour to non-premultiplied gg.RGBA.
func straightColor(c color.Color) gg.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return gg.RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}
