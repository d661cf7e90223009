package easel

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/gogpu/gg"
)

// Shadow is a drop shadow drawn beneath an object.
type Shadow struct {
	Color   string
	Blur    float64
	OffsetX float64
	OffsetY float64
	// AffectStroke casts the stroke's shadow too.
	AffectStroke bool
	// NonScaling keeps offsets and blur independent of the object's scale.
	NonScaling bool
}

// NewShadow returns a shadow with the given colour, blur and offsets.
func NewShadow(color string, blur, offsetX, offsetY float64) *Shadow {
	return &Shadow{Color: color, Blur: blur, OffsetX: offsetX, OffsetY: offsetY}
}

func parseShadow(v any) *Shadow {
	switch t := v.(type) {
	case map[string]any:
		p := Props(t)
		return &Shadow{
			Color:        p.Str("color", "rgb(0,0,0)"),
			Blur:         p.Num("blur", 0),
			OffsetX:      p.Num("offsetX", 0),
			OffsetY:      p.Num("offsetY", 0),
			AffectStroke: p.Bool("affectStroke", false),
			NonScaling:   p.Bool("nonScaling", false),
		}
	case string:
		return parseShadowString(t)
	}
	return nil
}

// parseShadowString reads the CSS form "color offsetX offsetY blur".
func parseShadowString(s string) *Shadow {
	sh := &Shadow{Color: "rgb(0,0,0)"}
	var nums []float64
	var color string
	for _, f := range splitCSSFields(s) {
		var v float64
		if _, err := fmt.Sscanf(f, "%gpx", &v); err == nil {
			nums = append(nums, v)
			continue
		}
		if _, err := fmt.Sscanf(f, "%g", &v); err == nil {
			nums = append(nums, v)
			continue
		}
		color = f
	}
	if color != "" {
		sh.Color = color
	}
	if len(nums) > 0 {
		sh.OffsetX = nums[0]
	}
	if len(nums) > 1 {
		sh.OffsetY = nums[1]
	}
	if len(nums) > 2 {
		sh.Blur = nums[2]
	}
	return sh
}

// splitCSSFields splits on spaces outside parentheses.
func splitCSSFields(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ' ' && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func (s *Shadow) value() map[string]any {
	return map[string]any{
		"color":        s.Color,
		"blur":         round(s.Blur),
		"offsetX":      round(s.OffsetX),
		"offsetY":      round(s.OffsetY),
		"affectStroke": s.AffectStroke,
		"nonScaling":   s.NonScaling,
	}
}

// deviceParams returns the blur radius and offsets in device pixels for an
// object drawn with ctm.
func (s *Shadow) deviceParams(o *Object, ctm Matrix) (radius, dx, dy float64) {
	sx := math.Hypot(ctm[0], ctm[1])
	sy := math.Hypot(ctm[2], ctm[3])
	if s.NonScaling {
		sx /= math.Abs(o.ScaleX)
		sy /= math.Abs(o.ScaleY)
	}
	return s.Blur * (sx + sy) / 4, s.OffsetX * sx, s.OffsetY * sy
}

// paint draws the shadow cast by the premultiplied pixels of src onto dst.
func (s *Shadow) paint(dst, src *gg.Pixmap, radius, dx, dy float64) {
	c, ok := ParseColor(s.Color)
	if !ok || c.A == 0 {
		return
	}
	w, h := src.Width(), src.Height()
	tint := image.NewRGBA(image.Rect(0, 0, w, h))
	sd := src.Data()
	cr, cg, cb := uint8(c.R*255+0.5), uint8(c.G*255+0.5), uint8(c.B*255+0.5)
	ca := uint8(c.A*255 + 0.5)
	for i := 0; i+3 < len(sd) && i+3 < len(tint.Pix); i += 4 {
		a := mul255(sd[i+3], ca)
		if a == 0 {
			continue
		}
		tint.Pix[i] = mul255(cr, a)
		tint.Pix[i+1] = mul255(cg, a)
		tint.Pix[i+2] = mul255(cb, a)
		tint.Pix[i+3] = a
	}
	blurred := tint
	if radius > 0 {
		blurred = blur.Gaussian(tint, radius)
	}
	ox, oy := int(math.Round(dx)), int(math.Round(dy))
	dd := dst.Data()
	for y := 0; y < h; y++ {
		sy := y - oy
		if sy < 0 || sy >= h {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x - ox
			if sx < 0 || sx >= w {
				continue
			}
			si := blurred.PixOffset(sx, sy)
			di := (y*w + x) * 4
			if di+3 >= len(dd) {
				continue
			}
			sourceOver(dd[di:di+4], blurred.Pix[si:si+4])
		}
	}
}

// svgFilter returns the filter element for the shadow.
func (s *Shadow) svgFilter(id string, o *Object) string {
	c, ok := ParseColor(s.Color)
	if !ok {
		c = gg.Black
	}
	rgb, op := cssColor(c)
	sx, sy := 1.0, 1.0
	if s.NonScaling {
		sx, sy = 1/math.Abs(o.ScaleX), 1/math.Abs(o.ScaleY)
	}
	return fmt.Sprintf(`<filter id="%s" y="-40%%" height="180%%" x="-40%%" width="180%%">`+
		`<feGaussianBlur in="SourceAlpha" stdDeviation="%s"></feGaussianBlur>`+
		`<feOffset dx="%s" dy="%s" result="oBlur"></feOffset>`+
		`<feFlood flood-color="%s" flood-opacity="%s"/>`+
		`<feComposite in2="oBlur" operator="in"/>`+
		`<feMerge><feMergeNode></feMergeNode><feMergeNode in="SourceGraphic"></feMergeNode></feMerge>`+
		`</filter>`,
		id, num(s.Blur/2), num(s.OffsetX*sx), num(s.OffsetY*sy), rgb, num(op))
}
