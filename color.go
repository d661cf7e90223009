package easel

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// ParseColor converts a CSS colour string to a straight-alpha gg.RGBA.
// Supported forms: named colours, "transparent", #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb(), rgba(), hsl(), hsla(). ok is false for anything else,
// including the empty string.
func ParseColor(s string) (gg.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return gg.Transparent, false
	case s == "transparent":
		return gg.Transparent, true
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	case strings.HasPrefix(s, "hsl"):
		return parseHSLFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return gg.RGBA{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, true
	}
	return gg.Transparent, false
}

func parseHexColor(h string) (gg.RGBA, bool) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return gg.Transparent, false
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return gg.Transparent, false
	}
	return gg.RGBA{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, true
}

// funcArgs splits "name(a, b, c)" or "name(a b c / d)" into its arguments.
func funcArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	inner := s[open+1 : len(s)-1]
	inner = strings.NewReplacer(",", " ", "/", " ").Replace(inner)
	return strings.Fields(inner), true
}

func parseComponent(s string, scale float64) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return v / 100, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / scale, true
}

func parseRGBFunc(s string) (gg.RGBA, bool) {
	args, ok := funcArgs(s)
	if !ok || (len(args) != 3 && len(args) != 4) {
		return gg.Transparent, false
	}
	var c [4]float64
	c[3] = 1
	for i, a := range args {
		scale := 255.0
		if i == 3 {
			scale = 1
		}
		v, ok := parseComponent(a, scale)
		if !ok {
			return gg.Transparent, false
		}
		c[i] = clamp01(v)
	}
	return gg.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, true
}

func parseHSLFunc(s string) (gg.RGBA, bool) {
	args, ok := funcArgs(s)
	if !ok || (len(args) != 3 && len(args) != 4) {
		return gg.Transparent, false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return gg.Transparent, false
	}
	sat, ok1 := parseComponent(args[1], 100)
	lum, ok2 := parseComponent(args[2], 100)
	if !ok1 || !ok2 {
		return gg.Transparent, false
	}
	c := gg.HSL(h, clamp01(sat), clamp01(lum))
	c.A = 1
	if len(args) == 4 {
		a, ok := parseComponent(args[3], 1)
		if !ok {
			return gg.Transparent, false
		}
		c.A = clamp01(a)
	}
	return c, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// withAlpha scales the colour's alpha.
func withAlpha(c gg.RGBA, a float64) gg.RGBA {
	c.A *= a
	return c
}

// cssColor formats c as rgb()/rgba() for SVG output.
func cssColor(c gg.RGBA) (rgb string, opacity float64) {
	r := int(math.Round(c.R * 255))
	g := int(math.Round(c.G * 255))
	b := int(math.Round(c.B * 255))
	return "rgb(" + strconv.Itoa(r) + "," + strconv.Itoa(g) + "," + strconv.Itoa(b) + ")", c.A
}
