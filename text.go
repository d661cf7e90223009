package easel

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackFontFamily is used when a text object names an unregistered family.
const FallbackFontFamily = "Go"

// FontRegistry maps font family names to loaded font sources. Families
// registered from a file keep their path so SVG export can reference it.
type FontRegistry struct {
	mu       sync.RWMutex
	families map[string]fontEntry
}

type fontEntry struct {
	source *text.FontSource
	path   string
}

// NewFontRegistry returns a registry holding only the fallback family.
func NewFontRegistry() *FontRegistry {
	r := &FontRegistry{families: make(map[string]fontEntry)}
	if src, err := text.NewFontSource(goregular.TTF); err == nil {
		r.families[FallbackFontFamily] = fontEntry{source: src}
	} else {
		logger().Warn("load fallback font", "error", err)
	}
	return r
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     *FontRegistry
)

// DefaultFonts returns the registry canvases use unless given their own.
func DefaultFonts() *FontRegistry {
	defaultFontsOnce.Do(func() { defaultFonts = NewFontRegistry() })
	return defaultFonts
}

// Register loads the font file at path under family.
func (r *FontRegistry) Register(family, path string) error {
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return fmt.Errorf("register font %q: %w", family, err)
	}
	r.mu.Lock()
	r.families[family] = fontEntry{source: src, path: path}
	r.mu.Unlock()
	return nil
}

// RegisterData registers an in-memory font under family.
func (r *FontRegistry) RegisterData(family string, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("register font %q: %w", family, err)
	}
	r.mu.Lock()
	r.families[family] = fontEntry{source: src}
	r.mu.Unlock()
	return nil
}

// Path returns the file a family was registered from, if any.
func (r *FontRegistry) Path(family string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.families[family]
	return e.path, ok && e.path != ""
}

// Face returns a face for family at size, falling back to the default family.
func (r *FontRegistry) Face(family string, size float64) text.Face {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.families[family]
	if !ok {
		e, ok = r.families[FallbackFontFamily]
	}
	if !ok || e.source == nil || size <= 0 {
		return nil
	}
	return e.source.Face(size)
}

// Text is a run of text. Lines break at '\n'; when Wrap is set (the
// "textbox" type) lines also wrap at the object's width and only the width
// controls resize it.
type Text struct {
	Text       string
	FontFamily string
	FontSize   float64
	FontWeight string
	FontStyle  string
	TextAlign  string
	LineHeight float64
	// Wrap makes the text a textbox: the width is fixed and words wrap.
	Wrap bool
	// MinWidth is the smallest width a textbox can be resized to.
	MinWidth float64

	lines []string
}

// NewText returns a text object sized to its content.
func NewText(s string, left, top float64) *Object {
	t := &Text{Text: s, FontFamily: FallbackFontFamily, FontSize: 40, TextAlign: "left", LineHeight: 1.16, FontWeight: "normal", FontStyle: "normal"}
	o := NewObject(t)
	o.Left, o.Top = left, top
	t.InitDimensions(o)
	return o
}

// NewTextbox returns a wrapping text object of the given width.
func NewTextbox(s string, left, top, width float64) *Object {
	o := NewText(s, left, top)
	t := o.shape.(*Text)
	t.Wrap = true
	t.MinWidth = 20
	o.Width = width
	o.Controls = ResizeControls()
	t.InitDimensions(o)
	return o
}

func (t *Text) Type() string {
	if t.Wrap {
		return "textbox"
	}
	return "text"
}

func (t *Text) fonts(o *Object) *FontRegistry {
	if o.canvas != nil && o.canvas.fonts != nil {
		return o.canvas.fonts
	}
	return DefaultFonts()
}

// measure returns the advance of s at the text's own size.
func (t *Text) measure(o *Object, s string) float64 {
	if f := t.fonts(o).Face(t.FontFamily, t.FontSize); f != nil {
		return f.Advance(s)
	}
	return 0.6 * t.FontSize * float64(utf8.RuneCountInString(s))
}

func (t *Text) lineHeightPx() float64 {
	lh := t.LineHeight
	if lh <= 0 {
		lh = 1.16
	}
	return t.FontSize * lh
}

// InitDimensions lays the text out and updates the object's size. Call it
// after changing the content or font.
func (t *Text) InitDimensions(o *Object) {
	t.lines = t.layout(o)
	if !t.Wrap {
		w := 0.0
		for _, l := range t.lines {
			w = math.Max(w, t.measure(o, l))
		}
		o.Width = w
	} else if o.Width < t.MinWidth {
		o.Width = t.MinWidth
	}
	o.Height = float64(len(t.lines)) * t.lineHeightPx()
}

// SetText replaces the content and re-lays it out.
func (t *Text) SetText(o *Object, s string) {
	t.Text = s
	t.InitDimensions(o)
}

// Lines returns the laid out lines.
func (t *Text) Lines() []string { return t.lines }

func (t *Text) layout(o *Object) []string {
	raw := strings.Split(t.Text, "\n")
	if !t.Wrap {
		return raw
	}
	var out []string
	for _, para := range raw {
		out = append(out, t.wrapLine(o, para, o.Width)...)
	}
	return out
}

// wrapLine breaks a paragraph at spaces so each line fits in width. A
// single word wider than width gets a line of its own.
func (t *Text) wrapLine(o *Object, para string, width float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if t.measure(o, candidate) <= width {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur)
}

// lineLeft returns the local x of a line's left edge.
func (t *Text) lineLeft(o *Object, lineWidth float64) float64 {
	switch t.TextAlign {
	case "center":
		return -lineWidth / 2
	case "right":
		return o.Width/2 - lineWidth
	}
	return -o.Width / 2
}

// Render draws each line at its transformed anchor. gg draws glyphs in
// device space, so the font size follows the transform's scale but glyphs
// are not rotated or skewed.
func (t *Text) Render(o *Object, dc *gg.Context, rs RenderState) {
	if t.lines == nil {
		t.lines = t.layout(o)
	}
	ctm := fromGG(dc.GetTransform())
	k := math.Sqrt(math.Abs(ctm[0]*ctm[3] - ctm[1]*ctm[2]))
	face := t.fonts(o).Face(t.FontFamily, t.FontSize*k)
	if face == nil {
		return
	}
	var col gg.RGBA
	switch {
	case rs.Clipping:
		col = gg.Black
	case o.Fill.Gradient != nil && len(o.Fill.Gradient.ColorStops) > 0:
		c, _ := ParseColor(o.Fill.Gradient.ColorStops[0].Color)
		col = withAlpha(c, rs.Alpha)
	default:
		c, ok := ParseColor(o.Fill.Color)
		if !ok || c.A == 0 {
			return
		}
		col = withAlpha(c, rs.Alpha)
	}
	dc.SetFont(face)
	dc.SetRGBA(col.R, col.G, col.B, col.A)
	lh := t.lineHeightPx()
	top := -o.Height / 2
	for i, line := range t.lines {
		lw := t.measure(o, line)
		x := t.lineLeft(o, lw)
		y := top + float64(i)*lh
		dx, dy := transformPoint(ctm, x, y)
		dc.DrawStringAnchored(line, dx, dy, 0, 0)
	}
}

func (t *Text) Props(o *Object, opts SerializeOptions) map[string]any {
	m := map[string]any{
		"text":       t.Text,
		"fontFamily": t.FontFamily,
		"fontSize":   round(t.FontSize),
		"fontWeight": t.FontWeight,
		"fontStyle":  t.FontStyle,
		"textAlign":  t.TextAlign,
		"lineHeight": round(t.LineHeight),
	}
	if t.Wrap {
		m["minWidth"] = round(t.MinWidth)
	}
	return m
}

func (t *Text) SVG(o *Object) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<text xml:space="preserve" font-family="%s" font-size="%s" font-style="%s" font-weight="%s" style="%s">`,
		escapeXML(t.FontFamily), num(t.FontSize), t.FontStyle, t.FontWeight, o.svgStyle())
	lh := t.lineHeightPx()
	top := -o.Height / 2
	for i, line := range t.lines {
		lw := t.measure(o, line)
		fmt.Fprintf(&b, `<tspan x="%s" y="%s">%s</tspan>`,
			num(t.lineLeft(o, lw)), num(top+float64(i)*lh+t.FontSize), escapeXML(line))
	}
	b.WriteString(`</text>`)
	return b.String()
}

func reviveText(p Props, wrap bool) *Text {
	return &Text{
		Text:       p.Str("text", ""),
		FontFamily: p.Str("fontFamily", FallbackFontFamily),
		FontSize:   p.Num("fontSize", 40),
		FontWeight: p.Str("fontWeight", "normal"),
		FontStyle:  p.Str("fontStyle", "normal"),
		TextAlign:  p.Str("textAlign", "left"),
		LineHeight: p.Num("lineHeight", 1.16),
		Wrap:       wrap,
		MinWidth:   p.Num("minWidth", 20),
	}
}
