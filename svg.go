package easel

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// SVGReviver may rewrite the markup emitted for each top-level object.
type SVGReviver func(markup string) string

// SVGOptions controls ToSVG output.
type SVGOptions struct {
	// SuppressPreamble omits the XML declaration and doctype.
	SuppressPreamble bool
	// ViewBox overrides the viewBox derived from the viewport.
	ViewBox *Rect
	// Encoding is written in the XML declaration. Defaults to UTF-8.
	Encoding string
	// Width and Height are the svg element sizes, with units. They default
	// to the canvas size.
	Width, Height string
}

// num formats v for markup at NumFractionDigits.
func num(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

func svgMatrix(m Matrix) string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)", num(m[0]), num(m[1]), num(m[2]), num(m[3]), num(m[4]), num(m[5]))
}

// svgStyle is the style attribute shared by shape elements.
func (o *Object) svgStyle() string {
	dash := "none"
	if len(o.StrokeDashArray) > 0 {
		parts := make([]string, len(o.StrokeDashArray))
		for i, d := range o.StrokeDashArray {
			parts[i] = num(d)
		}
		dash = strings.Join(parts, " ")
	}
	var b strings.Builder
	b.WriteString(svgPaintStyle("stroke", o.Stroke, o.paintID("stroke")))
	fmt.Fprintf(&b, "stroke-width: %s; stroke-dasharray: %s; stroke-linecap: %s; stroke-dashoffset: %s; stroke-linejoin: %s; stroke-miterlimit: %s; ",
		num(o.StrokeWidth), dash, o.StrokeLineCap, num(o.StrokeDashOffset), o.StrokeLineJoin, num(o.StrokeMiterLimit))
	b.WriteString(svgPaintStyle("fill", o.Fill, o.paintID("fill")))
	fmt.Fprintf(&b, "fill-rule: %s; opacity: %s;", o.FillRule, num(o.Opacity))
	if o.StrokeUniform {
		b.WriteString(" vector-effect: non-scaling-stroke;")
	}
	if !o.Visible {
		b.WriteString(" visibility: hidden;")
	}
	if o.GlobalCompositeOperation != "" && o.GlobalCompositeOperation != "source-over" {
		if _, ok := blendModeFor(o.GlobalCompositeOperation); ok {
			fmt.Fprintf(&b, " mix-blend-mode: %s;", o.GlobalCompositeOperation)
		}
	}
	return b.String()
}

func (o *Object) paintID(prop string) string {
	return fmt.Sprintf("SVGID_%s_%d", prop, o.ID)
}

func svgPaintStyle(prop string, p Paint, id string) string {
	if p.Gradient != nil || (p.Pattern != nil && p.Pattern.img != nil) {
		return fmt.Sprintf("%s: url(#%s); ", prop, id)
	}
	c, ok := ParseColor(p.Color)
	if p.IsZero() || !ok {
		return prop + ": none; "
	}
	rgb, op := cssColor(c)
	if op < 1 {
		return fmt.Sprintf("%s: %s; %s-opacity: %s; ", prop, rgb, prop, num(op))
	}
	return fmt.Sprintf("%s: %s; ", prop, rgb)
}

// paintLocal maps gradient or pattern coordinates into the plane of a box
// of size (w, h) centred on the origin.
func paintLocal(p Paint, w, h float64) Matrix {
	switch {
	case p.Gradient != nil:
		m := translateMatrix(-w/2+p.Gradient.OffsetX, -h/2+p.Gradient.OffsetY)
		if p.Gradient.GradientTransform != nil {
			m = multiplyAffine(m, *p.Gradient.GradientTransform)
		}
		return m
	case p.Pattern != nil:
		m := translateMatrix(-w/2+p.Pattern.OffsetX, -h/2+p.Pattern.OffsetY)
		if p.Pattern.PatternTransform != nil {
			m = multiplyAffine(m, *p.Pattern.PatternTransform)
		}
		return m
	}
	return Identity
}

// paintDefSVG returns the gradient or pattern element for p, or "" for
// solid paints. gt maps paint coordinates to the referencing user space.
func paintDefSVG(id string, p Paint, gt Matrix, w, h float64) string {
	switch {
	case p.Gradient != nil:
		return gradientSVG(id, p.Gradient, gt, w, h)
	case p.Pattern != nil && p.Pattern.img != nil:
		return patternSVG(id, p.Pattern, gt, w, h)
	}
	return ""
}

func gradientSVG(id string, g *Gradient, gt Matrix, w, h float64) string {
	c := g.Coords
	if g.GradientUnits == "percentage" {
		c.X1 *= w
		c.X2 *= w
		c.Y1 *= h
		c.Y2 *= h
		c.R1 *= math.Min(w, h)
		c.R2 *= math.Min(w, h)
	}
	var b strings.Builder
	if g.Type == "radial" {
		fmt.Fprintf(&b, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" gradientTransform="%s" cx="%s" cy="%s" r="%s" fx="%s" fy="%s" fr="%s">`,
			id, svgMatrix(gt), num(c.X2), num(c.Y2), num(c.R2), num(c.X1), num(c.Y1), num(c.R1))
	} else {
		fmt.Fprintf(&b, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" gradientTransform="%s" x1="%s" y1="%s" x2="%s" y2="%s">`,
			id, svgMatrix(gt), num(c.X1), num(c.Y1), num(c.X2), num(c.Y2))
	}
	stops := slices.Clone(g.ColorStops)
	slices.SortStableFunc(stops, func(a, b ColorStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	for _, s := range stops {
		col := stopColor(s, 1)
		rgb, op := cssColor(col)
		fmt.Fprintf(&b, "\n"+`<stop offset="%s%%" style="stop-color:%s;stop-opacity: %s"/>`, num(s.Offset*100), rgb, num(op))
	}
	if g.Type == "radial" {
		b.WriteString("\n</radialGradient>\n")
	} else {
		b.WriteString("\n</linearGradient>\n")
	}
	return b.String()
}

func patternSVG(id string, p *Pattern, gt Matrix, w, h float64) string {
	bounds := p.img.Bounds()
	pw, ph := float64(bounds.Dx()), float64(bounds.Dy())
	tw, th := pw, ph
	if p.Repeat == "repeat-y" || p.Repeat == "no-repeat" {
		tw += w
	}
	if p.Repeat == "repeat-x" || p.Repeat == "no-repeat" {
		th += h
	}
	src := p.Source
	if src == "" || strings.HasPrefix(src, "data:") {
		src = encodeDataURL(p.img)
	}
	return fmt.Sprintf(`<pattern id="%s" x="0" y="0" width="%s" height="%s" patternUnits="userSpaceOnUse" patternTransform="%s">`+"\n"+
		`<image x="0" y="0" width="%s" height="%s" xlink:href="%s"></image>`+"\n</pattern>\n",
		id, num(tw), num(th), svgMatrix(gt), num(pw), num(ph), escapeXML(src))
}

// svgPlaneMatrix is the transform of o's group in the markup: the full
// matrix for top-level objects, so selection members come out in scene
// space, and the own matrix inside a group.
func (o *Object) svgPlaneMatrix() Matrix {
	if o.parent == nil {
		return o.CalcTransformMatrix()
	}
	return o.CalcOwnMatrix()
}

// toSVG returns the object's markup: a group carrying its transform, the
// paint, shadow and clip definitions, then the shape.
func (o *Object) toSVG(rv SVGReviver) string {
	if o.shape == nil || o.disposed {
		return ""
	}
	var b strings.Builder
	clip := o.ClipPath
	absClip := clip != nil && clip.AbsolutePositioned
	clipID := fmt.Sprintf("CLIPPATH_%d", o.ID)
	if absClip {
		m := clip.CalcTransformMatrix()
		if o.parent != nil {
			m = multiplyAffine(invertAffine(o.parent.CalcTransformMatrix()), m)
		}
		fmt.Fprintf(&b, "<clipPath id=\"%s\" >\n%s</clipPath>\n<g clip-path=\"url(#%s)\" >\n", clipID, clipPathSVG(clip, m), clipID)
	}

	fmt.Fprintf(&b, `<g transform="%s"`, svgMatrix(o.svgPlaneMatrix()))
	if o.Shadow != nil {
		fmt.Fprintf(&b, ` style="filter: url(#SHADOW_%d);"`, o.ID)
	}
	if o.groupShape() != nil && o.Opacity != 1 {
		fmt.Fprintf(&b, ` opacity="%s"`, num(o.Opacity))
	}
	if clip != nil && !absClip {
		fmt.Fprintf(&b, ` clip-path="url(#%s)"`, clipID)
	}
	b.WriteString(" >\n")

	for _, prop := range []string{"fill", "stroke"} {
		p := o.Fill
		if prop == "stroke" {
			p = o.Stroke
		}
		if def := paintDefSVG(o.paintID(prop), p, paintLocal(p, o.Width, o.Height), o.Width, o.Height); def != "" {
			b.WriteString(def)
		}
	}
	if o.Shadow != nil {
		b.WriteString(o.Shadow.svgFilter(fmt.Sprintf("SHADOW_%d", o.ID), o))
		b.WriteByte('\n')
	}
	if clip != nil && !absClip {
		fmt.Fprintf(&b, "<clipPath id=\"%s\" >\n%s</clipPath>\n", clipID, clipPathSVG(clip, clip.CalcOwnMatrix()))
	}
	b.WriteString(o.shape.SVG(o))
	b.WriteString("\n</g>\n")
	if absClip {
		b.WriteString("</g>\n")
	}
	out := b.String()
	if rv != nil {
		out = rv(out)
	}
	return out
}

// clipPathSVG returns the shape elements of clip, each carrying m.
func clipPathSVG(clip *Object, m Matrix) string {
	if g := clip.groupShape(); g != nil {
		var b strings.Builder
		for _, child := range g.objects {
			b.WriteString(clipPathSVG(child, multiplyAffine(m, child.CalcOwnMatrix())))
		}
		return b.String()
	}
	if clip.shape == nil {
		return ""
	}
	return injectSVGTransform(clip.shape.SVG(clip), m) + "\n"
}

// injectSVGTransform adds a transform attribute to the styled element of a
// shape's markup.
func injectSVGTransform(markup string, m Matrix) string {
	i := strings.Index(markup, ` style="`)
	if i < 0 {
		return markup
	}
	return markup[:i] + ` transform="` + svgMatrix(m) + `"` + markup[i:]
}

// ToSVG renders the scene as an SVG document.
func (c *StaticCanvas) ToSVG(opts SVGOptions, rv SVGReviver) (string, error) {
	if c.disposed {
		return "", ErrDisposed
	}
	var b strings.Builder
	if !opts.SuppressPreamble {
		enc := opts.Encoding
		if enc == "" {
			enc = "UTF-8"
		}
		fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"%s\" standalone=\"no\" ?>\n", enc)
		b.WriteString("<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n")
	}
	width, height := opts.Width, opts.Height
	if width == "" {
		width = strconv.Itoa(c.width)
	}
	if height == "" {
		height = strconv.Itoa(c.height)
	}
	vpt := c.svgViewport(opts)
	var viewBox string
	switch {
	case opts.ViewBox != nil:
		v := opts.ViewBox
		viewBox = fmt.Sprintf("%s %s %s %s", num(v.X), num(v.Y), num(v.Width), num(v.Height))
	default:
		viewBox = fmt.Sprintf("%s %s %s %s", num(-vpt[4]/vpt[0]), num(-vpt[5]/vpt[3]),
			num(float64(c.width)/vpt[0]), num(float64(c.height)/vpt[3]))
	}
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" width="%s" height="%s" viewBox="%s" xml:space="preserve">`+"\n",
		escapeXML(width), escapeXML(height), viewBox)
	fmt.Fprintf(&b, "<desc>Created with easel %s</desc>\n", Version)

	b.WriteString("<defs>\n")
	b.WriteString(c.svgFontFaces())
	w, h := float64(c.width), float64(c.height)
	for _, layer := range []struct {
		id      string
		fill    Paint
		withVpt bool
	}{
		{"SVGID_background", c.BackgroundColor, c.BackgroundVpt},
		{"SVGID_overlay", c.OverlayColor, c.OverlayVpt},
	} {
		gt := multiplyAffine(translateMatrix(w/2, h/2), paintLocal(layer.fill, w, h))
		if layer.withVpt {
			gt = multiplyAffine(vpt, gt)
		}
		b.WriteString(paintDefSVG(layer.id, layer.fill, gt, w, h))
	}
	if c.ClipPath != nil {
		fmt.Fprintf(&b, "<clipPath id=\"CLIPPATH_canvas\" >\n%s</clipPath>\n", clipPathSVG(c.ClipPath, c.ClipPath.CalcTransformMatrix()))
	}
	b.WriteString("</defs>\n")

	if c.ClipPath != nil {
		b.WriteString("<g clip-path=\"url(#CLIPPATH_canvas)\" >\n")
	}
	c.svgBackgroundOrOverlay(&b, "SVGID_background", c.BackgroundColor, c.BackgroundImage, c.BackgroundVpt, vpt, rv)
	for _, o := range c.objects {
		if o.ExcludeFromExport {
			continue
		}
		b.WriteString(o.toSVG(rv))
	}
	if c.ClipPath != nil {
		b.WriteString("</g>\n")
	}
	c.svgBackgroundOrOverlay(&b, "SVGID_overlay", c.OverlayColor, c.OverlayImage, c.OverlayVpt, vpt, rv)
	b.WriteString("</svg>")
	return b.String(), nil
}

// svgViewport is the viewport the document's viewBox expresses.
func (c *StaticCanvas) svgViewport(opts SVGOptions) Matrix {
	if opts.ViewBox != nil || !c.SVGViewportTransformation || c.vpt[0] == 0 || c.vpt[3] == 0 {
		return Identity
	}
	return c.vpt
}

func (c *StaticCanvas) svgBackgroundOrOverlay(b *strings.Builder, id string, fill Paint, img *Object, withVpt bool, vpt Matrix, rv SVGReviver) {
	inv := svgMatrix(invertAffine(vpt))
	if !fill.IsZero() {
		w, h := float64(c.width), float64(c.height)
		if fill.Gradient != nil || fill.Pattern != nil {
			fmt.Fprintf(b, `<rect transform="%s" x="0" y="0" width="%s" height="%s" fill="url(#%s)"></rect>`+"\n", inv, num(w), num(h), id)
		} else if col, ok := ParseColor(fill.Color); ok {
			rgb, op := cssColor(col)
			fmt.Fprintf(b, `<rect transform="%s" x="0" y="0" width="%s" height="%s" fill="%s" fill-opacity="%s"></rect>`+"\n", inv, num(w), num(h), rgb, num(op))
		}
	}
	if img != nil {
		if !withVpt {
			fmt.Fprintf(b, "<g transform=\"%s\">\n%s</g>\n", inv, img.toSVG(rv))
			return
		}
		b.WriteString(img.toSVG(rv))
	}
}

// svgFontFaces declares the registered font files used by text objects.
func (c *StaticCanvas) svgFontFaces() string {
	families := map[string]string{}
	var walk func(objs []*Object)
	walk = func(objs []*Object) {
		for _, o := range objs {
			if t, ok := o.shape.(*Text); ok {
				if p, ok := c.fonts.Path(t.FontFamily); ok {
					families[t.FontFamily] = p
				}
			}
			walk(o.Objects())
		}
	}
	walk(c.objects)
	if len(families) == 0 {
		return ""
	}
	names := make([]string, 0, len(families))
	for k := range families {
		names = append(names, k)
	}
	slices.Sort(names)
	var b strings.Builder
	b.WriteString("<style type=\"text/css\"><![CDATA[\n")
	for _, n := range names {
		fmt.Fprintf(&b, "@font-face {\n  font-family: '%s';\n  src: url('%s');\n}\n", n, families[n])
	}
	b.WriteString("]]></style>\n")
	return b.String()
}
