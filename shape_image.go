package easel

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Image draws a bitmap. The object's size defaults to the image size; CropX
// and CropY select the top-left of the visible source region.
type Image struct {
	// Src is the reference the image was loaded from. Empty for images built
	// in memory, which serialize as PNG data URLs.
	Src            string
	CropX, CropY   float64
	ImageSmoothing bool

	element image.Image
}

// NewImage returns an image object sized to img.
func NewImage(img image.Image, left, top float64) *Object {
	s := &Image{element: img, ImageSmoothing: true}
	o := NewObject(s)
	o.Left, o.Top = left, top
	o.Fill = Paint{}
	if img != nil {
		b := img.Bounds()
		o.Width, o.Height = float64(b.Dx()), float64(b.Dy())
	}
	return o
}

func (*Image) Type() string { return "image" }

// Element returns the decoded image.
func (im *Image) Element() image.Image { return im.element }

// SetElement swaps the bitmap and resets the object's size to it.
func (im *Image) SetElement(o *Object, img image.Image, src string) {
	im.element = img
	im.Src = src
	if img != nil {
		b := img.Bounds()
		o.Width, o.Height = float64(b.Dx()), float64(b.Dy())
	}
}

// sourceRect is the visible region of the element.
func (im *Image) sourceRect(o *Object) image.Rectangle {
	b := im.element.Bounds()
	x0 := b.Min.X + int(math.Max(0, im.CropX))
	y0 := b.Min.Y + int(math.Max(0, im.CropY))
	r := image.Rect(x0, y0, x0+int(math.Ceil(o.Width)), y0+int(math.Ceil(o.Height)))
	return r.Intersect(b)
}

func (im *Image) Render(o *Object, dc *gg.Context, rs RenderState) {
	if im.element == nil {
		return
	}
	sr := im.sourceRect(o)
	if sr.Empty() {
		return
	}
	ctm := fromGG(dc.GetTransform())
	// source pixel -> local plane -> device
	s2d := multiplyAffine(ctm, translateMatrix(-o.Width/2-float64(sr.Min.X), -o.Height/2-float64(sr.Min.Y)))

	quad := []Point{
		Pt(float64(sr.Min.X), float64(sr.Min.Y)).Transform(s2d, false),
		Pt(float64(sr.Max.X), float64(sr.Min.Y)).Transform(s2d, false),
		Pt(float64(sr.Max.X), float64(sr.Max.Y)).Transform(s2d, false),
		Pt(float64(sr.Min.X), float64(sr.Max.Y)).Transform(s2d, false),
	}
	db := boundsOf(quad)
	area := image.Rect(
		int(math.Floor(db.X)), int(math.Floor(db.Y)),
		int(math.Ceil(db.X+db.Width)), int(math.Ceil(db.Y+db.Height)),
	).Intersect(image.Rect(0, 0, dc.Width(), dc.Height()))
	if area.Empty() {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	local := multiplyAffine(translateMatrix(-float64(area.Min.X), -float64(area.Min.Y)), s2d)
	var interp draw.Transformer = draw.BiLinear
	if !im.ImageSmoothing || (o.canvas != nil && !o.canvas.ImageSmoothingEnabled) {
		interp = draw.NearestNeighbor
	}
	interp.Transform(tmp, f64.Aff3{local[0], local[2], local[4], local[1], local[3], local[5]},
		im.element, sr, draw.Over, nil)

	dc.Push()
	dc.Identity()
	dc.DrawImageEx(gg.ImageBufFromImage(tmp), gg.DrawImageOptions{
		X:       float64(area.Min.X),
		Y:       float64(area.Min.Y),
		Opacity: rs.Alpha,
	})
	dc.Pop()

	if !rs.Clipping && !o.Stroke.IsZero() {
		dc.ClearPath()
		dc.DrawRectangle(-o.Width/2, -o.Height/2, o.Width, o.Height)
		o.strokePath(dc, rs)
		dc.ClearPath()
	}
}

func (im *Image) Props(o *Object, opts SerializeOptions) map[string]any {
	src := im.Src
	if src == "" && im.element != nil && !opts.Dataless {
		src = encodeDataURL(im.element)
	}
	if opts.Dataless && strings.HasPrefix(src, "data:") {
		src = ""
	}
	return map[string]any{
		"src":            src,
		"cropX":          round(im.CropX),
		"cropY":          round(im.CropY),
		"imageSmoothing": im.ImageSmoothing,
	}
}

func (im *Image) SVG(o *Object) string {
	src := im.Src
	if src == "" && im.element != nil {
		src = encodeDataURL(im.element)
	}
	x, y := -o.Width/2, -o.Height/2
	var ew, eh float64
	if im.element != nil {
		b := im.element.Bounds()
		ew, eh = float64(b.Dx()), float64(b.Dy())
	}
	var b strings.Builder
	clipID := ""
	if im.CropX != 0 || im.CropY != 0 || ew > o.Width || eh > o.Height {
		clipID = fmt.Sprintf("imageCrop_%d", o.ID)
		fmt.Fprintf(&b, `<clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s" /></clipPath>`,
			clipID, num(x), num(y), num(o.Width), num(o.Height))
	}
	fmt.Fprintf(&b, `<image style="%s" xlink:href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none"`,
		o.svgStyle(), escapeXML(src), num(x-im.CropX), num(y-im.CropY), num(ew), num(eh))
	if clipID != "" {
		fmt.Fprintf(&b, ` clip-path="url(#%s)"`, clipID)
	}
	b.WriteString(` />`)
	return b.String()
}
