package easel

import (
	"math"

	"github.com/gogpu/gg"
)

// Render draws the object onto dc using its full scene transform. The
// context's current transform is treated as the scene-to-device mapping.
func (o *Object) Render(dc *gg.Context) {
	o.render(dc, RenderState{Alpha: 1})
}

// render draws o. When rs.inGroup is set the context already holds the
// enclosing group's matrix and only the own matrix is applied.
func (o *Object) render(dc *gg.Context, rs RenderState) {
	if o.isNotVisible() {
		return
	}
	if o.canvas != nil && o.canvas.debug {
		debugCheckGroupDepth(o)
	}
	dc.Push()
	defer dc.Pop()
	if !rs.Clipping && !rs.inGroup {
		o.drawSelectionBackground(dc)
	}

	m := o.CalcOwnMatrix()
	if !rs.inGroup {
		m = o.CalcTransformMatrix()
	}
	dc.Transform(toGG(m))

	if rs.Clipping {
		rs.Alpha = 1
	} else {
		if rs.Alpha == 0 {
			rs.Alpha = 1
		}
		rs.Alpha *= o.Opacity
	}

	op := o.GlobalCompositeOperation
	mode, layered := blendModeFor(op)
	isolate := !rs.Clipping && (o.ClipPath != nil || o.Shadow != nil || !layered)
	if !isolate {
		if mode != gg.BlendNormal && !rs.Clipping {
			dc.PushLayer(mode, 1)
			defer dc.PopLayer()
		}
		o.drawObject(dc, rs)
		return
	}

	scratch := scratchLike(dc)
	defer scratch.Close()
	o.drawObject(scratch, rs)
	if o.ClipPath != nil {
		o.drawClipPath(scratch, o.ClipPath)
	}

	target := dc.ResizeTarget()
	if o.Shadow != nil {
		src := scratch
		if !o.Shadow.AffectStroke && !o.Stroke.IsZero() {
			src = scratchLike(dc)
			defer src.Close()
			fillOnly := rs
			fillOnly.noStroke = true
			o.drawObject(src, fillOnly)
			if o.ClipPath != nil {
				o.drawClipPath(src, o.ClipPath)
			}
		}
		radius, dx, dy := o.Shadow.deviceParams(o, fromGG(dc.GetTransform()))
		o.Shadow.paint(target, src.ResizeTarget(), radius, dx, dy)
	}

	if layered && mode != gg.BlendNormal {
		dc.Push()
		dc.Identity()
		dc.DrawImageEx(gg.ImageBufFromImage(scratch.Image()), gg.DrawImageOptions{
			Opacity:   1,
			BlendMode: mode,
		})
		dc.Pop()
		return
	}
	compositePixmap(target, scratch.ResizeTarget(), compositeFor(op))
}

// drawObject draws the background, the shape and nothing else. The context
// transform is the object's local plane.
func (o *Object) drawObject(dc *gg.Context, rs RenderState) {
	if !rs.Clipping {
		o.renderBackground(dc, rs)
	}
	if o.shape != nil {
		o.shape.Render(o, dc, rs)
	}
}

// drawSelectionBackground fills the padded box behind the active object.
// dc holds the scene-to-device transform.
func (o *Object) drawSelectionBackground(dc *gg.Context) {
	if o.SelectionBackgroundColor == "" {
		return
	}
	if c := interactiveOf(o); c == nil || c.ActiveObject() != o {
		return
	}
	col, ok := ParseColor(o.SelectionBackgroundColor)
	if !ok {
		return
	}
	center := o.GetRelativeCenterPoint()
	wh := o.currentViewportDimensions()
	vpt := o.viewportTransform()
	dc.Push()
	dc.Translate(center.X, center.Y)
	dc.Scale(1/nonZero(vpt[0]), 1/nonZero(vpt[3]))
	dc.Rotate(degreesToRadians(o.Angle))
	dc.SetFillBrush(gg.Solid(col))
	dc.ClearPath()
	dc.DrawRectangle(-wh.X/2, -wh.Y/2, wh.X, wh.Y)
	_ = dc.Fill()
	dc.Pop()
}

func (o *Object) renderBackground(dc *gg.Context, rs RenderState) {
	if o.BackgroundColor == "" {
		return
	}
	c, ok := ParseColor(o.BackgroundColor)
	if !ok || c.A == 0 {
		return
	}
	dim := o.NonTransformedDimensions()
	dc.SetFillBrush(gg.Solid(withAlpha(c, rs.Alpha)))
	dc.DrawRectangle(-dim.X/2, -dim.Y/2, dim.X, dim.Y)
	_ = dc.Fill()
}

// drawClipPath masks the pixels already drawn on dc with clip. dc's
// transform is o's local plane.
func (o *Object) drawClipPath(dc *gg.Context, clip *Object) {
	mask := scratchLike(dc)
	defer mask.Close()
	if clip.AbsolutePositioned {
		mask.Transform(toGG(invertAffine(o.CalcTransformMatrix())))
	}
	clip.canvas = o.canvas
	clip.render(mask, RenderState{Alpha: 1, Clipping: true, inGroup: true})
	maskWithClip(dc.ResizeTarget(), mask.ResizeTarget(), clip.Inverted)
}

// fillAndStroke paints the current path honouring PaintFirst, then clears
// it. Shapes call it after building their path in local space.
func (o *Object) fillAndStroke(dc *gg.Context, rs RenderState) {
	defer dc.ClearPath()
	if rs.Clipping {
		dc.SetFillRule(o.fillRule())
		dc.SetFillBrush(gg.Solid(gg.Black))
		_ = dc.FillPreserve()
		return
	}
	if o.PaintFirst == "stroke" {
		o.strokePath(dc, rs)
		o.fillPath(dc, rs)
		return
	}
	o.fillPath(dc, rs)
	o.strokePath(dc, rs)
}

func (o *Object) fillRule() gg.FillRule {
	if o.FillRule == "evenodd" {
		return gg.FillRuleEvenOdd
	}
	return gg.FillRuleNonZero
}

func (o *Object) fillPath(dc *gg.Context, rs RenderState) {
	b, ok := o.Fill.brush(dc.GetTransform(), o.Width, o.Height, rs.Alpha)
	if !ok {
		return
	}
	dc.SetFillRule(o.fillRule())
	dc.SetFillBrush(b)
	_ = dc.FillPreserve()
}

func (o *Object) strokePath(dc *gg.Context, rs RenderState) {
	if rs.noStroke || o.StrokeWidth == 0 {
		return
	}
	b, ok := o.Stroke.brush(dc.GetTransform(), o.Width, o.Height, rs.Alpha)
	if !ok {
		return
	}
	k := o.strokeScale(fromGG(dc.GetTransform()))
	dc.SetStrokeBrush(b)
	dc.SetLineWidth(o.StrokeWidth * k)
	dc.SetLineCap(lineCap(o.StrokeLineCap))
	dc.SetLineJoin(lineJoin(o.StrokeLineJoin))
	dc.SetMiterLimit(o.StrokeMiterLimit)
	if len(o.StrokeDashArray) > 0 {
		dash := make([]float64, len(o.StrokeDashArray))
		for i, d := range o.StrokeDashArray {
			dash[i] = d * k
		}
		dc.SetDash(dash...)
		dc.SetDashOffset(o.StrokeDashOffset * k)
	} else {
		dc.ClearDash()
	}
	_ = dc.StrokePreserve()
}

// strokeScale converts local stroke units to device pixels. gg strokes in
// device space, so the width is scaled by the transform's mean scale.
func (o *Object) strokeScale(ctm Matrix) float64 {
	k := math.Sqrt(math.Abs(ctm[0]*ctm[3] - ctm[1]*ctm[2]))
	if o.StrokeUniform {
		s := math.Sqrt(math.Abs(o.ScaleX * o.ScaleY))
		if s != 0 {
			k /= s
		}
	}
	return k
}

func lineCap(s string) gg.LineCap {
	switch s {
	case "round":
		return gg.LineCapRound
	case "square":
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

func lineJoin(s string) gg.LineJoin {
	switch s {
	case "round":
		return gg.LineJoinRound
	case "bevel":
		return gg.LineJoinBevel
	}
	return gg.LineJoinMiter
}
