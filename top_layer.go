package easel

import (
	"github.com/gogpu/gg"
)

func (c *Canvas) clearTop() {
	c.top.Identity()
	c.top.ResetClip()
	c.top.Clear()
	c.topDirty = false
}

// RenderTop clears and repaints only the top surface.
func (c *Canvas) RenderTop() {
	if c.disposed {
		return
	}
	c.clearTop()
	c.topRenders++
	c.renderTopLayer(c.top)
	c.Fire("after:render", &Event{Context: c.top})
}

// renderTopLayer paints the stroke being drawn and the marquee. The top
// surface is left dirty so the next full render clears it.
func (c *Canvas) renderTopLayer(dc *gg.Context) {
	dc.Push()
	defer dc.Pop()
	r := c.RetinaScaling()
	dc.Identity()
	dc.Scale(r, r)
	if c.IsDrawingMode && c.drawing && c.FreeDrawingBrush != nil {
		c.FreeDrawingBrush.Render(dc)
		c.topDirty = true
	}
	if c.Selection && c.groupSelector != nil {
		c.drawSelection(dc)
		c.topDirty = true
	}
}

// drawSelection paints the marquee in device space: an optional fill and a
// dashed border inset by half its width.
func (c *Canvas) drawSelection(dc *gg.Context) {
	tl, br := c.groupSelector.rect()
	start := tl.Transform(c.vpt, false)
	end := br.Transform(c.vpt, false)
	sw := c.SelectionLineWidth / 2
	minX, minY := start.X, start.Y
	maxX, maxY := end.X, end.Y

	if col, ok := ParseColor(c.SelectionColor); ok && c.SelectionColor != "" {
		dc.ClearPath()
		dc.SetFillBrush(gg.Solid(col))
		dc.DrawRectangle(minX, minY, maxX-minX, maxY-minY)
		_ = dc.Fill()
	}
	if c.SelectionLineWidth == 0 || c.SelectionBorderColor == "" {
		return
	}
	col, ok := ParseColor(c.SelectionBorderColor)
	if !ok {
		return
	}
	minX += sw
	minY += sw
	maxX -= sw
	maxY -= sw
	dc.ClearPath()
	dc.SetStrokeBrush(gg.Solid(col))
	dc.SetLineWidth(c.SelectionLineWidth)
	if len(c.SelectionDashArray) > 0 {
		dc.SetDash(c.SelectionDashArray...)
	} else {
		dc.ClearDash()
	}
	dc.DrawRectangle(minX, minY, maxX-minX, maxY-minY)
	_ = dc.Stroke()
	dc.ClearDash()
}
