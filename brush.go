package easel

import (
	"math"

	"github.com/gogpu/gg"
)

// Brush turns pointer samples into a path object while the canvas is in
// drawing mode. Points are in scene coordinates.
type Brush interface {
	OnMouseDown(p Point, e *PointerEvent)
	OnMouseMove(p Point, e *PointerEvent)
	// OnMouseUp finishes the stroke. It reports whether drawing continues.
	OnMouseUp(e *PointerEvent) bool
	// Render paints the stroke in progress on the top surface.
	Render(dc *gg.Context)
}

// PencilBrush draws smoothed freehand strokes.
type PencilBrush struct {
	Color         string
	Width         float64
	StrokeLineCap string
	// DecimationDistance drops samples closer than this to the previous
	// one, in scene units.
	DecimationDistance float64
	// StraightLineKey draws a straight segment from the first point while
	// held.
	StraightLineKey KeyModifiers
	Shadow          *Shadow

	canvas   *Canvas
	points   []Point
	straight bool
}

// NewPencilBrush returns a black 1px pencil for c.
func NewPencilBrush(c *Canvas) *PencilBrush {
	return &PencilBrush{
		Color:         "rgb(0,0,0)",
		Width:         1,
		StrokeLineCap: "round",
		canvas:        c,
	}
}

func (b *PencilBrush) OnMouseDown(p Point, e *PointerEvent) {
	b.points = b.points[:0]
	b.straight = e != nil && e.Modifiers.Has(b.StraightLineKey)
	b.addPoint(p)
	b.canvas.RenderTop()
}

func (b *PencilBrush) OnMouseMove(p Point, e *PointerEvent) {
	b.straight = e != nil && e.Modifiers.Has(b.StraightLineKey)
	if !b.addPoint(p) || len(b.points) < 2 {
		return
	}
	b.canvas.RenderTop()
}

func (b *PencilBrush) OnMouseUp(e *PointerEvent) bool {
	b.finalize()
	return false
}

// addPoint appends p unless it repeats the last point or sits within the
// decimation distance.
func (b *PencilBrush) addPoint(p Point) bool {
	if n := len(b.points); n > 0 {
		last := b.points[n-1]
		if last.Eq(p) {
			return false
		}
		if d := b.DecimationDistance; d > 0 && math.Hypot(p.X-last.X, p.Y-last.Y) < d {
			return false
		}
	}
	if b.straight && len(b.points) > 1 {
		b.points = b.points[:1]
	}
	b.points = append(b.points, p)
	return true
}

// pathCommands smooths the samples into quadratic segments through the
// midpoints of consecutive points.
func (b *PencilBrush) pathCommands() []PathCommand {
	pts := b.points
	if len(pts) == 0 {
		return nil
	}
	if len(pts) == 1 {
		// a click draws a dot
		p := pts[0]
		return []PathCommand{
			{Op: 'M', Args: []float64{p.X, p.Y}},
			{Op: 'L', Args: []float64{p.X + 0.01, p.Y}},
		}
	}
	cmds := []PathCommand{{Op: 'M', Args: []float64{pts[0].X, pts[0].Y}}}
	for i := 1; i < len(pts)-1; i++ {
		mid := pts[i].Mid(pts[i+1])
		cmds = append(cmds, PathCommand{Op: 'Q', Args: []float64{pts[i].X, pts[i].Y, mid.X, mid.Y}})
	}
	last := pts[len(pts)-1]
	cmds = append(cmds, PathCommand{Op: 'L', Args: []float64{last.X, last.Y}})
	return cmds
}

// Render draws the stroke in viewport space; dc carries the retina scale.
func (b *PencilBrush) Render(dc *gg.Context) {
	cmds := b.pathCommands()
	if len(cmds) == 0 {
		return
	}
	col, ok := ParseColor(b.Color)
	if !ok {
		return
	}
	dc.Push()
	defer dc.Pop()
	dc.Transform(toGG(b.canvas.vpt))
	dc.ClearPath()
	traceCommands(dc, cmds, 0, 0)
	dc.SetStrokeBrush(gg.Solid(col))
	dc.SetLineWidth(b.Width)
	dc.SetLineCap(lineCap(b.StrokeLineCap))
	dc.SetLineJoin(gg.LineJoinRound)
	_ = dc.Stroke()
}

// finalize turns the samples into a path object and adds it to the canvas.
func (b *PencilBrush) finalize() {
	c := b.canvas
	cmds := b.pathCommands()
	b.points = b.points[:0]
	c.clearTop()
	if len(cmds) == 0 {
		c.RequestRenderAll()
		return
	}
	path := NewPathFromCommands(cmds)
	path.Fill = Paint{}
	path.Stroke = Paint{Color: b.Color}
	path.StrokeWidth = b.Width
	path.StrokeLineCap = b.StrokeLineCap
	path.StrokeLineJoin = "round"
	if b.Shadow != nil {
		s := *b.Shadow
		path.Shadow = &s
	}
	c.Fire("before:path:created", &Event{Path: path})
	c.Add(path)
	path.SetCoords()
	c.RequestRenderAll()
	c.Fire("path:created", &Event{Path: path})
}

// --- drawing mode dispatch ---

func (c *Canvas) onMouseDownInDrawingMode(e *PointerEvent) {
	c.drawing = true
	if c.activeObject != nil {
		c.DiscardActiveObject(e)
		c.RequestRenderAll()
	}
	if c.FreeDrawingBrush != nil {
		c.FreeDrawingBrush.OnMouseDown(c.GetScenePoint(e), e)
	}
	c.handleEvent(e, "down")
}

func (c *Canvas) onMouseMoveInDrawingMode(e *PointerEvent) {
	if c.drawing && c.FreeDrawingBrush != nil {
		c.FreeDrawingBrush.OnMouseMove(c.GetScenePoint(e), e)
	}
	c.setCursor(c.FreeDrawingCursor)
	c.handleEvent(e, "move")
}

func (c *Canvas) onMouseUpInDrawingMode(e *PointerEvent) {
	if c.FreeDrawingBrush != nil {
		c.drawing = c.FreeDrawingBrush.OnMouseUp(e)
	} else {
		c.drawing = false
	}
	c.handleEvent(e, "up")
}
