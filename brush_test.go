package easel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func drawingCanvas(t *testing.T) *Canvas {
	c := newTestCanvas(t, 200, 200)
	c.IsDrawingMode = true
	return c
}

func TestFreeDrawingCreatesPath(t *testing.T) {
	c := drawingCanvas(t)
	brush := c.FreeDrawingBrush.(*PencilBrush)
	brush.Color = "red"
	brush.Width = 4
	var created []*Object
	c.On("path:created", func(e *Event) { created = append(created, e.Path) })
	events := recordEvents(c, "before:path:created", "path:created")

	press(c, 10, 10, 0)
	move(c, 50, 20, 0)
	move(c, 90, 60, 0)
	release(c, 90, 60, 0)

	if len(created) != 1 {
		t.Fatalf("path:created fired %d times, want 1", len(created))
	}
	if diff := cmp.Diff([]string{"before:path:created", "path:created"}, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	p := created[0]
	assertObjects(t, "Objects", c.Objects(), []*Object{p})
	if p.Type() != "path" {
		t.Errorf("Type() = %q, want path", p.Type())
	}
	if p.Stroke.Color != "red" || p.StrokeWidth != 4 || !p.Fill.IsZero() {
		t.Errorf("stroke = %q/%v fill = %+v", p.Stroke.Color, p.StrokeWidth, p.Fill)
	}
	b := p.GetBoundingRect()
	if b.X > 10 || b.Y > 10 || b.X+b.Width < 90 || b.Y+b.Height < 60 {
		t.Errorf("path bounds %+v do not cover the stroke", b)
	}
}

func TestFreeDrawingDiscardsSelection(t *testing.T) {
	c := drawingCanvas(t)
	o := NewRect(0, 0, 50, 50)
	c.Add(o)
	c.SetActiveObject(o, nil)
	click(c, 10, 10, 0)
	if c.ActiveObject() != nil {
		t.Error("drawing did not discard the selection")
	}
	if o.Left != 0 {
		t.Error("drawing moved the object under the pointer")
	}
}

func TestPencilPathCommands(t *testing.T) {
	c := drawingCanvas(t)
	b := NewPencilBrush(c)
	b.OnMouseDown(Pt(0, 0), nil)
	b.OnMouseMove(Pt(10, 0), nil)
	b.OnMouseMove(Pt(10, 0), nil) // repeated samples are dropped
	b.OnMouseMove(Pt(20, 10), nil)

	got := b.pathCommands()
	want := []PathCommand{
		{Op: 'M', Args: []float64{0, 0}},
		{Op: 'Q', Args: []float64{10, 0, 15, 5}},
		{Op: 'L', Args: []float64{20, 10}},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("pathCommands mismatch (-want +got):\n%s", diff)
	}
}

func TestPencilDot(t *testing.T) {
	c := drawingCanvas(t)
	b := NewPencilBrush(c)
	b.OnMouseDown(Pt(5, 5), nil)
	if got := b.pathCommands(); len(got) != 2 || got[0].Op != 'M' || got[1].Op != 'L' {
		t.Errorf("a click should draw a dot, got %+v", got)
	}
}

func TestPencilDecimation(t *testing.T) {
	c := drawingCanvas(t)
	b := NewPencilBrush(c)
	b.DecimationDistance = 5
	b.OnMouseDown(Pt(0, 0), nil)
	b.OnMouseMove(Pt(2, 2), nil)
	b.OnMouseMove(Pt(3, 0), nil)
	b.OnMouseMove(Pt(10, 0), nil)
	if n := len(b.points); n != 2 {
		t.Errorf("kept %d points, want 2", n)
	}
}

func TestPencilStraightLine(t *testing.T) {
	c := drawingCanvas(t)
	b := NewPencilBrush(c)
	b.StraightLineKey = ModShift
	shift := &PointerEvent{Modifiers: ModShift}
	b.OnMouseDown(Pt(0, 0), shift)
	b.OnMouseMove(Pt(5, 5), shift)
	b.OnMouseMove(Pt(9, 3), shift)
	b.OnMouseMove(Pt(20, 0), shift)
	if diff := cmp.Diff([]Point{{0, 0}, {20, 0}}, b.points, approx); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}
