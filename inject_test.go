package easel

import "testing"

func TestInjectClickSelects(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	o := NewRect(10, 10, 30, 30)
	c.Add(o)

	c.InjectClick(20, 20)
	if n := c.PendingInjected(); n != 2 {
		t.Fatalf("PendingInjected() = %d, want 2", n)
	}
	if !c.ProcessInjected() {
		t.Fatal("ProcessInjected() = false with a queued press")
	}
	if c.ActiveObject() != o {
		t.Error("press did not select the object")
	}
	if !c.ProcessInjected() {
		t.Fatal("ProcessInjected() = false with a queued release")
	}
	if c.ProcessInjected() {
		t.Error("ProcessInjected() = true on an empty queue")
	}
}

func TestInjectDragFrames(t *testing.T) {
	tests := []struct {
		frames, want int
	}{
		{1, 2},
		{2, 2},
		{5, 5},
	}
	for _, tt := range tests {
		c := newTestCanvas(t, 10, 10)
		c.InjectDrag(0, 0, 100, 100, tt.frames)
		if got := c.PendingInjected(); got != tt.want {
			t.Errorf("InjectDrag(frames=%d) queued %d events, want %d", tt.frames, got, tt.want)
		}
	}
}

func TestInjectDragMovesObject(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	o := NewRect(10, 10, 30, 30)
	c.Add(o)
	var moving int
	c.On("object:moving", func(*Event) { moving++ })

	c.InjectDrag(20, 20, 70, 50, 6)
	c.DrainInjected()

	// the release does not move; the last interpolated move is at (60,44)
	assertPoint(t, "position", Pt(o.Left, o.Top), Pt(50, 34))
	if moving != 4 {
		t.Errorf("object:moving fired %d times, want 4", moving)
	}
	if c.PendingInjected() != 0 {
		t.Error("queue not drained")
	}
}

func TestInjectModifiers(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	a := NewRect(10, 10, 30, 30)
	b := NewRect(100, 100, 30, 30)
	c.Add(a, b)

	c.InjectClick(20, 20)
	c.InjectModifiers(ModShift)
	c.InjectClick(110, 110)
	c.DrainInjected()

	assertObjects(t, "ActiveObjects", c.ActiveObjects(), []*Object{a, b})
}

func TestInjectRespectsViewport(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	o := NewRect(10, 10, 20, 20)
	c.Add(o)
	c.SetViewportTransform(Matrix{2, 0, 0, 2, 0, 0})

	c.InjectClick(5, 5)
	c.DrainInjected()
	if c.ActiveObject() != nil {
		t.Error("click outside the zoomed object selected it")
	}
	c.InjectClick(40, 40)
	c.DrainInjected()
	if c.ActiveObject() != o {
		t.Error("click inside the zoomed object missed it")
	}
}
