package easel

import "testing"

func TestEmitterOnOff(t *testing.T) {
	var em Emitter
	var a, b int
	em.On("x", func(*Event) { a++ })
	em.On("y", func(*Event) { b++ })
	em.Fire("x", nil)
	em.Fire("y", &Event{})
	if a != 1 || b != 1 {
		t.Fatalf("a, b = %d, %d, want 1, 1", a, b)
	}
	em.Off("x")
	em.Fire("x", nil)
	if a != 1 {
		t.Errorf("handler ran after Off: a = %d", a)
	}
	if !em.HasListeners("y") {
		t.Error("Off(x) removed y")
	}
	em.Off("")
	if em.HasListeners("y") {
		t.Error("Off(\"\") kept handlers")
	}
}

func TestEmitterOnce(t *testing.T) {
	var em Emitter
	var n int
	em.Once("x", func(*Event) { n++ })
	em.Fire("x", nil)
	em.Fire("x", nil)
	if n != 1 {
		t.Errorf("once handler ran %d times, want 1", n)
	}
	if em.HasListeners("x") {
		t.Error("once handler still registered")
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	var em Emitter
	var a, b int
	h := em.On("x", func(*Event) { a++ })
	em.On("x", func(*Event) { b++ })
	h.Remove()
	h.Remove()
	em.Fire("x", nil)
	if a != 0 || b != 1 {
		t.Errorf("a, b = %d, %d, want 0, 1", a, b)
	}
	CallbackHandle{}.Remove()
}

func TestFireSetsName(t *testing.T) {
	var em Emitter
	var got string
	em.On("object:added", func(e *Event) { got = e.Name })
	em.Fire("object:added", &Event{})
	if got != "object:added" {
		t.Errorf("Name = %q, want object:added", got)
	}
}

func TestHandlersAddedDuringFire(t *testing.T) {
	var em Emitter
	var late int
	em.On("x", func(*Event) {
		em.On("x", func(*Event) { late++ })
	})
	em.Fire("x", nil)
	if late != 0 {
		t.Errorf("handler added during Fire ran in the same delivery")
	}
	em.Fire("x", nil)
	if late != 1 {
		t.Errorf("late handler ran %d times, want 1", late)
	}
}

func TestCanvasAddRemoveEvents(t *testing.T) {
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{})
	defer c.Dispose()
	o := NewRect(0, 0, 1, 1)
	var objAdded, objRemoved int
	o.On("added", func(*Event) { objAdded++ })
	o.On("removed", func(*Event) { objRemoved++ })
	var targets []*Object
	c.On("object:added", func(e *Event) { targets = append(targets, e.Target) })
	c.On("object:removed", func(e *Event) { targets = append(targets, e.Target) })

	c.Add(o)
	c.Add(o)
	c.Remove(o)
	c.Remove(o)
	if objAdded != 1 || objRemoved != 1 {
		t.Errorf("added, removed = %d, %d, want 1, 1", objAdded, objRemoved)
	}
	assertObjects(t, "event targets", targets, []*Object{o, o})
}
