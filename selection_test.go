package easel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var selectionEvents = []string{
	"before:selection:cleared",
	"selection:cleared",
	"selection:created",
	"selection:updated",
}

func twoRects(t *testing.T) (*Canvas, *Object, *Object) {
	t.Helper()
	c := newTestCanvas(t, 200, 200)
	a := NewRect(10, 10, 40, 40)
	b := NewRect(100, 100, 40, 40)
	c.Add(a, b)
	return c, a, b
}

func TestClickSelects(t *testing.T) {
	c, a, _ := twoRects(t)
	got := recordEvents(c, selectionEvents...)
	var selected int
	a.On("selected", func(*Event) { selected++ })

	click(c, 30, 30, 0)
	if c.ActiveObject() != a {
		t.Fatalf("ActiveObject() = %v, want a", c.ActiveObject())
	}
	if diff := cmp.Diff([]string{"selection:created"}, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if selected != 1 {
		t.Errorf("selected fired %d times, want 1", selected)
	}
}

func TestClickOtherObjectClearsThenCreates(t *testing.T) {
	c, a, b := twoRects(t)
	click(c, 30, 30, 0)
	got := recordEvents(c, selectionEvents...)
	var deselected int
	a.On("deselected", func(*Event) { deselected++ })

	click(c, 120, 120, 0)
	if c.ActiveObject() != b {
		t.Fatalf("ActiveObject() = %v, want b", c.ActiveObject())
	}
	want := []string{"before:selection:cleared", "selection:cleared", "selection:created"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if deselected != 1 {
		t.Errorf("deselected fired %d times, want 1", deselected)
	}
}

func TestClickEmptySpaceClears(t *testing.T) {
	c, _, _ := twoRects(t)
	click(c, 30, 30, 0)
	got := recordEvents(c, selectionEvents...)
	click(c, 180, 20, 0)
	if c.ActiveObject() != nil {
		t.Errorf("ActiveObject() = %v, want nil", c.ActiveObject())
	}
	want := []string{"before:selection:cleared", "selection:cleared"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestShiftClickBuildsActiveSelection(t *testing.T) {
	c, a, b := twoRects(t)
	click(c, 30, 30, 0)
	got := recordEvents(c, selectionEvents...)

	click(c, 120, 120, ModShift)
	sel := c.ActiveObject()
	if sel == nil || !sel.IsActiveSelection() {
		t.Fatalf("ActiveObject() = %v, want an active selection", sel)
	}
	assertObjects(t, "ActiveObjects()", c.ActiveObjects(), []*Object{a, b})
	if diff := cmp.Diff([]string{"selection:updated"}, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	// shift-clicking a member takes it out again
	*got = nil
	click(c, 30, 30, ModShift)
	if c.ActiveObject() != b {
		t.Errorf("ActiveObject() = %v, want b", c.ActiveObject())
	}
	if diff := cmp.Diff([]string{"selection:updated"}, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestMarqueeSelects(t *testing.T) {
	c, a, b := twoRects(t)
	c.Add(NewRect(170, 10, 10, 10))
	got := recordEvents(c, selectionEvents...)

	press(c, 0, 0, 0)
	move(c, 80, 80, 0)
	if c.TopRenderCount() == 0 {
		t.Error("marquee drag did not paint the top surface")
	}
	move(c, 150, 150, 0)
	release(c, 150, 150, 0)

	assertObjects(t, "ActiveObjects()", c.ActiveObjects(), []*Object{a, b})
	if diff := cmp.Diff([]string{"selection:created"}, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestMarqueeFullyContained(t *testing.T) {
	c, a, _ := twoRects(t)
	c.SelectionFullyContained = true
	press(c, 0, 0, 0)
	move(c, 120, 120, 0)
	release(c, 120, 120, 0)
	if c.ActiveObject() != a {
		t.Errorf("ActiveObject() = %v, want only the contained rect", c.ActiveObject())
	}
}

func TestSelectVeto(t *testing.T) {
	c, a, _ := twoRects(t)
	a.OnSelect = func(*Event) bool { return true }
	got := recordEvents(c, selectionEvents...)
	click(c, 30, 30, 0)
	if c.ActiveObject() != nil {
		t.Errorf("ActiveObject() = %v, want nil after veto", c.ActiveObject())
	}
	if len(*got) != 0 {
		t.Errorf("events = %v, want none", *got)
	}
}

func TestDeselectVeto(t *testing.T) {
	c, a, _ := twoRects(t)
	c.SetActiveObject(a, nil)
	a.OnDeselect = func(*Event) bool { return true }
	if c.DiscardActiveObject(nil) {
		t.Error("DiscardActiveObject() = true, want false")
	}
	if c.ActiveObject() != a {
		t.Errorf("ActiveObject() = %v, want a", c.ActiveObject())
	}
}

func TestRemoveActiveObjectClearsSelection(t *testing.T) {
	c, a, _ := twoRects(t)
	c.SetActiveObject(a, nil)
	got := recordEvents(c, selectionEvents...)
	c.Remove(a)
	if c.ActiveObject() != nil {
		t.Errorf("ActiveObject() = %v, want nil", c.ActiveObject())
	}
	want := []string{"before:selection:cleared", "selection:cleared"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionDisabled(t *testing.T) {
	c, a, _ := twoRects(t)
	c.Selection = false
	press(c, 0, 0, 0)
	move(c, 150, 150, 0)
	release(c, 150, 150, 0)
	if c.ActiveObject() != nil {
		t.Errorf("marquee selected %v with selection disabled", c.ActiveObject())
	}
	// clicking an object still selects it
	click(c, 30, 30, 0)
	if c.ActiveObject() != a {
		t.Errorf("ActiveObject() = %v, want a", c.ActiveObject())
	}
}

func TestActiveObjectsRenderOnTop(t *testing.T) {
	c, a, b := twoRects(t)
	c.SetActiveObject(a, nil)
	objs := c.chooseObjectsToRender()
	if objs[len(objs)-1] != a {
		t.Error("active object should paint last")
	}
	c.PreserveObjectStacking = true
	objs = c.chooseObjectsToRender()
	if objs[len(objs)-1] != b {
		t.Error("stacking order changed with PreserveObjectStacking")
	}
}
