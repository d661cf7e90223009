package easel

import "testing"

func twoRectGroup() (g, a, b *Object) {
	a = NewRect(0, 0, 10, 10)
	b = NewRect(20, 20, 10, 10)
	return NewGroup(a, b), a, b
}

func TestNewGroupKeepsScenePositions(t *testing.T) {
	g, a, b := twoRectGroup()
	assertNear(t, "Width", g.Width, 30)
	assertNear(t, "Height", g.Height, 30)
	assertPoint(t, "group position", Pt(g.Left, g.Top), Pt(0, 0))
	assertPoint(t, "a tl", a.GetCoords()[0], Pt(0, 0))
	assertPoint(t, "b br", b.GetCoords()[2], Pt(30, 30))
	assertObjects(t, "Objects", g.Objects(), []*Object{a, b})
	if a.Parent() != g || b.Group() != g {
		t.Error("members do not point at the group")
	}
}

func TestGroupTransformMovesMembers(t *testing.T) {
	g, _, b := twoRectGroup()
	g.Left += 100
	g.ScaleX = 2
	// b spans 20..30 locally; the group scales from its left edge
	assertPoint(t, "b tl", b.GetCoords()[0], Pt(140, 20))
	assertPoint(t, "b br", b.GetCoords()[2], Pt(160, 30))
}

func TestGroupRemoveRestoresScene(t *testing.T) {
	g, a, b := twoRectGroup()
	g.Left, g.Top = 50, 50
	var removed []*Object
	g.On("object:removed", func(e *Event) { removed = append(removed, e.Target) })

	got := GroupOf(g).Remove(g, b)
	assertObjects(t, "Remove", got, []*Object{b})
	assertObjects(t, "object:removed", removed, []*Object{b})
	assertPoint(t, "b position", Pt(b.Left, b.Top), Pt(70, 70))
	if b.Parent() != nil || b.Group() != nil {
		t.Error("removed member still points at the group")
	}
	// the group shrinks around the remaining member
	assertNear(t, "Width", g.Width, 10)
	assertPoint(t, "a tl", a.GetCoords()[0], Pt(50, 50))
	if len(GroupOf(g).Remove(g, b)) != 0 {
		t.Error("second Remove reported a member")
	}
}

func TestGroupAddDetachesFromCanvas(t *testing.T) {
	c := NewStaticCanvas(100, 100, StaticCanvasOptions{})
	defer c.Dispose()
	a := NewRect(0, 0, 10, 10)
	b := NewRect(40, 40, 10, 10)
	c.Add(a, b)
	g := NewGroup(a, b)
	if len(c.Objects()) != 0 {
		t.Errorf("canvas still holds %d objects", len(c.Objects()))
	}
	c.Add(g)
	if a.Canvas() != c {
		t.Error("member canvas not set when the group was added")
	}
}

func TestGroupRejectsCycles(t *testing.T) {
	inner := NewGroup(NewRect(0, 0, 5, 5))
	outer := NewGroup(inner)
	if n := GroupOf(inner).Add(inner, outer); n != 1 {
		t.Errorf("adding an ancestor gave %d members, want 1", n)
	}
	if n := GroupOf(outer).Add(outer, outer); n != 1 {
		t.Errorf("adding itself gave %d members, want 1", n)
	}
}

func TestGroupFixedLayout(t *testing.T) {
	g, a, _ := twoRectGroup()
	GroupOf(g).Layout = LayoutFixed
	a.Left -= 100
	GroupOf(g).TriggerLayout(g)
	assertNear(t, "Width", g.Width, 30)
}
