package easel

import "testing"

func pe(x, y float64) *PointerEvent {
	return &PointerEvent{X: x, Y: y, Primary: true}
}

func TestFindTarget(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	under := NewRect(0, 0, 50, 50)
	over := NewRect(25, 25, 50, 50)
	hidden := NewRect(150, 150, 20, 20)
	hidden.Visible = false
	inert := NewRect(100, 0, 20, 20)
	inert.Evented = false
	c.Add(under, over, hidden, inert)

	tests := []struct {
		name string
		x, y float64
		want *Object
	}{
		{"only under", 10, 10, under},
		{"overlap picks topmost", 30, 30, over},
		{"only over", 70, 70, over},
		{"empty", 190, 10, nil},
		{"invisible", 160, 160, nil},
		{"not evented", 110, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.FindTarget(pe(tt.x, tt.y)); got != tt.want {
				t.Errorf("FindTarget(%v, %v) = %v, want %v", tt.x, tt.y, ids([]*Object{got}), ids([]*Object{tt.want}))
			}
		})
	}
}

func TestFindTargetActiveObjectWins(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	under := NewRect(0, 0, 50, 50)
	over := NewRect(25, 25, 50, 50)
	c.Add(under, over)
	c.SetActiveObject(under, nil)

	if got := c.FindTarget(pe(30, 30)); got != under {
		t.Error("active object under the pointer should win")
	}
	c.PreserveObjectStacking = true
	if got := c.FindTarget(pe(30, 30)); got != over {
		t.Error("with preserved stacking the topmost object should win")
	}
	c.Keys.AltSelection = ModCtrl
	if got := c.FindTarget(&PointerEvent{X: 30, Y: 30, Primary: true, Modifiers: ModCtrl}); got != under {
		t.Error("alt selection key should keep the active object")
	}
}

func TestFindTargetGroups(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		subTargets  bool
		wantChild   bool
		wantSub     int
	}{
		{"plain group", false, false, false, 0},
		{"sub target check", false, true, false, 1},
		{"interactive", true, false, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, 200, 200)
			child := NewRect(0, 0, 20, 20)
			g := NewGroup(child, NewRect(60, 60, 20, 20))
			GroupOf(g).Interactive = tt.interactive
			GroupOf(g).SubTargetCheck = tt.subTargets
			c.Add(g)

			want := g
			if tt.wantChild {
				want = child
			}
			if got := c.FindTarget(pe(10, 10)); got != want {
				t.Errorf("FindTarget = %v, want %v", ids([]*Object{got}), ids([]*Object{want}))
			}
			if got := len(c.SubTargets()); got != tt.wantSub {
				t.Errorf("len(SubTargets()) = %d, want %d", got, tt.wantSub)
			}
			// the gap between the members still hits the group's box
			if got := c.FindTarget(pe(40, 40)); got != g {
				t.Errorf("gap: FindTarget = %v, want the group", ids([]*Object{got}))
			}
		})
	}
}

func TestFindTargetPadding(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	o := NewRect(20, 20, 20, 20)
	c.Add(o)
	if c.FindTarget(pe(17, 30)) != nil {
		t.Fatal("hit outside the object without padding")
	}
	o.Padding = 5
	if c.FindTarget(pe(17, 30)) != o {
		t.Error("padding did not grow the hit area")
	}
	// padding is in screen pixels
	c.SetZoom(2)
	if c.FindTarget(pe(36, 60)) != o {
		t.Error("zoomed padding missed")
	}
}

func TestPerPixelTargetFind(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	circle := NewCircle(0, 0, 20)
	c.Add(circle)

	// the bounding box corner is outside the disc
	if c.FindTarget(pe(2, 2)) != circle {
		t.Fatal("box test should hit the corner")
	}
	circle.PerPixelTargetFind = true
	if c.FindTarget(pe(2, 2)) != nil {
		t.Error("per-pixel test hit a transparent corner")
	}
	if c.FindTarget(pe(20, 20)) != circle {
		t.Error("per-pixel test missed the centre")
	}
	if c.FindTarget(pe(3, 3)) != nil {
		t.Fatal("per-pixel test hit outside the disc")
	}
	c.TargetFindTolerance = 4
	if c.FindTarget(pe(3, 3)) != circle {
		t.Error("tolerance did not widen the hit")
	}
}

func TestSkipTargetFind(t *testing.T) {
	c := newTestCanvas(t, 100, 100)
	c.Add(NewRect(0, 0, 50, 50))
	c.SkipTargetFind = true
	if c.FindTarget(pe(10, 10)) != nil {
		t.Error("SkipTargetFind still found a target")
	}
}
