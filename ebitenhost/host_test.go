package ebitenhost

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/easel"
)

func TestCursorShape(t *testing.T) {
	tests := []struct {
		name string
		want ebiten.CursorShapeType
	}{
		{easel.CursorDefault, ebiten.CursorShapeDefault},
		{easel.CursorMove, ebiten.CursorShapeMove},
		{easel.CursorCrosshair, ebiten.CursorShapeCrosshair},
		{easel.CursorNotAllowed, ebiten.CursorShapeNotAllowed},
		{"se-resize", ebiten.CursorShapeNWSEResize},
		{"ne-resize", ebiten.CursorShapeNESWResize},
		{"e-resize", ebiten.CursorShapeEWResize},
		{"n-resize", ebiten.CursorShapeNSResize},
		{"bogus", ebiten.CursorShapeDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cursorShape(tt.name); got != tt.want {
				t.Errorf("cursorShape(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestTouchSlotReuse(t *testing.T) {
	var p pointerPoller
	a := p.touchSlot(ebiten.TouchID(7))
	b := p.touchSlot(ebiten.TouchID(9))
	if a != 1 || b != 2 {
		t.Fatalf("slots = %d, %d, want 1, 2", a, b)
	}
	if got := p.touchSlot(ebiten.TouchID(7)); got != a {
		t.Errorf("touchSlot(7) again = %d, want %d", got, a)
	}
}

func TestDoubleClickWindow(t *testing.T) {
	var p pointerPoller
	p.tick = 1
	if p.isDoubleClick(10, 10) {
		t.Fatal("first press reported as double click")
	}
	p.tick = 5
	if !p.isDoubleClick(11, 10) {
		t.Error("second nearby press within window not a double click")
	}
	p.tick = 6
	if p.isDoubleClick(11, 10) {
		t.Error("third press reported as double click")
	}
	p.tick = 100
	if p.isDoubleClick(11, 10) {
		t.Error("press outside window reported as double click")
	}
}
