package ebitenhost

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/easel"
)

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

	doubleClickTicks = 18 // ~300ms at 60 TPS
	doubleClickSlop  = 4.0
)

type pointerState struct {
	down         bool
	button       easel.MouseButton
	lastX, lastY float64
}

// pointerPoller turns polled ebiten state into canvas pointer events.
type pointerPoller struct {
	pointers     [maxPointers]pointerState
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	primary      int

	tick                   int
	lastClickTick          int
	lastClickX, lastClickY float64
}

func readModifiers() easel.KeyModifiers {
	var mods easel.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= easel.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= easel.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= easel.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= easel.ModMeta
	}
	return mods
}

func (p *pointerPoller) poll(c *easel.Canvas) {
	p.tick++
	mods := readModifiers()
	p.pollMouse(c, mods)
	p.pollTouches(c, mods)
}

func (p *pointerPoller) pollMouse(c *easel.Canvas, mods easel.KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	// Keep the button that started the press until it is released.
	var pressed bool
	var button easel.MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = easel.MouseButtonLeft
		case right:
			button = easel.MouseButtonRight
		default:
			button = easel.MouseButtonMiddle
		}
	}
	p.process(c, 0, x, y, pressed, button, mods, false)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && p.isDoubleClick(x, y) {
		c.OnDoubleClick(easel.PointerEvent{X: x, Y: y, Modifiers: mods, Primary: true})
	}
	// ebiten reports wheel up as positive; canvases expect scroll-down positive
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		c.OnWheel(easel.PointerEvent{X: x, Y: y, Modifiers: mods, Primary: true}, -wx, -wy)
	}
}

func (p *pointerPoller) pollTouches(c *easel.Canvas, mods easel.KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(p.prevTouchIDs[:0])
	p.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := p.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		p.process(c, slot, float64(tx), float64(ty), true, easel.MouseButtonLeft, mods, true)
	}

	for i := 1; i < maxPointers; i++ {
		if p.touchUsed[i] && !activeSlots[i] {
			ps := &p.pointers[i]
			if ps.down {
				p.process(c, i, ps.lastX, ps.lastY, false, easel.MouseButtonLeft, mods, true)
			}
			p.touchUsed[i] = false
			p.touchMap[i] = 0
		}
	}
}

// process compares a slot's state with the previous frame and forwards the
// transition. The first touch down becomes the primary pointer.
func (p *pointerPoller) process(c *easel.Canvas, slot int, x, y float64, pressed bool, button easel.MouseButton, mods easel.KeyModifiers, touch bool) {
	ps := &p.pointers[slot]
	if touch && pressed && !ps.down && !p.anyTouchDown() {
		p.primary = slot
	}
	e := easel.PointerEvent{
		X: x, Y: y,
		Button:    button,
		Modifiers: mods,
		Touch:     touch,
		PointerID: slot,
		Primary:   !touch || slot == p.primary,
	}
	switch {
	case pressed && !ps.down:
		ps.down, ps.button = true, button
		c.OnPointerDown(e)
	case !pressed && ps.down:
		ps.down = false
		e.Button = ps.button
		c.OnPointerUp(e)
	case x != ps.lastX || y != ps.lastY:
		if ps.down {
			e.Button = ps.button
		}
		if !touch || ps.down {
			c.OnPointerMove(e)
		}
	}
	ps.lastX, ps.lastY = x, y
}

// isDoubleClick records a press and reports whether it closely follows the
// previous one.
func (p *pointerPoller) isDoubleClick(x, y float64) bool {
	dbl := p.lastClickTick > 0 && p.tick-p.lastClickTick <= doubleClickTicks &&
		math.Abs(x-p.lastClickX) <= doubleClickSlop && math.Abs(y-p.lastClickY) <= doubleClickSlop
	if dbl {
		p.lastClickTick = 0
	} else {
		p.lastClickTick = p.tick
		p.lastClickX, p.lastClickY = x, y
	}
	return dbl
}

func (p *pointerPoller) anyTouchDown() bool {
	for i := 1; i < maxPointers; i++ {
		if p.pointers[i].down {
			return true
		}
	}
	return false
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns -1 if all slots are in use.
func (p *pointerPoller) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if p.touchUsed[i] && p.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !p.touchUsed[i] {
			p.touchUsed[i] = true
			p.touchMap[i] = tid
			return i
		}
	}
	return -1
}
