package easel

// injectKind tells ProcessInjected which entry point an event goes to.
type injectKind uint8

const (
	injectDown injectKind = iota
	injectMove
	injectUp
	injectDoubleClick
)

// injectedEvent is a queued synthetic pointer event. Coordinates are host
// pixels, exactly like real input, so they pass through element bounds and
// the viewport.
type injectedEvent struct {
	kind injectKind
	e    PointerEvent
}

// InjectModifiers sets the modifier keys held by subsequently queued
// events.
func (c *Canvas) InjectModifiers(mods KeyModifiers) {
	c.injectMods = mods
}

func (c *Canvas) inject(kind injectKind, x, y float64) {
	c.injectQueue = append(c.injectQueue, injectedEvent{
		kind: kind,
		e: PointerEvent{
			X: x, Y: y,
			Button:    MouseButtonLeft,
			Modifiers: c.injectMods,
			Primary:   true,
		},
	})
}

// InjectPress queues a left-button press at (x, y). Each queued event is
// consumed by one ProcessInjected call.
func (c *Canvas) InjectPress(x, y float64) { c.inject(injectDown, x, y) }

// InjectMove queues a pointer move to (x, y). Between InjectPress and
// InjectRelease it drags.
func (c *Canvas) InjectMove(x, y float64) { c.inject(injectMove, x, y) }

// InjectRelease queues a release at (x, y).
func (c *Canvas) InjectRelease(x, y float64) { c.inject(injectUp, x, y) }

// InjectDoubleClick queues a double click at (x, y).
func (c *Canvas) InjectDoubleClick(x, y float64) { c.inject(injectDoubleClick, x, y) }

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (c *Canvas) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2 linearly
// interpolated moves, and a release at (toX, toY). The sequence consumes
// frames frames, at least 2.
func (c *Canvas) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// PendingInjected returns the number of queued synthetic events.
func (c *Canvas) PendingInjected() int { return len(c.injectQueue) }

// ProcessInjected delivers the oldest queued synthetic event. It reports
// whether one was delivered, in which case the host should skip real
// pointer input for this frame.
func (c *Canvas) ProcessInjected() bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	ev := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]

	switch ev.kind {
	case injectDown:
		c.OnPointerDown(ev.e)
	case injectMove:
		c.OnPointerMove(ev.e)
	case injectUp:
		c.OnPointerUp(ev.e)
	case injectDoubleClick:
		c.OnDoubleClick(ev.e)
	}
	return true
}

// DrainInjected delivers every queued synthetic event.
func (c *Canvas) DrainInjected() {
	for c.ProcessInjected() {
	}
}
