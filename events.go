package easel

import "github.com/gogpu/gg"

// Event carries the payload of a canvas or object notification. Only the
// fields relevant to a given event name are set.
type Event struct {
	Name string

	// E is the pointer sample that caused the event, if any.
	E *PointerEvent

	Target     *Object
	SubTargets []*Object

	// Transform and Pointer are set for transform lifecycle events. Pointer is
	// in the target's parent plane.
	Transform *Transform
	Pointer   Point
	Action    string

	Selected   []*Object
	Deselected []*Object

	IsClick bool

	// Context is the surface being painted, for before:render / after:render.
	Context *gg.Context

	// Path is the object created by free drawing.
	Path *Object

	// PointIndex is the vertex edited by a poly control.
	PointIndex int

	// Gesture values for touch:gesture.
	Scale, Rotation float64

	// Scroll amounts for mouse:wheel.
	DeltaX, DeltaY float64

	// Data is the payload of drag-and-drop events.
	Data any
}

type eventHandler struct {
	id   uint32
	once bool
	fn   func(*Event)
}

// Emitter is a small string-keyed pub/sub registry. Canvases and objects
// embed one. The zero value is ready to use.
type Emitter struct {
	handlers map[string][]eventHandler
	nextID   uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id   uint32
	em   *Emitter
	name string
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.em == nil {
		return
	}
	h.em.handlers[h.name] = removeEventHandler(h.em.handlers[h.name], h.id)
}

func removeEventHandler(s []eventHandler, id uint32) []eventHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = eventHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// On registers fn for the named event.
func (em *Emitter) On(name string, fn func(*Event)) CallbackHandle {
	return em.add(name, fn, false)
}

// Once registers fn for a single delivery of the named event.
func (em *Emitter) Once(name string, fn func(*Event)) CallbackHandle {
	return em.add(name, fn, true)
}

func (em *Emitter) add(name string, fn func(*Event), once bool) CallbackHandle {
	if em.handlers == nil {
		em.handlers = make(map[string][]eventHandler)
	}
	em.nextID++
	id := em.nextID
	em.handlers[name] = append(em.handlers[name], eventHandler{id: id, once: once, fn: fn})
	return CallbackHandle{id: id, em: em, name: name}
}

// Off removes every handler for name. An empty name clears all handlers.
func (em *Emitter) Off(name string) {
	if name == "" {
		em.handlers = nil
		return
	}
	delete(em.handlers, name)
}

// Fire delivers ev to the handlers registered for name. Handlers added or
// removed during delivery take effect from the next Fire.
func (em *Emitter) Fire(name string, ev *Event) {
	hs := em.handlers[name]
	if len(hs) == 0 {
		return
	}
	if ev == nil {
		ev = &Event{}
	}
	ev.Name = name
	snapshot := make([]eventHandler, len(hs))
	copy(snapshot, hs)
	for _, h := range snapshot {
		if h.once {
			em.handlers[name] = removeEventHandler(em.handlers[name], h.id)
		}
		h.fn(ev)
	}
}

// HasListeners reports whether anything listens for name.
func (em *Emitter) HasListeners(name string) bool {
	return len(em.handlers[name]) > 0
}
