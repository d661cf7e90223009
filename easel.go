package easel

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// IsZero reports whether the rectangle has no area and sits at the origin.
func (r Rect) IsZero() bool {
	return r.X == 0 && r.Y == 0 && r.Width == 0 && r.Height == 0
}

// Origin values for OriginX / OriginY. Origins are fractions of the object's
// bounding box: 0 is the left (top) edge, 1 the right (bottom) edge.
const (
	OriginLeft   = 0.0
	OriginTop    = 0.0
	OriginCenter = 0.5
	OriginRight  = 1.0
	OriginBottom = 1.0
)

// resolveOrigin maps an origin fraction to an offset from the centre in
// [-0.5, 0.5].
func resolveOrigin(v float64) float64 {
	return v - 0.5
}

// invertOrigin returns the origin on the opposite side of the box.
func invertOrigin(v float64) float64 {
	return 1 - v
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
	MouseButtonRight                     // secondary (right) mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether key is a configured modifier that is held in m.
// A zero key means the feature is disabled and never matches.
func (m KeyModifiers) Has(key KeyModifiers) bool {
	return key != 0 && m&key != 0
}

// PointerEvent is a single pointer sample delivered by the host.
// X and Y are host pixels relative to the element the canvas is shown in;
// see Canvas.SetElementBounds.
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
	Touch     bool
	PointerID int
	// Primary is false for the secondary fingers of a multi-touch gesture.
	Primary bool
}

// Cursor names reported by Canvas.Cursor and control cursor handlers.
const (
	CursorDefault    = "default"
	CursorMove       = "move"
	CursorCrosshair  = "crosshair"
	CursorNotAllowed = "not-allowed"
	CursorText       = "text"
)
