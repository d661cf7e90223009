package easel

import (
	"context"
	"image"
	"slices"
	"time"

	"github.com/gogpu/gg"
)

// StaticCanvasOptions configures a StaticCanvas. The zero value selects the
// defaults: retina scaling at ratio 1, render on add/remove, offscreen
// culling, the built-in class registry and the default resource loader.
type StaticCanvasOptions struct {
	// RetinaScaling is the device pixel ratio of the backing store. Zero
	// means 1.
	RetinaScaling float64
	// DisableRetinaScaling renders at logical size regardless of
	// RetinaScaling.
	DisableRetinaScaling bool
	// DisableRenderOnAddRemove stops Add/Remove from requesting a render.
	DisableRenderOnAddRemove bool
	// DisableOffscreenSkip paints objects outside the viewport too.
	DisableOffscreenSkip bool

	// Frames is the scheduler renders are requested on. A private queue is
	// created when nil; the host must tick it.
	Frames *FrameQueue

	Registry     *ClassRegistry
	Loader       ResourceLoader
	UnknownTypes UnknownTypePolicy
	Fonts        *FontRegistry

	// Debug enables misuse checks and per-render timing logs.
	Debug bool
	// ScreenshotDir is where Screenshot writes. Defaults to "screenshots".
	ScreenshotDir string
}

type renderPhase int

const (
	renderIdle renderPhase = iota
	renderPending
	renderPainting
)

func (p renderPhase) String() string {
	switch p {
	case renderPending:
		return "pending"
	case renderPainting:
		return "painting"
	}
	return "idle"
}

// StaticCanvas owns an ordered list of objects and paints them onto a
// CPU surface. It has no pointer interaction; Canvas adds that.
type StaticCanvas struct {
	Emitter

	// BackgroundColor fills the surface before objects are painted.
	BackgroundColor Paint
	// BackgroundImage is painted after BackgroundColor.
	BackgroundImage *Object
	// BackgroundVpt applies the viewport transform to the background.
	BackgroundVpt bool

	OverlayColor Paint
	OverlayImage *Object
	OverlayVpt   bool

	// ClipPath masks the whole scene, in scene coordinates.
	ClipPath *Object

	SkipOffscreen         bool
	ImageSmoothingEnabled bool
	RenderOnAddRemove     bool
	EnableRetinaScaling   bool
	// ControlsAboveOverlay draws selection controls over the overlay.
	ControlsAboveOverlay bool
	// IncludeDefaultValues keeps default-valued properties in ToObject
	// output.
	IncludeDefaultValues bool
	// SVGViewportTransformation applies the viewport to SVG output.
	SVGViewportTransformation bool

	width, height int
	retina        float64
	lower         *gg.Context

	objects []*Object

	vpt       Matrix
	vptCoords viewportCache
	panBounds *Rect

	fonts   *FontRegistry
	reviver Reviver
	frames  *FrameQueue

	phase        renderPhase
	renderHandle FrameHandle
	renders      uint64

	disposed      bool
	disposeQueued bool
	disposeDone   chan struct{}

	loadSeq    uint64
	loadCancel context.CancelFunc

	interactive *Canvas

	debug         bool
	screenshotDir string
}

// NewStaticCanvas creates a canvas with a w×h logical surface.
func NewStaticCanvas(w, h int, opts StaticCanvasOptions) *StaticCanvas {
	c := &StaticCanvas{}
	c.init(w, h, opts)
	return c
}

func (c *StaticCanvas) init(w, h int, opts StaticCanvasOptions) {
	c.BackgroundVpt = true
	c.OverlayVpt = true
	c.SkipOffscreen = !opts.DisableOffscreenSkip
	c.ImageSmoothingEnabled = true
	c.RenderOnAddRemove = !opts.DisableRenderOnAddRemove
	c.EnableRetinaScaling = !opts.DisableRetinaScaling
	c.SVGViewportTransformation = true
	c.IncludeDefaultValues = true

	c.width, c.height = max(w, 1), max(h, 1)
	c.retina = opts.RetinaScaling
	if c.retina <= 0 {
		c.retina = 1
	}
	c.vpt = Identity
	c.fonts = opts.Fonts
	if c.fonts == nil {
		c.fonts = DefaultFonts()
	}
	c.reviver = Reviver{Registry: opts.Registry, Loader: opts.Loader, Unknown: opts.UnknownTypes}
	c.frames = opts.Frames
	if c.frames == nil {
		c.frames = NewFrameQueue()
	}
	c.debug = opts.Debug
	c.screenshotDir = opts.ScreenshotDir
	if c.screenshotDir == "" {
		c.screenshotDir = "screenshots"
	}
	bw, bh := c.backingSize()
	c.lower = gg.NewContext(bw, bh)
}

// Width returns the logical width.
func (c *StaticCanvas) Width() int { return c.width }

// Height returns the logical height.
func (c *StaticCanvas) Height() int { return c.height }

// Frames returns the scheduler the canvas renders on.
func (c *StaticCanvas) Frames() *FrameQueue { return c.frames }

// Fonts returns the font registry text objects resolve families against.
func (c *StaticCanvas) Fonts() *FontRegistry { return c.fonts }

// Reviver returns the reviver LoadFromJSON uses.
func (c *StaticCanvas) Reviver() *Reviver { return &c.reviver }

// RetinaScaling returns the effective device pixel ratio.
func (c *StaticCanvas) RetinaScaling() float64 {
	if c.EnableRetinaScaling {
		return c.retina
	}
	return 1
}

func (c *StaticCanvas) backingSize() (int, int) {
	r := c.RetinaScaling()
	return max(int(float64(c.width)*r+0.5), 1), max(int(float64(c.height)*r+0.5), 1)
}

// SetDimensions resizes the logical surface, keeping the backing store at
// the retina ratio.
func (c *StaticCanvas) SetDimensions(w, h int) {
	if c.disposed {
		return
	}
	c.width, c.height = max(w, 1), max(h, 1)
	bw, bh := c.backingSize()
	_ = c.lower.Resize(bw, bh)
	if c.interactive != nil {
		c.interactive.resizeTop(bw, bh)
	}
	c.vptCoords.valid = false
	c.RequestRenderAll()
}

// Surface returns the context the scene is painted on. Its size is the
// backing-store size.
func (c *StaticCanvas) Surface() *gg.Context { return c.lower }

// Image returns the painted surface.
func (c *StaticCanvas) Image() image.Image { return c.lower.Image() }

// RenderCount returns how many full renders have run.
func (c *StaticCanvas) RenderCount() uint64 { return c.renders }

// IsDisposed reports whether the canvas was torn down.
func (c *StaticCanvas) IsDisposed() bool { return c.disposed }

// --- object list ---

// Objects returns the top-level objects, optionally only those of the given
// types. The unfiltered slice must not be mutated.
func (c *StaticCanvas) Objects(types ...string) []*Object {
	if len(types) == 0 {
		return c.objects
	}
	var out []*Object
	for _, o := range c.objects {
		if slices.Contains(types, o.Type()) {
			out = append(out, o)
		}
	}
	return out
}

// Item returns the object at index i, or nil.
func (c *StaticCanvas) Item(i int) *Object {
	if i < 0 || i >= len(c.objects) {
		return nil
	}
	return c.objects[i]
}

// Size returns the number of top-level objects.
func (c *StaticCanvas) Size() int { return len(c.objects) }

// IsEmpty reports whether the canvas has no objects.
func (c *StaticCanvas) IsEmpty() bool { return len(c.objects) == 0 }

// Contains reports whether o is a top-level object, or with deep set,
// anywhere in the tree.
func (c *StaticCanvas) Contains(o *Object, deep bool) bool {
	if slices.Contains(c.objects, o) {
		return true
	}
	if !deep {
		return false
	}
	for p := o.parent; p != nil; p = p.parent {
		if slices.Contains(c.objects, p) {
			return true
		}
	}
	return false
}

// Add appends objects and returns the new object count.
func (c *StaticCanvas) Add(objs ...*Object) int {
	return c.Insert(len(c.objects), objs...)
}

// Insert places objects at index i. An object owned by a group or another
// canvas is detached from it first.
func (c *StaticCanvas) Insert(i int, objs ...*Object) int {
	if c.disposed {
		return len(c.objects)
	}
	var added []*Object
	for _, o := range objs {
		if o == nil || slices.Contains(added, o) {
			continue
		}
		if c.debug {
			debugCheckDisposed(o, "Add")
		}
		if o.canvas == c && o.parent == nil && slices.Contains(c.objects, o) {
			continue
		}
		switch {
		case o.parent != nil:
			logger().Warn("object added to canvas was detached from its group", "id", o.ID)
			if pg := o.parent.groupShape(); pg != nil {
				pg.remove(o.parent, o)
			}
		case o.canvas != nil:
			logger().Warn("object added to canvas was detached from another canvas", "id", o.ID)
			o.canvas.detach(o)
		}
		added = append(added, o)
	}
	if len(added) == 0 {
		return len(c.objects)
	}
	i = min(max(i, 0), len(c.objects))
	c.objects = slices.Insert(c.objects, i, added...)
	for _, o := range added {
		o.setCanvas(c)
		o.SetCoords()
		o.fire("added", &Event{})
		c.Fire("object:added", &Event{Target: o})
	}
	if c.RenderOnAddRemove {
		c.RequestRenderAll()
	}
	return len(c.objects)
}

// Remove takes objects off the canvas and returns those that were on it.
func (c *StaticCanvas) Remove(objs ...*Object) []*Object {
	var removed []*Object
	for _, o := range objs {
		if c.remove(o) {
			removed = append(removed, o)
		}
	}
	if len(removed) > 0 && c.RenderOnAddRemove {
		c.RequestRenderAll()
	}
	return removed
}

func (c *StaticCanvas) remove(o *Object) bool {
	if o == nil || !slices.Contains(c.objects, o) {
		return false
	}
	if c.interactive != nil {
		c.interactive.beforeObjectRemoved(o)
	}
	// selection handlers may have reordered the list
	i := slices.Index(c.objects, o)
	if i < 0 {
		return false
	}
	c.objects = slices.Delete(c.objects, i, i+1)
	o.setCanvas(nil)
	o.fire("removed", &Event{})
	c.Fire("object:removed", &Event{Target: o})
	return true
}

// detach removes o because it is moving into a group.
func (c *StaticCanvas) detach(o *Object) {
	c.remove(o)
}

// Clear removes every object and resets background and overlay.
func (c *StaticCanvas) Clear() {
	if c.interactive != nil {
		c.interactive.clearInteraction()
	}
	for _, o := range slices.Clone(c.objects) {
		c.remove(o)
	}
	c.BackgroundImage = nil
	c.OverlayImage = nil
	c.BackgroundColor = Paint{}
	c.OverlayColor = Paint{}
	c.ClipPath = nil
	c.lower.Clear()
	c.Fire("canvas:cleared", &Event{})
	if c.RenderOnAddRemove {
		c.RequestRenderAll()
	}
}

// --- stacking order ---

// BringToFront moves o to the top of the stack. An active selection moves
// all its members, keeping their relative order.
func (c *StaticCanvas) BringToFront(o *Object) bool {
	return c.restack(o, false, func(i int) int { return len(c.objects) - 1 })
}

// SendToBack moves o to the bottom of the stack.
func (c *StaticCanvas) SendToBack(o *Object) bool {
	return c.restack(o, true, func(i int) int { return 0 })
}

// BringForward moves o one step up. With intersecting set it jumps above
// the next object that overlaps it, and stays put when none does.
func (c *StaticCanvas) BringForward(o *Object, intersecting bool) bool {
	return c.restack(o, false, func(i int) int {
		return c.findNewUpperIndex(c.objects[i], i, intersecting)
	})
}

// SendBackwards moves o one step down. See BringForward.
func (c *StaticCanvas) SendBackwards(o *Object, intersecting bool) bool {
	return c.restack(o, true, func(i int) int {
		return c.findNewLowerIndex(c.objects[i], i, intersecting)
	})
}

// MoveTo places o at index i of the stack.
func (c *StaticCanvas) MoveTo(o *Object, i int) bool {
	return c.restack(o, false, func(int) int { return min(max(i, 0), len(c.objects)-1) })
}

// restack moves o, or each member of an active selection, to the index
// returned by to. Members move bottom-up, or top-down with downward set.
func (c *StaticCanvas) restack(o *Object, downward bool, to func(i int) int) bool {
	if o == nil {
		return false
	}
	targets := []*Object{o}
	if as := ActiveSelectionOf(o); as != nil {
		targets = slices.Clone(as.objects)
		if downward {
			slices.Reverse(targets)
		}
	}
	moved := false
	for _, t := range targets {
		i := slices.Index(c.objects, t)
		if i < 0 {
			continue
		}
		j := to(i)
		if j == i {
			continue
		}
		c.objects = slices.Delete(c.objects, i, i+1)
		c.objects = slices.Insert(c.objects, min(j, len(c.objects)), t)
		moved = true
	}
	if moved {
		if as := ActiveSelectionOf(o); as != nil {
			as.sortByStack(o)
		}
		if c.RenderOnAddRemove {
			c.RequestRenderAll()
		}
	}
	return moved
}

func isOverlapping(a, b *Object) bool {
	return a.IntersectsWithObject(b) || a.IsContainedWithinObject(b) || b.IsContainedWithinObject(a)
}

func (c *StaticCanvas) findNewUpperIndex(o *Object, i int, intersecting bool) int {
	if !intersecting {
		return min(i+1, len(c.objects)-1)
	}
	for k := i + 1; k < len(c.objects); k++ {
		if isOverlapping(o, c.objects[k]) {
			return k
		}
	}
	return i
}

func (c *StaticCanvas) findNewLowerIndex(o *Object, i int, intersecting bool) int {
	if !intersecting {
		return max(i-1, 0)
	}
	for k := i - 1; k >= 0; k-- {
		if isOverlapping(o, c.objects[k]) {
			return k
		}
	}
	return i
}

// --- render scheduling ---

// RequestRenderAll schedules a full render on the next frame. Further
// requests before that frame are absorbed. It does nothing once disposed.
func (c *StaticCanvas) RequestRenderAll() {
	if c.disposed || c.disposeQueued || c.renderHandle != 0 {
		return
	}
	c.renderHandle = c.frames.RequestFrame(func(float64) {
		c.renderHandle = 0
		if c.phase == renderPending {
			c.phase = renderIdle
		}
		c.RenderAll()
		c.Fire("frame:rendered", &Event{})
	})
	if c.phase == renderIdle {
		c.phase = renderPending
	}
	logger().Debug("render requested", "handle", c.renderHandle)
}

// CancelRequestedRender drops a scheduled render.
func (c *StaticCanvas) CancelRequestedRender() {
	if c.renderHandle == 0 {
		return
	}
	c.frames.Cancel(c.renderHandle)
	c.renderHandle = 0
	if c.phase == renderPending {
		c.phase = renderIdle
	}
	logger().Debug("render request cancelled")
}

// RenderAll paints the scene immediately, cancelling any scheduled render.
func (c *StaticCanvas) RenderAll() {
	c.CancelRequestedRender()
	if c.disposed {
		return
	}
	objs := c.objects
	withControls := false
	if c.interactive != nil {
		c.interactive.beforeRenderAll()
		objs = c.interactive.chooseObjectsToRender()
		withControls = true
	}
	c.renders++
	c.renderCanvas(c.lower, objs, withControls)
}

// renderCanvas paints objs onto dc: background, objects under the
// viewport, controls, clip path, overlay.
func (c *StaticCanvas) renderCanvas(dc *gg.Context, objs []*Object, withControls bool) {
	if c.disposed {
		return
	}
	if c.phase == renderPainting {
		// export from a render hook reuses the running paint
		c.paintCanvas(dc, objs, withControls)
		return
	}
	c.phase = renderPainting
	defer func() {
		c.phase = renderIdle
		if c.renderHandle != 0 {
			c.phase = renderPending
		}
		if c.disposeQueued {
			c.destroy()
		}
	}()
	c.paintCanvas(dc, objs, withControls)
}

func (c *StaticCanvas) paintCanvas(dc *gg.Context, objs []*Object, withControls bool) {

	var stats renderStats
	var t0 time.Time
	if c.debug {
		t0 = time.Now()
	}

	c.CalcViewportBoundaries()
	dc.Identity()
	dc.ResetClip()
	dc.Clear()
	r := c.RetinaScaling()
	dc.Scale(r, r)

	if c.debug {
		stats.clearTime = time.Since(t0)
		t0 = time.Now()
	}

	c.Fire("before:render", &Event{Context: dc})
	c.renderBackgroundOrOverlay(dc, c.BackgroundColor, c.BackgroundImage, c.BackgroundVpt)

	dc.Push()
	dc.Transform(toGG(c.vpt))
	for _, o := range objs {
		if c.SkipOffscreen && o.group == nil && !o.IsOnScreen() {
			stats.culled++
			continue
		}
		o.render(dc, RenderState{Alpha: 1})
		stats.painted++
	}
	dc.Pop()

	if c.debug {
		stats.objectsTime = time.Since(t0)
		t0 = time.Now()
	}

	if withControls && !c.ControlsAboveOverlay {
		c.interactive.drawControls(dc)
	}
	if c.ClipPath != nil {
		c.drawClipPathOnCanvas(dc, c.ClipPath)
	}
	c.renderBackgroundOrOverlay(dc, c.OverlayColor, c.OverlayImage, c.OverlayVpt)
	if withControls && c.ControlsAboveOverlay {
		c.interactive.drawControls(dc)
	}
	c.Fire("after:render", &Event{Context: dc})

	if c.debug {
		stats.overlayTime = time.Since(t0)
		c.debugLog(stats)
	}
}

// renderBackgroundOrOverlay fills the logical surface with fill and draws
// img, optionally under the viewport transform.
func (c *StaticCanvas) renderBackgroundOrOverlay(dc *gg.Context, fill Paint, img *Object, needsVpt bool) {
	if fill.IsZero() && img == nil {
		return
	}
	w, h := float64(c.width), float64(c.height)
	if !fill.IsZero() {
		dc.Push()
		ctm := fromGG(dc.GetTransform())
		if needsVpt {
			ctm = multiplyAffine(ctm, c.vpt)
		}
		ctm = multiplyAffine(ctm, translateMatrix(w/2, h/2))
		if b, ok := fill.brush(toGG(ctm), w, h, 1); ok {
			dc.ClearPath()
			dc.DrawRectangle(0, 0, w, h)
			dc.SetFillBrush(b)
			_ = dc.Fill()
		}
		dc.Pop()
	}
	if img != nil {
		dc.Push()
		if needsVpt {
			dc.Transform(toGG(c.vpt))
		}
		img.render(dc, RenderState{Alpha: 1})
		dc.Pop()
	}
}

// drawClipPathOnCanvas keeps only the pixels under clip, which is placed in
// scene space.
func (c *StaticCanvas) drawClipPathOnCanvas(dc *gg.Context, clip *Object) {
	mask := scratchLike(dc)
	defer mask.Close()
	mask.Transform(toGG(c.vpt))
	clip.canvas = c
	clip.render(mask, RenderState{Alpha: 1, Clipping: true})
	maskWithClip(dc.ResizeTarget(), mask.ResizeTarget(), clip.Inverted)
}
