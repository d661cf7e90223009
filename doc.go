// Package easel is a retained-mode 2D scene graph with an interactive
// editing layer, painted on a CPU surface with [gg].
//
// # Quick start
//
// A [StaticCanvas] owns an ordered list of objects and paints them when the
// host ticks its frame queue:
//
//	c := easel.NewStaticCanvas(640, 480, easel.StaticCanvasOptions{})
//	r := easel.NewRect(100, 50, 80, 40)
//	r.Fill = easel.Color("red")
//	c.Add(r)
//	c.Frames().Tick(1.0 / 60)
//	png, _ := c.ToBlob(easel.ImageOptions{Format: "png"})
//
// [Canvas] adds pointer interaction: target finding, selection, marquee
// selection, transform controls, free drawing and pinch gestures. Feed it
// pointer events from any host:
//
//	ic := easel.NewCanvas(640, 480, easel.CanvasOptions{})
//	ic.OnPointerDown(easel.PointerEvent{X: 120, Y: 60, Primary: true})
//
// The ebitenhost package runs a Canvas in an [Ebitengine] window.
//
// # Objects
//
// Every drawable is an [Object] carrying geometry, style and interaction
// flags around a [Shape]: [NewRect], [NewCircle], [NewEllipse],
// [NewPolygon], [NewPolyline], [NewPath], [NewText], [NewTextbox],
// [NewImage] and [NewGroup]. Geometry fields may be written directly;
// derived matrices and coordinates are recomputed lazily.
//
// # Coordinates
//
// Left/Top locate the object's origin (OriginX/OriginY, fractions of the
// box) in its parent's plane. The viewport transform maps scene
// coordinates to the surface. [Matrix] values are affine [a b c d e f].
//
// # Serialization
//
// [StaticCanvas.ToJSON] and [StaticCanvas.LoadFromJSON] round-trip a scene
// through the class registry; [StaticCanvas.ToSVG] and
// [StaticCanvas.ToBlob] export it.
//
// # Animation
//
// [StaticCanvas.Animate] and [StaticCanvas.AnimateViewport] tween values
// with [gween] easing functions on the frame queue.
//
// # Logging
//
// The package logs through [log/slog]; see [SetLogger].
//
// [gg]: https://github.com/gogpu/gg
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package easel
