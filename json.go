package easel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ToObject serializes the scene: version, the objects not excluded from
// export, background, overlay and clip path. extra names additional object
// properties, and scene properties such as "backgroundVpt".
func (c *StaticCanvas) ToObject(extra ...string) map[string]any {
	return c.toObject(SerializeOptions{IncludeDefaultValues: c.IncludeDefaultValues, PropertiesToInclude: extra})
}

// ToDatalessObject is ToObject with heavy data replaced by references.
func (c *StaticCanvas) ToDatalessObject(extra ...string) map[string]any {
	return c.toObject(SerializeOptions{IncludeDefaultValues: c.IncludeDefaultValues, Dataless: true, PropertiesToInclude: extra})
}

// ToJSON encodes ToObject.
func (c *StaticCanvas) ToJSON(extra ...string) ([]byte, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	return json.Marshal(c.ToObject(extra...))
}

// SceneWith serializes the scene with explicit options.
func (c *StaticCanvas) SceneWith(opts SerializeOptions) map[string]any {
	return c.toObject(opts)
}

func (c *StaticCanvas) toObject(opts SerializeOptions) map[string]any {
	objs := make([]any, 0, len(c.objects))
	for _, o := range c.objects {
		if o.ExcludeFromExport {
			continue
		}
		objs = append(objs, serializeRealized(o, opts))
	}
	m := map[string]any{
		"version": Version,
		"objects": objs,
	}
	for _, k := range opts.PropertiesToInclude {
		if v, ok := c.namedProp(k); ok {
			m[k] = v
		}
	}
	if v := paintValue(c.BackgroundColor, opts.Dataless); v != nil {
		m["background"] = v
	}
	if v := paintValue(c.OverlayColor, opts.Dataless); v != nil {
		m["overlay"] = v
	}
	if o := c.BackgroundImage; o != nil && !o.ExcludeFromExport {
		m["backgroundImage"] = o.toObject(opts)
	}
	if o := c.OverlayImage; o != nil && !o.ExcludeFromExport {
		m["overlayImage"] = o.toObject(opts)
	}
	if o := c.ClipPath; o != nil && !o.ExcludeFromExport {
		v := o.toObject(opts)
		v["inverted"] = o.Inverted
		v["absolutePositioned"] = o.AbsolutePositioned
		m["clipPath"] = v
	}
	return m
}

// serializeRealized serializes o as if it were not in an active selection.
func serializeRealized(o *Object, opts SerializeOptions) map[string]any {
	restore := realizeSelectionTransform(o)
	defer restore()
	return o.toObject(opts)
}

// realizeSelectionTransform re-expresses a selection member's geometry in
// scene space until the returned function is called.
func realizeSelectionTransform(o *Object) func() {
	g := o.group
	if g == nil || o.parent != nil || !g.IsActiveSelection() {
		return func() {}
	}
	saved := saveObjectTransform(o)
	m := o.CalcTransformMatrix()
	o.group = nil
	applyTransformToObject(o, m)
	return func() {
		o.group = g
		saved.restore(o)
	}
}

func (c *StaticCanvas) namedProp(k string) (any, bool) {
	switch k {
	case "backgroundVpt":
		return c.BackgroundVpt, true
	case "overlayVpt":
		return c.OverlayVpt, true
	case "controlsAboveOverlay":
		return c.ControlsAboveOverlay, true
	case "skipOffscreen":
		return c.SkipOffscreen, true
	case "viewportTransform":
		return matrixValue(c.vpt), true
	}
	return nil, false
}

func (c *StaticCanvas) applySceneProps(p Props) {
	c.BackgroundVpt = p.Bool("backgroundVpt", c.BackgroundVpt)
	c.OverlayVpt = p.Bool("overlayVpt", c.OverlayVpt)
	c.ControlsAboveOverlay = p.Bool("controlsAboveOverlay", c.ControlsAboveOverlay)
	c.SkipOffscreen = p.Bool("skipOffscreen", c.SkipOffscreen)
	if m, ok := p.Matrix("viewportTransform"); ok {
		c.vpt = m
		c.vptCoords.valid = false
	}
}

// revivedScene is a fully revived document waiting to be committed.
type revivedScene struct {
	objects         []*Object
	background      Paint
	overlay         Paint
	backgroundImage *Object
	overlayImage    *Object
	clipPath        *Object
	props           Props
}

// decodeScene accepts a JSON document as bytes, string, io.Reader or an
// already decoded map.
func decodeScene(input any) (Props, error) {
	var data []byte
	switch v := input.(type) {
	case nil:
		return nil, ErrNoInput
	case map[string]any:
		return Props(v), nil
	case Props:
		return v, nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case io.Reader:
		b, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("read scene: %w", err)
		}
		data = b
	default:
		return nil, fmt.Errorf("%w: input of type %T", ErrInvalidScene, input)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoInput
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidScene)
	}
	return Props(m), nil
}

// reviveScene builds every object and resource of doc. Nothing is attached
// to a canvas.
func reviveScene(ctx context.Context, rv *Reviver, doc Props) (*revivedScene, error) {
	s := &revivedScene{props: doc}
	var items []any
	if v, ok := doc["objects"]; ok && v != nil {
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: objects is not an array", ErrInvalidScene)
		}
		items = arr
	}
	objs, err := rv.ReviveAll(ctx, items)
	if err != nil {
		return nil, err
	}
	s.objects = objs

	for _, k := range []string{"background", "overlay"} {
		v, ok := doc[k]
		if !ok {
			continue
		}
		p, err := parsePaint(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if err := rv.resolvePattern(ctx, p.Pattern); err != nil {
			return nil, fmt.Errorf("%s pattern: %w", k, err)
		}
		if k == "background" {
			s.background = p
		} else {
			s.overlay = p
		}
	}
	for _, k := range []string{"backgroundImage", "overlayImage", "clipPath"} {
		p, ok := doc.Object(k)
		if !ok {
			continue
		}
		o, err := rv.Revive(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		switch k {
		case "backgroundImage":
			s.backgroundImage = o
		case "overlayImage":
			s.overlayImage = o
		default:
			s.clipPath = o
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return s, nil
}

// commitScene replaces the canvas contents with s in one step.
func (c *StaticCanvas) commitScene(s *revivedScene) {
	render := c.RenderOnAddRemove
	c.RenderOnAddRemove = false
	c.Clear()
	c.Add(s.objects...)
	c.BackgroundColor = s.background
	c.OverlayColor = s.overlay
	c.BackgroundImage = s.backgroundImage
	c.OverlayImage = s.overlayImage
	c.ClipPath = s.clipPath
	for _, o := range []*Object{s.backgroundImage, s.overlayImage, s.clipPath} {
		if o != nil {
			o.setCanvas(c)
		}
	}
	c.applySceneProps(s.props)
	c.RenderOnAddRemove = render
	logger().Info("scene loaded", "objects", len(s.objects))
	c.Fire("canvas:loaded", &Event{})
	c.RequestRenderAll()
}

// LoadFromJSON revives the document in input and replaces the scene with
// it. The scene is untouched when revival fails or ctx is cancelled. input
// may be bytes, a string, an io.Reader or a decoded map.
func (c *StaticCanvas) LoadFromJSON(ctx context.Context, input any) error {
	if c.disposed {
		return ErrDisposed
	}
	doc, err := decodeScene(input)
	if err != nil {
		return err
	}
	c.cancelLoad()
	c.loadSeq++
	seq := c.loadSeq
	s, err := reviveScene(ctx, &c.reviver, doc)
	if err != nil {
		return err
	}
	if seq != c.loadSeq {
		return ErrSuperseded
	}
	if c.disposed {
		return ErrDisposed
	}
	c.commitScene(s)
	return nil
}

// LoadFromJSONAsync revives the document on another goroutine and commits
// it from the frame queue. done runs on the owner goroutine with the
// outcome. A later load supersedes this one: its work is cancelled and done
// receives ErrSuperseded.
func (c *StaticCanvas) LoadFromJSONAsync(ctx context.Context, input any, done func(error)) {
	finish := func(err error) {
		if done != nil {
			done(err)
		}
	}
	if c.disposed {
		c.frames.Post(func() { finish(ErrDisposed) })
		return
	}
	doc, err := decodeScene(input)
	if err != nil {
		c.frames.Post(func() { finish(err) })
		return
	}
	c.cancelLoad()
	c.loadSeq++
	seq := c.loadSeq
	lctx, cancel := context.WithCancel(ctx)
	c.loadCancel = cancel
	rv := c.reviver
	rv.registry()
	go func() {
		s, err := reviveScene(lctx, &rv, doc)
		c.frames.Post(func() {
			defer cancel()
			switch {
			case seq != c.loadSeq:
				err = ErrSuperseded
			case c.disposed:
				err = ErrDisposed
			case err == nil:
				c.loadCancel = nil
				c.commitScene(s)
			}
			finish(err)
		})
	}()
}

// cancelLoad abandons an in-flight asynchronous load.
func (c *StaticCanvas) cancelLoad() {
	if c.loadCancel != nil {
		c.loadCancel()
		c.loadCancel = nil
	}
}
