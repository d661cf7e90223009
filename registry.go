package easel

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ObjectFactory builds an object of one type from its serialized properties.
// It sets the shape and shape-specific state; common properties, clip paths
// and custom keys are applied by the Reviver afterwards. Nested objects are
// revived through rv.
type ObjectFactory func(ctx context.Context, p Props, rv *Reviver) (*Object, error)

// ClassRegistry maps serialized type names to factories.
type ClassRegistry struct {
	mu        sync.RWMutex
	factories map[string]ObjectFactory
}

// NewClassRegistry returns a registry with the built-in shapes registered.
func NewClassRegistry() *ClassRegistry {
	r := &ClassRegistry{factories: make(map[string]ObjectFactory)}
	r.Register("rect", shapeFactory(reviveRect))
	r.Register("ellipse", shapeFactory(reviveEllipse))
	r.Register("circle", shapeFactory(reviveCircle))
	r.Register("path", revivePathObject)
	r.Register("polyline", revivePolyObject(false))
	r.Register("polygon", revivePolyObject(true))
	r.Register("image", reviveImageObject)
	r.Register("text", reviveTextObject(false))
	r.Register("textbox", reviveTextObject(true))
	r.Register("group", reviveGroupObject)
	// a serialized active selection comes back as a plain group
	r.Register("activeSelection", reviveGroupObject)
	return r
}

// Register adds or replaces the factory for typ.
func (r *ClassRegistry) Register(typ string, f ObjectFactory) {
	r.mu.Lock()
	r.factories[typ] = f
	r.mu.Unlock()
}

// Lookup returns the factory for typ.
func (r *ClassRegistry) Lookup(typ string) (ObjectFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[typ]
	return f, ok
}

// Types returns the registered type names, sorted.
func (r *ClassRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// UnknownTypePolicy decides what revival does with an unregistered type.
type UnknownTypePolicy int

const (
	// RejectUnknown fails the whole revival with ErrUnknownType.
	RejectUnknown UnknownTypePolicy = iota
	// SkipUnknown drops the entry and logs a warning.
	SkipUnknown
)

// Reviver turns serialized property maps into objects.
type Reviver struct {
	Registry *ClassRegistry
	Loader   ResourceLoader
	Unknown  UnknownTypePolicy
	// Concurrency bounds parallel revival of sibling objects. Zero uses
	// GOMAXPROCS.
	Concurrency int
}

func (rv *Reviver) registry() *ClassRegistry {
	if rv.Registry == nil {
		rv.Registry = NewClassRegistry()
	}
	return rv.Registry
}

func (rv *Reviver) loader() ResourceLoader {
	if rv.Loader == nil {
		return DefaultLoader{}
	}
	return rv.Loader
}

// Revive builds one object. It returns nil without error when the type is
// unknown and the policy is SkipUnknown.
func (rv *Reviver) Revive(ctx context.Context, p Props) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("revive: %w", err)
	}
	typ := p.Str("type", "")
	if typ == "" {
		return nil, fmt.Errorf("%w: object without type", ErrInvalidScene)
	}
	f, ok := rv.registry().Lookup(typ)
	if !ok {
		if rv.Unknown == SkipUnknown {
			logger().Warn("skipping unknown object type", "type", typ)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	o, err := f(ctx, p, rv)
	if err != nil {
		return nil, fmt.Errorf("revive %s: %w", typ, err)
	}
	if err := reviveCommon(o, p); err != nil {
		return nil, fmt.Errorf("revive %s: %w", typ, err)
	}
	for _, paint := range []Paint{o.Fill, o.Stroke} {
		if err := rv.resolvePattern(ctx, paint.Pattern); err != nil {
			return nil, fmt.Errorf("revive %s pattern: %w", typ, err)
		}
	}
	if cp, ok := p.Object("clipPath"); ok {
		clip, err := rv.Revive(ctx, cp)
		if err != nil {
			return nil, fmt.Errorf("revive %s clip path: %w", typ, err)
		}
		o.ClipPath = clip
	}
	var shapeKeys map[string]any
	if o.shape != nil {
		shapeKeys = o.shape.Props(o, SerializeOptions{Dataless: true})
	}
	reviveExtra(o, p, shapeKeys)
	return o, nil
}

// resolvePattern decodes a pattern's source image.
func (rv *Reviver) resolvePattern(ctx context.Context, pat *Pattern) error {
	if pat == nil || pat.img != nil || pat.Source == "" {
		return nil
	}
	img, err := rv.loader().LoadImage(ctx, pat.Source)
	if err != nil {
		return err
	}
	pat.img = img
	if strings.HasPrefix(pat.Source, "data:") {
		pat.Source = ""
	}
	return nil
}

// ReviveAll revives items concurrently, preserving order. Skipped entries
// are left out. The first error cancels the rest.
func (rv *Reviver) ReviveAll(ctx context.Context, items []any) ([]*Object, error) {
	entries := make([]map[string]any, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrInvalidScene, i)
		}
		entries[i] = m
	}

	out := make([]*Object, len(items))
	g, gctx := errgroup.WithContext(ctx)
	limit := rv.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	rv.registry()
	for i, m := range entries {
		g.Go(func() error {
			o, err := rv.Revive(gctx, Props(m))
			if err != nil {
				return err
			}
			out[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(out, func(o *Object) bool { return o == nil }), nil
}

// EnlivenObjects revives a serialized object list with the built-in
// registry and default loader.
func EnlivenObjects(ctx context.Context, items []any) ([]*Object, error) {
	return (&Reviver{}).ReviveAll(ctx, items)
}

func shapeFactory(revive func(Props) Shape) ObjectFactory {
	return func(_ context.Context, p Props, _ *Reviver) (*Object, error) {
		return NewObject(revive(p)), nil
	}
}

func revivePathObject(ctx context.Context, p Props, rv *Reviver) (*Object, error) {
	var (
		cmds []PathCommand
		err  error
	)
	src := p.Str("sourcePath", "")
	switch {
	case p.Has("path"):
		cmds, err = parseCommandsValue(p["path"])
	case src != "":
		var data []byte
		data, err = rv.loader().Fetch(ctx, src)
		if err == nil {
			cmds, err = ParsePathData(string(data))
		}
	default:
		err = fmt.Errorf("%w: path without data", ErrInvalidScene)
	}
	if err != nil {
		return nil, err
	}
	path := &Path{Commands: cmds, SourcePath: src}
	o := NewObject(path)
	path.setDimensions(o)
	return o, nil
}

func revivePolyObject(closed bool) ObjectFactory {
	return func(_ context.Context, p Props, _ *Reviver) (*Object, error) {
		poly := &Poly{Points: parsePoints(p["points"]), Closed: closed}
		o := NewObject(poly)
		poly.SetDimensions(o)
		return o, nil
	}
}

func reviveImageObject(ctx context.Context, p Props, rv *Reviver) (*Object, error) {
	im := &Image{
		Src:            p.Str("src", ""),
		CropX:          p.Num("cropX", 0),
		CropY:          p.Num("cropY", 0),
		ImageSmoothing: p.Bool("imageSmoothing", true),
	}
	if im.Src != "" {
		img, err := rv.loader().LoadImage(ctx, im.Src)
		if err != nil {
			return nil, err
		}
		im.element = img
		if strings.HasPrefix(im.Src, "data:") {
			// re-encoded on save
			im.Src = ""
		}
	}
	o := NewObject(im)
	if im.element != nil {
		b := im.element.Bounds()
		o.Width, o.Height = float64(b.Dx()), float64(b.Dy())
	}
	return o, nil
}

func reviveTextObject(wrap bool) ObjectFactory {
	return func(_ context.Context, p Props, _ *Reviver) (*Object, error) {
		t := reviveText(p, wrap)
		o := NewObject(t)
		if wrap {
			o.Controls = ResizeControls()
		}
		return o, nil
	}
}

func reviveGroupObject(ctx context.Context, p Props, rv *Reviver) (*Object, error) {
	items, _ := p["objects"].([]any)
	objs, err := rv.ReviveAll(ctx, items)
	if err != nil {
		return nil, err
	}
	g := &Group{
		Interactive:    p.Bool("interactive", false),
		SubTargetCheck: p.Bool("subTargetCheck", false),
		Layout:         p.Str("layout", LayoutFitContent),
	}
	return newGroupInPlane(g, objs), nil
}
