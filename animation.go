package easel

import (
	"fmt"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates numeric properties of an Object simultaneously. Call
// Update(dt) each frame, or let Animate drive it from a frame queue. If the
// target is disposed the group stops immediately.
type TweenGroup struct {
	tweens []*gween.Tween
	fields []*float64
	target *Object
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values to the
// target. Done is set once every tween finished.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}
	allDone := true
	for i, tw := range g.tweens {
		val, finished := tw.Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	if g.target != nil {
		g.target.SetCoords()
	}
}

// animatableField returns the address of the named numeric property.
func animatableField(o *Object, name string) *float64 {
	switch name {
	case "left":
		return &o.Left
	case "top":
		return &o.Top
	case "width":
		return &o.Width
	case "height":
		return &o.Height
	case "scaleX":
		return &o.ScaleX
	case "scaleY":
		return &o.ScaleY
	case "skewX":
		return &o.SkewX
	case "skewY":
		return &o.SkewY
	case "angle":
		return &o.Angle
	case "opacity":
		return &o.Opacity
	case "strokeWidth":
		return &o.StrokeWidth
	}
	return nil
}

// NewTweenGroup tweens each property named in to from its current value.
// Known properties are left, top, width, height, scaleX, scaleY, skewX,
// skewY, angle, opacity and strokeWidth.
func NewTweenGroup(o *Object, to map[string]float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	if fn == nil {
		fn = ease.Linear
	}
	names := make([]string, 0, len(to))
	for k := range to {
		names = append(names, k)
	}
	sort.Strings(names)
	g := &TweenGroup{target: o}
	for _, k := range names {
		f := animatableField(o, k)
		if f == nil {
			return nil, fmt.Errorf("animate %s: unknown property %q", o.Type(), k)
		}
		g.tweens = append(g.tweens, gween.New(float32(*f), float32(to[k]), duration, fn))
		g.fields = append(g.fields, f)
	}
	return g, nil
}

// TweenPosition animates Left and Top.
func TweenPosition(o *Object, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTweenGroup(o, map[string]float64{"left": toX, "top": toY}, duration, fn)
	return g
}

// TweenScale animates ScaleX and ScaleY.
func TweenScale(o *Object, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTweenGroup(o, map[string]float64{"scaleX": toSX, "scaleY": toSY}, duration, fn)
	return g
}

// TweenOpacity animates Opacity.
func TweenOpacity(o *Object, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTweenGroup(o, map[string]float64{"opacity": to}, duration, fn)
	return g
}

// TweenAngle animates Angle.
func TweenAngle(o *Object, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, _ := NewTweenGroup(o, map[string]float64{"angle": to}, duration, fn)
	return g
}

// AnimateOptions configures Animate.
type AnimateOptions struct {
	// To maps property names to their final values.
	To map[string]float64
	// Duration in seconds. Zero means 0.5.
	Duration float32
	// Easing defaults to ease.InSine.
	Easing ease.TweenFunc
	// OnChange runs after every frame's update.
	OnChange func()
	// OnComplete runs once when the animation finishes.
	OnComplete func()
	// AbortWhen stops the animation early when it returns true.
	AbortWhen func() bool
}

// Animate tweens properties of an object attached to the canvas, as a
// repeating task on the frame queue. Each frame requests a render. Stop
// the returned token to cancel.
func (c *StaticCanvas) Animate(o *Object, opts AnimateOptions) (*StopToken, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	d := opts.Duration
	if d <= 0 {
		d = 0.5
	}
	fn := opts.Easing
	if fn == nil {
		fn = ease.InSine
	}
	g, err := NewTweenGroup(o, opts.To, d, fn)
	if err != nil {
		return nil, err
	}
	return c.frames.Repeat(func(dt float64) bool {
		if c.disposed || (opts.AbortWhen != nil && opts.AbortWhen()) {
			return false
		}
		g.Update(float32(dt))
		if opts.OnChange != nil {
			opts.OnChange()
		}
		c.RequestRenderAll()
		if g.Done && opts.OnComplete != nil {
			opts.OnComplete()
		}
		return !g.Done
	}), nil
}
