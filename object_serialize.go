package easel

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// ToObject returns the object's serializable property map. extra names
// additional properties to include: interaction fields such as "selectable"
// or keys of Object.Extra.
func (o *Object) ToObject(extra ...string) map[string]any {
	return o.toObject(SerializeOptions{IncludeDefaultValues: true, PropertiesToInclude: extra})
}

// ToDatalessObject is ToObject with heavy data replaced by references:
// paths keep their source reference, images keep only non-data URLs.
func (o *Object) ToDatalessObject(extra ...string) map[string]any {
	return o.toObject(SerializeOptions{IncludeDefaultValues: true, Dataless: true, PropertiesToInclude: extra})
}

// ToJSON encodes ToObject.
func (o *Object) ToJSON(extra ...string) ([]byte, error) {
	return json.Marshal(o.ToObject(extra...))
}

// ObjectWith serializes o with explicit options.
func (o *Object) ObjectWith(opts SerializeOptions) map[string]any {
	return o.toObject(opts)
}

func (o *Object) toObject(opts SerializeOptions) map[string]any {
	m := o.commonProps(opts)
	m["type"] = o.Type()
	m["version"] = Version
	if o.Name != "" {
		m["name"] = o.Name
	}
	if cp := o.ClipPath; cp != nil && !cp.ExcludeFromExport {
		v := cp.toObject(opts)
		v["inverted"] = cp.Inverted
		v["absolutePositioned"] = cp.AbsolutePositioned
		m["clipPath"] = v
	}
	if o.shape != nil {
		for k, v := range o.shape.Props(o, opts) {
			m[k] = v
		}
	}
	for _, k := range opts.PropertiesToInclude {
		if v, ok := o.namedProp(k); ok {
			m[k] = v
		} else if v, ok := o.Extra[k]; ok {
			m[k] = v
		}
	}
	if !opts.IncludeDefaultValues {
		removeDefaultValues(m)
	}
	return m
}

// commonProps are the properties every object serializes.
func (o *Object) commonProps(opts SerializeOptions) map[string]any {
	var shadow any
	if o.Shadow != nil {
		shadow = o.Shadow.value()
	}
	var bg any
	if o.BackgroundColor != "" {
		bg = o.BackgroundColor
	}
	return map[string]any{
		"originX":                  originName(o.OriginX, true),
		"originY":                  originName(o.OriginY, false),
		"left":                     round(o.Left),
		"top":                      round(o.Top),
		"width":                    round(o.Width),
		"height":                   round(o.Height),
		"fill":                     paintValue(o.Fill, opts.Dataless),
		"stroke":                   paintValue(o.Stroke, opts.Dataless),
		"strokeWidth":              round(o.StrokeWidth),
		"strokeDashArray":          floatsValue(o.StrokeDashArray),
		"strokeLineCap":            o.StrokeLineCap,
		"strokeDashOffset":         round(o.StrokeDashOffset),
		"strokeLineJoin":           o.StrokeLineJoin,
		"strokeUniform":            o.StrokeUniform,
		"strokeMiterLimit":         round(o.StrokeMiterLimit),
		"scaleX":                   round(o.ScaleX),
		"scaleY":                   round(o.ScaleY),
		"angle":                    round(o.Angle),
		"flipX":                    o.FlipX,
		"flipY":                    o.FlipY,
		"opacity":                  round(o.Opacity),
		"shadow":                   shadow,
		"visible":                  o.Visible,
		"backgroundColor":          bg,
		"fillRule":                 o.FillRule,
		"paintFirst":               o.PaintFirst,
		"globalCompositeOperation": o.GlobalCompositeOperation,
		"skewX":                    round(o.SkewX),
		"skewY":                    round(o.SkewY),
	}
}

// namedProp returns the interaction fields that can be opted into
// serialization by name.
func (o *Object) namedProp(k string) (any, bool) {
	switch k {
	case "selectable":
		return o.Selectable, true
	case "evented":
		return o.Evented, true
	case "hasControls":
		return o.HasControls, true
	case "hasBorders":
		return o.HasBorders, true
	case "lockMovementX":
		return o.LockMovementX, true
	case "lockMovementY":
		return o.LockMovementY, true
	case "lockRotation":
		return o.LockRotation, true
	case "lockScalingX":
		return o.LockScalingX, true
	case "lockScalingY":
		return o.LockScalingY, true
	case "lockSkewingX":
		return o.LockSkewingX, true
	case "lockSkewingY":
		return o.LockSkewingY, true
	case "lockScalingFlip":
		return o.LockScalingFlip, true
	case "perPixelTargetFind":
		return o.PerPixelTargetFind, true
	case "excludeFromExport":
		return o.ExcludeFromExport, true
	case "padding":
		return round(o.Padding), true
	case "snapAngle":
		return round(o.SnapAngle), true
	case "snapThreshold":
		return round(o.SnapThreshold), true
	case "selectionBackgroundColor":
		return o.SelectionBackgroundColor, true
	case "hoverCursor":
		return o.HoverCursor, true
	case "moveCursor":
		return o.MoveCursor, true
	}
	return nil, false
}

var defaultProps = sync.OnceValue(func() map[string]any {
	o := &Object{}
	objectDefaults(o)
	return o.commonProps(SerializeOptions{})
})

// removeDefaultValues drops properties equal to a fresh object's. left, top
// and type are always kept.
func removeDefaultValues(m map[string]any) {
	for k, def := range defaultProps() {
		if k == "left" || k == "top" {
			continue
		}
		if v, ok := m[k]; ok && reflect.DeepEqual(v, def) {
			delete(m, k)
		}
	}
}

// reviveCommon applies the common properties in p on top of o's current
// values. Clip paths are revived by the registry.
func reviveCommon(o *Object, p Props) error {
	o.Name = p.Str("name", o.Name)
	o.OriginX = parseOrigin(p["originX"], o.OriginX)
	o.OriginY = parseOrigin(p["originY"], o.OriginY)
	o.Left = p.Num("left", o.Left)
	o.Top = p.Num("top", o.Top)
	o.Width = p.Num("width", o.Width)
	o.Height = p.Num("height", o.Height)
	for _, k := range []string{"fill", "stroke"} {
		v, ok := p[k]
		if !ok {
			continue
		}
		paint, err := parsePaint(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if k == "fill" {
			o.Fill = paint
		} else {
			o.Stroke = paint
		}
	}
	o.StrokeWidth = p.Num("strokeWidth", o.StrokeWidth)
	if p.Has("strokeDashArray") {
		o.StrokeDashArray = p.Floats("strokeDashArray")
	}
	o.StrokeLineCap = p.Str("strokeLineCap", o.StrokeLineCap)
	o.StrokeDashOffset = p.Num("strokeDashOffset", o.StrokeDashOffset)
	o.StrokeLineJoin = p.Str("strokeLineJoin", o.StrokeLineJoin)
	o.StrokeUniform = p.Bool("strokeUniform", o.StrokeUniform)
	o.StrokeMiterLimit = p.Num("strokeMiterLimit", o.StrokeMiterLimit)
	o.ScaleX = p.Num("scaleX", o.ScaleX)
	o.ScaleY = p.Num("scaleY", o.ScaleY)
	o.Angle = p.Num("angle", o.Angle)
	o.FlipX = p.Bool("flipX", o.FlipX)
	o.FlipY = p.Bool("flipY", o.FlipY)
	o.Opacity = p.Num("opacity", o.Opacity)
	if v, ok := p["shadow"]; ok {
		o.Shadow = parseShadow(v)
	}
	o.Visible = p.Bool("visible", o.Visible)
	o.BackgroundColor = p.Str("backgroundColor", o.BackgroundColor)
	o.FillRule = p.Str("fillRule", o.FillRule)
	o.PaintFirst = p.Str("paintFirst", o.PaintFirst)
	o.GlobalCompositeOperation = p.Str("globalCompositeOperation", o.GlobalCompositeOperation)
	o.SkewX = p.Num("skewX", o.SkewX)
	o.SkewY = p.Num("skewY", o.SkewY)
	o.Inverted = p.Bool("inverted", o.Inverted)
	o.AbsolutePositioned = p.Bool("absolutePositioned", o.AbsolutePositioned)
	reviveNamedProps(o, p)
	return nil
}

func reviveNamedProps(o *Object, p Props) {
	bools := map[string]*bool{
		"selectable":         &o.Selectable,
		"evented":            &o.Evented,
		"hasControls":        &o.HasControls,
		"hasBorders":         &o.HasBorders,
		"lockMovementX":      &o.LockMovementX,
		"lockMovementY":      &o.LockMovementY,
		"lockRotation":       &o.LockRotation,
		"lockScalingX":       &o.LockScalingX,
		"lockScalingY":       &o.LockScalingY,
		"lockSkewingX":       &o.LockSkewingX,
		"lockSkewingY":       &o.LockSkewingY,
		"lockScalingFlip":    &o.LockScalingFlip,
		"perPixelTargetFind": &o.PerPixelTargetFind,
		"excludeFromExport":  &o.ExcludeFromExport,
	}
	for k, ptr := range bools {
		*ptr = p.Bool(k, *ptr)
	}
	o.Padding = p.Num("padding", o.Padding)
	o.SnapAngle = p.Num("snapAngle", o.SnapAngle)
	o.SnapThreshold = p.Num("snapThreshold", o.SnapThreshold)
	o.SelectionBackgroundColor = p.Str("selectionBackgroundColor", o.SelectionBackgroundColor)
	o.HoverCursor = p.Str("hoverCursor", o.HoverCursor)
	o.MoveCursor = p.Str("moveCursor", o.MoveCursor)
}

// knownKeys are consumed by revival; anything else lands in Object.Extra.
var knownKeys = map[string]bool{
	"type": true, "version": true, "name": true, "originX": true, "originY": true,
	"left": true, "top": true, "width": true, "height": true, "fill": true, "stroke": true,
	"strokeWidth": true, "strokeDashArray": true, "strokeLineCap": true, "strokeDashOffset": true,
	"strokeLineJoin": true, "strokeUniform": true, "strokeMiterLimit": true, "scaleX": true,
	"scaleY": true, "angle": true, "flipX": true, "flipY": true, "opacity": true, "shadow": true,
	"visible": true, "backgroundColor": true, "fillRule": true, "paintFirst": true,
	"globalCompositeOperation": true, "skewX": true, "skewY": true, "clipPath": true,
	"inverted": true, "absolutePositioned": true,
	// built-in shape keys
	"objects": true, "interactive": true, "subTargetCheck": true, "layout": true,
	"rx": true, "ry": true, "radius": true, "startAngle": true, "endAngle": true,
	"counterClockwise": true, "path": true, "sourcePath": true, "points": true,
	"src": true, "cropX": true, "cropY": true, "imageSmoothing": true, "text": true,
	"fontFamily": true, "fontSize": true, "fontWeight": true, "fontStyle": true,
	"textAlign": true, "lineHeight": true, "minWidth": true,
}

// reviveExtra keeps unrecognised keys in o.Extra, except those the shape
// consumed.
func reviveExtra(o *Object, p Props, shapeKeys map[string]any) {
	for k, v := range p {
		if knownKeys[k] {
			continue
		}
		if _, ok := shapeKeys[k]; ok {
			continue
		}
		if _, ok := o.namedProp(k); ok {
			continue
		}
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[k] = v
	}
}
