package easel

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"math"
)

// Version is written into every serialized scene.
const Version = "1.0.0"

// NumFractionDigits is the precision serialized numbers are rounded to.
var NumFractionDigits = 4

// Props is a decoded JSON object: the property bag used to revive objects.
type Props map[string]any

// Str returns the string at key, or def.
func (p Props) Str(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Num returns the number at key, or def. Numeric strings are not accepted.
func (p Props) Num(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Bool returns the bool at key, or def.
func (p Props) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (p Props) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Matrix returns a 6-number array at key.
func (p Props) Matrix(key string) (Matrix, bool) {
	arr, ok := p[key].([]any)
	if !ok || len(arr) != 6 {
		return Matrix{}, false
	}
	var m Matrix
	for i, v := range arr {
		f, ok := v.(float64)
		if !ok {
			return Matrix{}, false
		}
		m[i] = f
	}
	return m, true
}

// Floats returns a number array at key.
func (p Props) Floats(key string) []float64 {
	arr, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// Object returns the nested object at key.
func (p Props) Object(key string) (Props, bool) {
	m, ok := p[key].(map[string]any)
	return Props(m), ok
}

// SerializeOptions controls object serialization.
type SerializeOptions struct {
	// Dataless replaces heavy embedded data with references.
	Dataless bool
	// IncludeDefaultValues keeps properties equal to their defaults.
	IncludeDefaultValues bool
	// PropertiesToInclude names extra keys copied from Object.Extra.
	PropertiesToInclude []string
}

// round rounds v to NumFractionDigits.
func round(v float64) float64 {
	p := math.Pow(10, float64(NumFractionDigits))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

func matrixValue(m Matrix) []any {
	out := make([]any, 6)
	for i, v := range m {
		out[i] = round(v)
	}
	return out
}

func floatsValue(fs []float64) []any {
	if fs == nil {
		return nil
	}
	out := make([]any, len(fs))
	for i, v := range fs {
		out[i] = round(v)
	}
	return out
}

// encodeDataURL encodes img as a PNG data URL.
func encodeDataURL(img image.Image) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger().Warn("encode data url", "error", err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// originName returns the keyword for an origin fraction when one matches.
func originName(v float64, horizontal bool) any {
	switch v {
	case 0:
		if horizontal {
			return "left"
		}
		return "top"
	case 0.5:
		return "center"
	case 1:
		if horizontal {
			return "right"
		}
		return "bottom"
	}
	return round(v)
}

// parseOrigin accepts "left", "center", "right", "top", "bottom" or a fraction.
func parseOrigin(v any, def float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		switch t {
		case "left", "top":
			return 0
		case "center":
			return 0.5
		case "right", "bottom":
			return 1
		}
	}
	return def
}
