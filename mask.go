package easel

import (
	"github.com/gogpu/gg"
)

// Composite operations. The first four map to gg blend layers; the rest are
// applied directly to premultiplied pixmap bytes.
const (
	CompositeSourceOver     = "source-over"
	CompositeMultiply       = "multiply"
	CompositeScreen         = "screen"
	CompositeOverlay        = "overlay"
	CompositeDestinationIn  = "destination-in"
	CompositeDestinationOut = "destination-out"
	CompositeSourceAtop     = "source-atop"
	CompositeLighter        = "lighter"
)

// blendModeFor returns the gg blend mode for op, if gg supports it.
func blendModeFor(op string) (gg.BlendMode, bool) {
	switch op {
	case "", CompositeSourceOver:
		return gg.BlendNormal, true
	case CompositeMultiply:
		return gg.BlendMultiply, true
	case CompositeScreen:
		return gg.BlendScreen, true
	case CompositeOverlay:
		return gg.BlendOverlay, true
	}
	return gg.BlendNormal, false
}

// compositeFunc combines one premultiplied source pixel into a destination
// pixel. Values are in [0, 255].
type compositeFunc func(dst, src []uint8)

func compositeFor(op string) compositeFunc {
	switch op {
	case CompositeDestinationIn:
		return destinationIn
	case CompositeDestinationOut:
		return destinationOut
	case CompositeSourceAtop:
		return sourceAtop
	case CompositeLighter:
		return lighter
	}
	return sourceOver
}

// compositePixmap applies fn pixel by pixel. Both pixmaps must share a size;
// extra pixels in either are ignored.
func compositePixmap(dst, src *gg.Pixmap, fn compositeFunc) {
	d, s := dst.Data(), src.Data()
	n := min(len(d), len(s))
	for i := 0; i+3 < n; i += 4 {
		fn(d[i:i+4], s[i:i+4])
	}
}

func mul255(a, b uint8) uint8 {
	v := uint32(a)*uint32(b) + 128
	return uint8((v + v>>8) >> 8)
}

func sourceOver(dst, src []uint8) {
	inv := 255 - src[3]
	for c := range 4 {
		dst[c] = src[c] + mul255(dst[c], inv)
	}
}

func destinationIn(dst, src []uint8) {
	a := src[3]
	for c := range 4 {
		dst[c] = mul255(dst[c], a)
	}
}

func destinationOut(dst, src []uint8) {
	a := 255 - src[3]
	for c := range 4 {
		dst[c] = mul255(dst[c], a)
	}
}

func sourceAtop(dst, src []uint8) {
	da := dst[3]
	inv := 255 - src[3]
	for c := range 3 {
		dst[c] = mul255(src[c], da) + mul255(dst[c], inv)
	}
}

func lighter(dst, src []uint8) {
	for c := range 4 {
		v := uint16(dst[c]) + uint16(src[c])
		if v > 255 {
			v = 255
		}
		dst[c] = uint8(v)
	}
}

// maskWithClip keeps the pixels of dst under the opaque parts of mask, or
// outside them when inverted.
func maskWithClip(dst, mask *gg.Pixmap, inverted bool) {
	if inverted {
		compositePixmap(dst, mask, destinationOut)
		return
	}
	compositePixmap(dst, mask, destinationIn)
}

// scratchLike returns a transparent context the size of dc carrying dc's
// transform.
func scratchLike(dc *gg.Context) *gg.Context {
	s := gg.NewContext(dc.Width(), dc.Height())
	s.SetTransform(dc.GetTransform())
	return s
}
