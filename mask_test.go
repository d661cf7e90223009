package easel

import (
	"testing"

	"github.com/gogpu/gg"
)

func TestCompositeOps(t *testing.T) {
	opaqueRed := []uint8{255, 0, 0, 255}
	halfBlue := []uint8{0, 0, 128, 128}
	clear := []uint8{0, 0, 0, 0}

	tests := []struct {
		op       string
		dst, src []uint8
		want     [4]uint8
	}{
		{CompositeSourceOver, opaqueRed, halfBlue, [4]uint8{127, 0, 128, 255}},
		{CompositeSourceOver, clear, halfBlue, [4]uint8{0, 0, 128, 128}},
		{CompositeDestinationIn, opaqueRed, halfBlue, [4]uint8{128, 0, 0, 128}},
		{CompositeDestinationIn, opaqueRed, clear, [4]uint8{0, 0, 0, 0}},
		{CompositeDestinationOut, opaqueRed, clear, [4]uint8{255, 0, 0, 255}},
		{CompositeDestinationOut, opaqueRed, opaqueRed, [4]uint8{0, 0, 0, 0}},
		{CompositeSourceAtop, clear, halfBlue, [4]uint8{0, 0, 0, 0}},
		{CompositeSourceAtop, opaqueRed, halfBlue, [4]uint8{127, 0, 128, 255}},
		{CompositeLighter, opaqueRed, halfBlue, [4]uint8{255, 0, 128, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			dst := append([]uint8(nil), tt.dst...)
			compositeFor(tt.op)(dst, tt.src)
			if [4]uint8(dst) != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.op, tt.dst, tt.src, dst, tt.want)
			}
		})
	}
}

func TestBlendModeFor(t *testing.T) {
	for _, op := range []string{"", CompositeSourceOver, CompositeMultiply, CompositeScreen, CompositeOverlay} {
		if _, ok := blendModeFor(op); !ok {
			t.Errorf("blendModeFor(%q) unsupported", op)
		}
	}
	if _, ok := blendModeFor(CompositeDestinationOut); ok {
		t.Error("destination-out should be handled on pixmaps")
	}
	if compositeFor("bogus") == nil {
		t.Error("unknown op has no fallback")
	}
}

func filledContext(w, h int, fill func(dc *gg.Context)) *gg.Context {
	dc := gg.NewContext(w, h)
	fill(dc)
	return dc
}

func TestMaskWithClip(t *testing.T) {
	for _, inverted := range []bool{false, true} {
		dst := filledContext(10, 10, func(dc *gg.Context) {
			dc.SetRGBA(1, 0, 0, 1)
			dc.DrawRectangle(0, 0, 10, 10)
			dc.Fill()
		})
		mask := filledContext(10, 10, func(dc *gg.Context) {
			dc.SetRGBA(0, 0, 0, 1)
			dc.DrawRectangle(0, 0, 5, 10)
			dc.Fill()
		})
		maskWithClip(dst.ResizeTarget(), mask.ResizeTarget(), inverted)
		img := dst.Image()
		left, right := rgbaAt(img, 2, 5), rgbaAt(img, 7, 5)
		kept, dropped := left, right
		if inverted {
			kept, dropped = right, left
		}
		if !isRed(kept) {
			t.Errorf("inverted=%v: masked-in pixel = %v, want red", inverted, kept)
		}
		if dropped[3] != 0 {
			t.Errorf("inverted=%v: masked-out pixel = %v, want transparent", inverted, dropped)
		}
		dst.Close()
		mask.Close()
	}
}
