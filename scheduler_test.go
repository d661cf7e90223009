package easel

import (
	"sync"
	"testing"
)

func TestRequestFrameRunsOnce(t *testing.T) {
	q := NewFrameQueue()
	var runs int
	var gotDT float64
	q.RequestFrame(func(dt float64) { runs++; gotDT = dt })
	if q.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", q.Pending())
	}
	q.Tick(0.016)
	q.Tick(0.016)
	if runs != 1 {
		t.Errorf("callback ran %d times, want 1", runs)
	}
	if gotDT != 0.016 {
		t.Errorf("dt = %v, want 0.016", gotDT)
	}
	if q.Ticks() != 2 {
		t.Errorf("Ticks() = %d, want 2", q.Ticks())
	}
}

func TestRequestFrameDuringTick(t *testing.T) {
	q := NewFrameQueue()
	var order []int
	q.RequestFrame(func(float64) {
		order = append(order, 1)
		q.RequestFrame(func(float64) { order = append(order, 2) })
	})
	q.Tick(0)
	if len(order) != 1 {
		t.Fatalf("nested request ran in the same tick: %v", order)
	}
	q.Tick(0)
	if len(order) != 2 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestCancelFrame(t *testing.T) {
	q := NewFrameQueue()
	var ran bool
	h := q.RequestFrame(func(float64) { ran = true })
	if !q.Cancel(h) {
		t.Fatal("Cancel() = false for a pending callback")
	}
	if q.Cancel(h) {
		t.Error("Cancel() = true twice")
	}
	q.Tick(0)
	if ran {
		t.Error("cancelled callback ran")
	}
}

func TestRepeatUntilFalse(t *testing.T) {
	q := NewFrameQueue()
	var n int
	tok := q.Repeat(func(float64) bool {
		n++
		return n < 3
	})
	for range 5 {
		q.Tick(0)
	}
	if n != 3 {
		t.Errorf("task ran %d times, want 3", n)
	}
	if !tok.Stopped() {
		t.Error("token not stopped after the task returned false")
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", q.Pending())
	}
}

func TestRepeatStop(t *testing.T) {
	q := NewFrameQueue()
	var n int
	tok := q.Repeat(func(float64) bool { n++; return true })
	q.Tick(0)
	tok.Stop()
	q.Tick(0)
	if n != 1 {
		t.Errorf("task ran %d times, want 1", n)
	}
	var nilTok *StopToken
	nilTok.Stop()
	if !nilTok.Stopped() {
		t.Error("nil token should report stopped")
	}
}

func TestPostFromGoroutines(t *testing.T) {
	q := NewFrameQueue()
	var n int
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() { n++ })
		}()
	}
	wg.Wait()
	q.Tick(0)
	if n != 20 {
		t.Errorf("posted functions ran %d times, want 20", n)
	}
}

func TestPostRunsBeforeFrames(t *testing.T) {
	q := NewFrameQueue()
	var order []string
	q.RequestFrame(func(float64) { order = append(order, "frame") })
	q.Post(func() { order = append(order, "post") })
	q.Repeat(func(float64) bool { order = append(order, "repeat"); return false })
	q.Tick(0)
	want := []string{"post", "frame", "repeat"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestFlush(t *testing.T) {
	q := NewFrameQueue()
	var depth int
	var chain func(float64)
	chain = func(float64) {
		depth++
		if depth < 4 {
			q.RequestFrame(chain)
		}
	}
	q.RequestFrame(chain)
	q.Flush(10)
	if depth != 4 {
		t.Errorf("depth = %d, want 4", depth)
	}
	if q.Ticks() != 4 {
		t.Errorf("Ticks() = %d, want 4", q.Ticks())
	}

	// Flush stops at max
	var forever func(float64)
	forever = func(float64) { q.RequestFrame(forever) }
	q.RequestFrame(forever)
	before := q.Ticks()
	q.Flush(3)
	if q.Ticks()-before != 3 {
		t.Errorf("Flush(3) ran %d ticks, want 3", q.Ticks()-before)
	}
}

func TestCancelLaterFrameInSameTick(t *testing.T) {
	q := NewFrameQueue()
	var ran bool
	var later FrameHandle
	var cancelled bool
	q.RequestFrame(func(float64) { cancelled = q.Cancel(later) })
	later = q.RequestFrame(func(float64) { ran = true })
	q.Tick(0)
	if !cancelled {
		t.Error("Cancel() = false for a callback still due in this tick")
	}
	if ran {
		t.Error("callback cancelled earlier in the tick still ran")
	}

	// a callback that already ran cannot be cancelled
	var self FrameHandle
	var got bool
	self = q.RequestFrame(func(float64) { got = q.Cancel(self) })
	q.Tick(0)
	if got {
		t.Error("Cancel() = true for the running callback")
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", q.Pending())
	}
}

func TestCancelRenderFromEarlierFrame(t *testing.T) {
	c := NewStaticCanvas(20, 20, StaticCanvasOptions{})
	defer c.Dispose()
	c.Add(NewRect(0, 0, 5, 5))
	c.Frames().Flush(5)
	before := c.RenderCount()

	c.Frames().RequestFrame(func(float64) { c.CancelRequestedRender() })
	c.RequestRenderAll()
	c.Frames().Tick(0)
	if n := c.RenderCount() - before; n != 0 {
		t.Errorf("rendered %d times after the request was cancelled, want 0", n)
	}
}
