package easel

import (
	"slices"
	"sync"
	"sync/atomic"
)

// FrameCallback runs once on the next frame. dt is the time since the
// previous frame in seconds.
type FrameCallback func(dt float64)

// FrameHandle identifies a requested frame callback.
type FrameHandle uint64

// StopToken ends a repeating task. Stop may be called from any goroutine.
type StopToken struct {
	stopped atomic.Bool
}

// Stop ends the task before its next run.
func (t *StopToken) Stop() {
	if t != nil {
		t.stopped.Store(true)
	}
}

// Stopped reports whether Stop was called or the task finished.
func (t *StopToken) Stopped() bool { return t == nil || t.stopped.Load() }

type frameEntry struct {
	id   FrameHandle
	fn   FrameCallback
	done bool
}

type repeatTask struct {
	fn   func(dt float64) bool
	stop *StopToken
}

// FrameQueue is the frame scheduler a canvas renders on. The host calls Tick
// once per display refresh; everything else runs from inside Tick on the
// owner's goroutine. Post is the only method safe to call from other
// goroutines.
type FrameQueue struct {
	frames []frameEntry
	// running is the batch of the Tick in progress.
	running []frameEntry
	repeats []repeatTask
	nextID  FrameHandle

	mu     sync.Mutex
	posted []func()

	ticks uint64
}

// NewFrameQueue returns an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// RequestFrame schedules fn for the next Tick. Callbacks requested while a
// Tick runs wait for the following one.
func (q *FrameQueue) RequestFrame(fn FrameCallback) FrameHandle {
	q.nextID++
	q.frames = append(q.frames, frameEntry{id: q.nextID, fn: fn})
	return q.nextID
}

// Cancel removes a pending frame callback, including one due later in the
// Tick that is running. It reports whether the callback was still pending.
func (q *FrameQueue) Cancel(h FrameHandle) bool {
	for i, f := range q.frames {
		if f.id == h {
			q.frames = slices.Delete(q.frames, i, i+1)
			return true
		}
	}
	for i := range q.running {
		if f := &q.running[i]; f.id == h && !f.done {
			f.done = true
			return true
		}
	}
	return false
}

// Repeat runs fn every Tick until it returns false or the returned token is
// stopped.
func (q *FrameQueue) Repeat(fn func(dt float64) bool) *StopToken {
	tok := &StopToken{}
	q.repeats = append(q.repeats, repeatTask{fn: fn, stop: tok})
	return tok
}

// Post queues fn to run at the start of the next Tick. It is safe for
// concurrent use.
func (q *FrameQueue) Post(fn func()) {
	q.mu.Lock()
	q.posted = append(q.posted, fn)
	q.mu.Unlock()
}

// Pending returns the number of frame callbacks and live repeating tasks.
func (q *FrameQueue) Pending() int {
	n := len(q.frames)
	for _, r := range q.repeats {
		if !r.stop.Stopped() {
			n++
		}
	}
	return n
}

// Ticks returns how many times Tick has run.
func (q *FrameQueue) Ticks() uint64 { return q.ticks }

// Tick runs posted functions, then the frame callbacks requested before this
// call, then the repeating tasks.
func (q *FrameQueue) Tick(dt float64) {
	q.ticks++
	q.mu.Lock()
	posted := q.posted
	q.posted = nil
	q.mu.Unlock()
	for _, fn := range posted {
		fn()
	}

	q.running = q.frames
	q.frames = nil
	for i := range q.running {
		f := &q.running[i]
		if f.done {
			continue
		}
		f.done = true
		f.fn(dt)
	}
	q.running = nil

	repeats := q.repeats
	q.repeats = nil
	kept := repeats[:0]
	for _, r := range repeats {
		if r.stop.Stopped() {
			continue
		}
		if !r.fn(dt) {
			r.stop.Stop()
			continue
		}
		kept = append(kept, r)
	}
	// tasks added during this tick were appended to q.repeats
	q.repeats = append(kept, q.repeats...)
}

// Flush ticks until no frame callbacks remain or max ticks have run. Tests
// and headless tools use it to drain pending renders.
func (q *FrameQueue) Flush(max int) {
	for i := 0; i < max && (len(q.frames) > 0 || q.hasPosted()); i++ {
		q.Tick(0)
	}
}

func (q *FrameQueue) hasPosted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.posted) > 0
}
