package easel

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// captureLogs routes the package logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func expectPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, substr) {
			t.Errorf("panic = %v, want containing %q", r, substr)
		}
	}()
	fn()
}

func TestDebugCheckDisposed(t *testing.T) {
	o := NewRect(0, 0, 1, 1)
	debugCheckDisposed(o, "Add")
	o.dispose()
	expectPanic(t, "Add on disposed rect", func() { debugCheckDisposed(o, "Add") })
}

func TestDebugCanvasRejectsDisposedObject(t *testing.T) {
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{Debug: true})
	defer c.Dispose()
	o := NewRect(0, 0, 1, 1)
	o.dispose()
	expectPanic(t, "disposed", func() { c.Add(o) })
}

func TestDebugChildCountWarning(t *testing.T) {
	buf := captureLogs(t)
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{Debug: true})
	defer c.Dispose()
	g := NewGroup()
	c.Add(g)

	objs := make([]*Object, debugMaxChildCount)
	for i := range objs {
		objs[i] = NewRect(0, 0, 1, 1)
	}
	GroupOf(g).Add(g, objs...)
	if strings.Contains(buf.String(), "child count exceeds") {
		t.Fatal("warned at the threshold")
	}
	GroupOf(g).Add(g, NewRect(0, 0, 1, 1))
	if !strings.Contains(buf.String(), "child count exceeds") {
		t.Errorf("no warning past the threshold; log:\n%s", buf)
	}
}

func TestDebugGroupDepthWarning(t *testing.T) {
	buf := captureLogs(t)
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{Debug: true})
	defer c.Dispose()

	inner := NewRect(0, 0, 1, 1)
	inner.Fill = Color("red")
	g := inner
	for range debugMaxGroupDepth {
		g = NewGroup(g)
	}
	c.Add(g)
	c.RenderAll()
	if !strings.Contains(buf.String(), "group depth exceeds") {
		t.Errorf("no depth warning; log:\n%s", buf)
	}
}

func TestDebugRenderTiming(t *testing.T) {
	buf := captureLogs(t)
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{Debug: true})
	defer c.Dispose()
	c.Add(NewRect(0, 0, 5, 5))
	c.RenderAll()
	out := buf.String()
	for _, want := range []string{"msg=render", "painted=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("timing log missing %q:\n%s", want, out)
		}
	}
}

func TestNoDebugNoTiming(t *testing.T) {
	buf := captureLogs(t)
	c := NewStaticCanvas(10, 10, StaticCanvasOptions{})
	defer c.Dispose()
	c.RenderAll()
	if strings.Contains(buf.String(), "msg=render ") {
		t.Errorf("timing logged without debug:\n%s", buf)
	}
}
