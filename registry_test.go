package easel

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
)

// countingLoader serves a blank image and counts requests.
type countingLoader struct{ calls atomic.Int32 }

func (l *countingLoader) Fetch(context.Context, string) ([]byte, error) {
	l.calls.Add(1)
	return nil, nil
}

func (l *countingLoader) LoadImage(context.Context, string) (image.Image, error) {
	l.calls.Add(1)
	return image.NewNRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestReviveAllRejectsBeforeLoading(t *testing.T) {
	l := &countingLoader{}
	rv := &Reviver{Loader: l}
	items := []any{
		map[string]any{"type": "image", "src": "a.png", "width": 4.0, "height": 4.0},
		map[string]any{"type": "image", "src": "b.png", "width": 4.0, "height": 4.0},
		42.0,
	}
	objs, err := rv.ReviveAll(context.Background(), items)
	if !errors.Is(err, ErrInvalidScene) {
		t.Fatalf("ReviveAll() error = %v, want ErrInvalidScene", err)
	}
	if objs != nil {
		t.Errorf("ReviveAll() = %v, want nil", objs)
	}
	if n := l.calls.Load(); n != 0 {
		t.Errorf("loader called %d times for an invalid list, want 0", n)
	}
}

func TestReviveAllKeepsOrder(t *testing.T) {
	l := &countingLoader{}
	rv := &Reviver{Loader: l, Concurrency: 2}
	items := []any{
		map[string]any{"type": "rect", "left": 1.0},
		map[string]any{"type": "image", "src": "a.png", "left": 2.0},
		map[string]any{"type": "circle", "left": 3.0},
	}
	objs, err := rv.ReviveAll(context.Background(), items)
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 3 {
		t.Fatalf("len = %d, want 3", len(objs))
	}
	for i, want := range []string{"rect", "image", "circle"} {
		if got := objs[i].Type(); got != want {
			t.Errorf("objs[%d].Type() = %q, want %q", i, got, want)
		}
		if objs[i].Left != float64(i+1) {
			t.Errorf("objs[%d].Left = %v, want %v", i, objs[i].Left, i+1)
		}
	}
	if n := l.calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}
