package easel

import (
	"context"
	"strings"
	"testing"
)

func TestNewTextDimensions(t *testing.T) {
	o := NewText("hello", 5, 6)
	if o.Width <= 0 {
		t.Errorf("Width = %v, want > 0", o.Width)
	}
	assertNear(t, "Height", o.Height, 40*1.16)
	if o.Type() != "text" {
		t.Errorf("Type() = %q, want text", o.Type())
	}

	tx := o.Shape().(*Text)
	w := o.Width
	tx.SetText(o, "hello\nhello world")
	if got := len(tx.Lines()); got != 2 {
		t.Fatalf("Lines() has %d entries, want 2", got)
	}
	assertNear(t, "Height", o.Height, 2*40*1.16)
	if o.Width <= w {
		t.Errorf("Width = %v, want wider than %v for the longer line", o.Width, w)
	}
}

func TestTextboxWraps(t *testing.T) {
	o := NewTextbox("the quick brown fox jumps over the lazy dog", 0, 0, 200)
	tx := o.Shape().(*Text)
	if o.Type() != "textbox" {
		t.Errorf("Type() = %q, want textbox", o.Type())
	}
	assertNear(t, "Width", o.Width, 200)
	lines := tx.Lines()
	if len(lines) < 2 {
		t.Fatalf("Lines() = %q, want the text wrapped", lines)
	}
	for _, l := range lines {
		if strings.Contains(l, " ") && tx.measure(o, l) > o.Width {
			t.Errorf("line %q is wider than the box", l)
		}
	}
	if got := strings.Join(lines, " "); got != tx.Text {
		t.Errorf("wrapped lines join to %q, want %q", got, tx.Text)
	}
}

func TestTextboxLongWord(t *testing.T) {
	o := NewTextbox("a supercalifragilisticexpialidocious b", 0, 0, 30)
	lines := o.Shape().(*Text).Lines()
	want := []string{"a", "supercalifragilisticexpialidocious", "b"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestTextboxMinWidth(t *testing.T) {
	o := NewTextbox("x", 0, 0, 5)
	assertNear(t, "Width", o.Width, 20)
}

func TestTextboxUsesResizeControls(t *testing.T) {
	o := NewTextbox("abc", 0, 0, 100)
	for _, name := range []string{"ml", "mr"} {
		if c := o.Controls.Get(name); c == nil || c.ActionName != ActionResizing {
			t.Errorf("%s control does not resize", name)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	o := NewTextbox("line one\nline two", 10, 20, 150)
	tx := o.Shape().(*Text)
	tx.TextAlign = "center"
	tx.FontSize = 24
	tx.InitDimensions(o)

	objs, err := EnlivenObjects(context.Background(), []any{o.ToObject()})
	if err != nil {
		t.Fatal(err)
	}
	got := objs[0]
	if got.Type() != "textbox" {
		t.Fatalf("revived Type() = %q, want textbox", got.Type())
	}
	gt := got.Shape().(*Text)
	if gt.Text != tx.Text || gt.TextAlign != "center" || gt.FontSize != 24 {
		t.Errorf("revived text = %+v", gt)
	}
	assertNear(t, "Width", got.Width, 150)
}

func TestTextSVG(t *testing.T) {
	o := NewText("a < b", 0, 0)
	svg := o.Shape().(*Text).SVG(o)
	if !strings.Contains(svg, "a &lt; b") {
		t.Errorf("text not escaped: %s", svg)
	}
	if !strings.HasPrefix(svg, "<text") || !strings.HasSuffix(svg, "</text>") {
		t.Errorf("svg = %s", svg)
	}
}

func TestFontRegistryFallback(t *testing.T) {
	r := NewFontRegistry()
	if r.Face("NoSuchFamily", 12) == nil {
		t.Error("unknown family did not fall back")
	}
	if r.Face(FallbackFontFamily, 0) != nil {
		t.Error("zero size returned a face")
	}
	if _, ok := r.Path(FallbackFontFamily); ok {
		t.Error("embedded fallback reported a file path")
	}
	if err := r.RegisterData("Broken", []byte("not a font")); err == nil {
		t.Error("RegisterData accepted garbage")
	}
}
