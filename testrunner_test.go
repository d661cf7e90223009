package easel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "click", "x": 100, "y": 200},
			{"action": "wait", "frames": 3},
			{"action": "screenshot", "label": "after-click"}
		]
	}`)

	runner, err := LoadScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
}

func TestLoadScript_Invalid(t *testing.T) {
	if _, err := LoadScript([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := LoadScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestRunnerStep_Click(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	o := NewRect(0, 0, 100, 100)
	c.Add(o)

	runner, err := LoadScript([]byte(`{"steps": [{"action": "click", "x": 50, "y": 50}]}`))
	if err != nil {
		t.Fatal(err)
	}

	// the click queues a press and a release
	if err := runner.Step(c); err != nil {
		t.Fatal(err)
	}
	if n := c.PendingInjected(); n != 2 {
		t.Fatalf("expected 2 queued events, got %d", n)
	}
	if runner.Done() {
		t.Error("runner should not be done while inject queue has events")
	}

	runner.Step(c)
	runner.Step(c)
	runner.Step(c)
	if !runner.Done() {
		t.Error("runner should be done after all steps executed and queue drained")
	}
	if c.ActiveObject() != o {
		t.Error("click step did not select the object")
	}
}

func TestRunnerStep_Wait(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	runner, err := LoadScript([]byte(`{"steps": [{"action": "wait", "frames": 3}]}`))
	if err != nil {
		t.Fatal(err)
	}
	var frames int
	for !runner.Done() && frames < 10 {
		runner.Step(c)
		frames++
	}
	if frames != 4 {
		t.Errorf("wait of 3 frames finished after %d steps, want 4", frames)
	}
}

func TestRunnerRun(t *testing.T) {
	c := newTestCanvas(t, 200, 200)
	a := NewRect(10, 10, 40, 40)
	b := NewRect(100, 100, 40, 40)
	c.Add(a, b)

	out := filepath.Join(t.TempDir(), "scene.png")
	script := `{"steps": [
		{"action": "drag", "fromX": 20, "fromY": 20, "toX": 60, "toY": 20, "frames": 4},
		{"action": "select", "index": 1},
		{"action": "key", "keys": ["shift"]},
		{"action": "click", "x": 50, "y": 20},
		{"action": "screenshot", "label": "selected"},
		{"action": "export", "label": "scene"},
		{"action": "export", "format": "png", "path": "` + filepath.ToSlash(out) + `"}
	]}`
	runner, err := LoadScript([]byte(script))
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(c, 100); err != nil {
		t.Fatal(err)
	}

	if a.Left <= 10 {
		t.Errorf("drag did not move a: Left = %v", a.Left)
	}
	// members keep stacking order
	assertObjects(t, "ActiveObjects", c.ActiveObjects(), []*Object{a, b})
	if len(runner.Shots) != 1 {
		t.Fatalf("Shots = %v, want one file", runner.Shots)
	}
	if _, err := os.Stat(runner.Shots[0]); err != nil {
		t.Errorf("screenshot missing: %v", err)
	}
	var scene map[string]any
	if err := json.Unmarshal(runner.Exports["scene"], &scene); err != nil {
		t.Fatalf("json export does not parse: %v", err)
	}
	if objs, _ := scene["objects"].([]any); len(objs) != 2 {
		t.Errorf("exported %d objects, want 2", len(objs))
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("png export not written: %v", err)
	}
}

func TestRunnerErrors(t *testing.T) {
	tests := []struct {
		name, script, want string
	}{
		{"unknown action", `{"steps": [{"action": "jump"}]}`, "unknown action"},
		{"bad modifier", `{"steps": [{"action": "key", "keys": ["hyper"]}]}`, "unknown modifier"},
		{"bad index", `{"steps": [{"action": "select", "index": 5}]}`, "no object at index 5"},
		{"bad format", `{"steps": [{"action": "export", "format": "gif"}]}`, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, 10, 10)
			runner, err := LoadScript([]byte(tt.script))
			if err != nil {
				t.Fatal(err)
			}
			err = runner.Run(c, 10)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRunnerFrameLimit(t *testing.T) {
	c := newTestCanvas(t, 10, 10)
	runner, _ := LoadScript([]byte(`{"steps": [{"action": "wait", "frames": 50}]}`))
	if err := runner.Run(c, 5); err == nil {
		t.Error("expected an error when the frame budget runs out")
	}
}

func TestParseModifiers(t *testing.T) {
	tests := []struct {
		keys []string
		want KeyModifiers
	}{
		{nil, 0},
		{[]string{"shift"}, ModShift},
		{[]string{"Ctrl", "alt"}, ModCtrl | ModAlt},
		{[]string{"cmd", "option", "control"}, ModMeta | ModAlt | ModCtrl},
	}
	for _, tt := range tests {
		got, err := ParseModifiers(tt.keys)
		if err != nil {
			t.Errorf("ParseModifiers(%v) error: %v", tt.keys, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseModifiers(%v) = %v, want %v", tt.keys, got, tt.want)
		}
	}
}
