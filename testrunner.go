package easel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// scriptStep is a single action in an interaction script.
type scriptStep struct {
	Action string   `json:"action"`
	Label  string   `json:"label,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	Frames int      `json:"frames,omitempty"`
	Keys   []string `json:"keys,omitempty"`
	Index  *int     `json:"index,omitempty"`
	Format string   `json:"format,omitempty"`
	Path   string   `json:"path,omitempty"`
}

// script is the top-level JSON structure of an interaction script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays injected input, selection changes, screenshots and
// exports across frames. The host calls Step once per frame.
type ScriptRunner struct {
	// Shots lists the screenshot files written so far.
	Shots []string
	// Exports holds the output of export steps by label.
	Exports map[string][]byte

	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON interaction script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	return &ScriptRunner{steps: s.Steps, Exports: make(map[string][]byte)}, nil
}

// Done reports whether every step has run and its input was delivered.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the script by one frame: it delivers one queued synthetic
// event, counts down a wait, or runs the next step.
func (r *ScriptRunner) Step(c *Canvas) error {
	if r.done {
		return nil
	}
	if c.ProcessInjected() {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++
	var err error
	switch st.Action {
	case "screenshot":
		c.RenderAll()
		var path string
		if path, err = c.Screenshot(st.Label); err == nil {
			r.Shots = append(r.Shots, path)
		}
	case "click":
		c.InjectClick(st.X, st.Y)
	case "dblclick":
		c.InjectDoubleClick(st.X, st.Y)
	case "press":
		c.InjectPress(st.X, st.Y)
	case "move":
		c.InjectMove(st.X, st.Y)
	case "release":
		c.InjectRelease(st.X, st.Y)
	case "drag":
		c.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "key":
		var mods KeyModifiers
		if mods, err = ParseModifiers(st.Keys); err == nil {
			c.InjectModifiers(mods)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "select":
		err = r.selectStep(c, st)
	case "export":
		err = r.export(c, st)
	default:
		err = fmt.Errorf("unknown action %q", st.Action)
	}
	if err != nil {
		return fmt.Errorf("step %d (%s): %w", r.cursor, st.Action, err)
	}
	if r.cursor >= len(r.steps) && r.waitCount == 0 && c.PendingInjected() == 0 {
		r.done = true
	}
	return nil
}

// Run steps the script to completion, ticking the canvas frame queue after
// every step. maxFrames bounds the run.
func (r *ScriptRunner) Run(c *Canvas, maxFrames int) error {
	for i := 0; !r.done; i++ {
		if i >= maxFrames {
			return fmt.Errorf("script did not finish in %d frames", maxFrames)
		}
		if err := r.Step(c); err != nil {
			return err
		}
		c.Frames().Tick(1.0 / 60)
	}
	return nil
}

func (r *ScriptRunner) selectStep(c *Canvas, st scriptStep) error {
	if st.Index == nil {
		c.DiscardActiveObject(nil)
		return nil
	}
	o := c.Item(*st.Index)
	if o == nil {
		return fmt.Errorf("no object at index %d", *st.Index)
	}
	c.SetActiveObject(o, nil)
	c.RequestRenderAll()
	return nil
}

func (r *ScriptRunner) export(c *Canvas, st scriptStep) error {
	var data []byte
	var err error
	switch st.Format {
	case "", "json":
		data, err = c.ToJSON()
	case "svg":
		var s string
		s, err = c.ToSVG(SVGOptions{}, nil)
		data = []byte(s)
	default:
		data, err = c.ToBlob(ImageOptions{Format: st.Format})
	}
	if err != nil {
		return err
	}
	label := st.Label
	if label == "" {
		label = fmt.Sprintf("export%d", r.cursor)
	}
	r.Exports[label] = data
	if st.Path != "" {
		if err := os.WriteFile(st.Path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", st.Path, err)
		}
	}
	return nil
}

// ParseModifiers maps key names ("shift", "ctrl", "alt", "meta") to a
// modifier mask.
func ParseModifiers(keys []string) (KeyModifiers, error) {
	var mods KeyModifiers
	for _, k := range keys {
		switch strings.ToLower(k) {
		case "shift":
			mods |= ModShift
		case "ctrl", "control":
			mods |= ModCtrl
		case "alt", "option":
			mods |= ModAlt
		case "meta", "cmd", "command":
			mods |= ModMeta
		case "":
		default:
			return 0, fmt.Errorf("unknown modifier %q", k)
		}
	}
	return mods, nil
}
