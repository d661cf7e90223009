package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const scene = `{"objects":[{"type":"rect","left":10,"top":10,"width":20,"height":20,"fill":"red"}]}`

func TestFormatFromPath(t *testing.T) {
	tests := []struct{ path, want string }{
		{"out.png", "png"},
		{"out.JPG", "jpeg"},
		{"out.jpeg", "jpeg"},
		{"out.svg", "svg"},
		{"out.json", "json"},
		{"-", "png"},
	}
	for _, tt := range tests {
		if got := formatFromPath(tt.path); got != tt.want {
			t.Errorf("formatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRunPNGToStdout(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-width", "40", "-height", "40"}, strings.NewReader(scene), &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, errOut.String())
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Dx(); got != 40 {
		t.Errorf("width = %d, want 40", got)
	}
}

func TestRunSVGFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scene.json")
	out := filepath.Join(dir, "scene.svg")
	os.WriteFile(in, []byte(scene), 0o644)
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-in", in, "-out", out}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("<svg")) {
		t.Error("output is not svg")
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "steps.json")
	shots := filepath.Join(dir, "shots")
	os.WriteFile(script, []byte(`{"steps":[
		{"action":"press","x":20,"y":20},
		{"action":"move","x":40,"y":20},
		{"action":"move","x":60,"y":20},
		{"action":"release","x":60,"y":20},
		{"action":"screenshot","label":"moved"}
	]}`), 0o644)

	var out, errOut bytes.Buffer
	args := []string{"-script", script, "-shots", shots, "-format", "json", "-width", "100", "-height", "50"}
	if err := run(context.Background(), args, strings.NewReader(scene), &out, &errOut); err != nil {
		t.Fatalf("run: %v\n%s", err, errOut.String())
	}
	var doc struct {
		Objects []struct {
			Left float64 `json:"left"`
		} `json:"objects"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Objects) != 1 || doc.Objects[0].Left != 50 {
		t.Errorf("objects = %+v, want one rect moved to left 50", doc.Objects)
	}
	entries, _ := os.ReadDir(shots)
	if len(entries) != 1 {
		t.Errorf("screenshots = %d, want 1", len(entries))
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
	}{
		{"bad multiplier", []string{"-multiplier", "0"}, scene},
		{"bad scene", nil, "{"},
		{"unknown type", nil, `{"objects":[{"type":"sprocket"}]}`},
		{"bad format", []string{"-format", "gif"}, scene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if err := run(context.Background(), tt.args, strings.NewReader(tt.input), &out, &errOut); err == nil {
				t.Error("run succeeded, want error")
			}
		})
	}
}
