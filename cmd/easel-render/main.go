// Command easel-render renders or converts a scene document, optionally
// replaying an interaction script against it first.
//
//	easel-render -in scene.json -out scene.png
//	easel-render -in scene.json -out scene.svg
//	easel-render -in scene.json -script steps.json -shots out/ -out final.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/easel"
	"github.com/phanxgames/easel/internal/config"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "easel-render:", err)
		os.Exit(1)
	}
}

type options struct {
	in, out    string
	format     string
	multiplier float64
	quality    float64
	dataless   bool
	script     string
	shots      string
	width      int
	height     int
	maxFrames  int
	skip       bool
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet("easel-render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{}
	fs.StringVar(&o.in, "in", "-", "scene JSON file, - for stdin")
	fs.StringVar(&o.out, "out", "-", "output file, - for stdout")
	fs.StringVar(&o.format, "format", "", "png, jpeg, svg or json (default: from -out extension, else png)")
	fs.Float64Var(&o.multiplier, "multiplier", 1, "raster resolution multiplier")
	fs.Float64Var(&o.quality, "quality", 0.92, "jpeg quality in (0, 1]")
	fs.BoolVar(&o.dataless, "dataless", false, "omit embedded image and path data from json output")
	fs.StringVar(&o.script, "script", "", "interaction script to replay before output")
	fs.StringVar(&o.shots, "shots", cfg.ScreenshotDir, "directory for script screenshots")
	fs.IntVar(&o.width, "width", cfg.CanvasWidth, "canvas width")
	fs.IntVar(&o.height, "height", cfg.CanvasHeight, "canvas height")
	fs.IntVar(&o.maxFrames, "max-frames", 10000, "frame limit for scripts")
	fs.BoolVar(&o.skip, "skip-unknown", false, "drop objects of unknown type instead of failing")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.format == "" {
		o.format = formatFromPath(o.out)
	}
	if o.multiplier <= 0 || o.multiplier > cfg.MaxMultiplier {
		return nil, fmt.Errorf("multiplier %g outside (0, %g]", o.multiplier, cfg.MaxMultiplier)
	}
	return o, nil
}

func formatFromPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".svg":
		return "svg"
	case ".json":
		return "json"
	}
	return "png"
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	easel.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	scene, err := readInput(o.in, stdin)
	if err != nil {
		return err
	}
	unknown := easel.RejectUnknown
	if o.skip {
		unknown = easel.SkipUnknown
	}
	c := easel.NewCanvas(o.width, o.height, easel.CanvasOptions{
		StaticCanvasOptions: easel.StaticCanvasOptions{
			UnknownTypes:  unknown,
			ScreenshotDir: o.shots,
			Loader:        easel.DefaultLoader{BaseDir: baseDir(o.in)},
		},
	})
	defer c.Dispose()
	if err := c.LoadFromJSON(ctx, scene); err != nil {
		return fmt.Errorf("load %s: %w", o.in, err)
	}

	if o.script != "" {
		if err := replay(c, o); err != nil {
			return err
		}
		// Selection chrome is not part of the output.
		c.DiscardActiveObject(nil)
	}
	return writeOutput(c, o, stdout)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func baseDir(in string) string {
	if in == "-" {
		return ""
	}
	return filepath.Dir(in)
}

func replay(c *easel.Canvas, o *options) error {
	data, err := os.ReadFile(o.script)
	if err != nil {
		return err
	}
	r, err := easel.LoadScript(data)
	if err != nil {
		return err
	}
	c.RenderAll()
	if err := r.Run(c, o.maxFrames); err != nil {
		return fmt.Errorf("script %s: %w", o.script, err)
	}
	for _, p := range r.Shots {
		easel.Logger().Info("screenshot written", "path", p)
	}
	return nil
}

func writeOutput(c *easel.Canvas, o *options, stdout io.Writer) error {
	w := stdout
	if o.out != "-" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch o.format {
	case "json":
		var data []byte
		var err error
		if o.dataless {
			data, err = json.Marshal(c.ToDatalessObject())
		} else {
			data, err = c.ToJSON()
		}
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "svg":
		svg, err := c.ToSVG(easel.SVGOptions{}, nil)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, svg)
		return err
	}
	return c.WriteImage(w, easel.ImageOptions{
		Format:     o.format,
		Multiplier: o.multiplier,
		Quality:    o.quality,
	})
}
