package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/phanxgames/easel"
)

// loadScene reads the request body into a fresh static canvas.
func (s *Server) loadScene(w http.ResponseWriter, r *http.Request) (*easel.StaticCanvas, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxSceneBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	q := r.URL.Query()
	cw := intParam(q.Get("canvasWidth"), s.cfg.CanvasWidth)
	ch := intParam(q.Get("canvasHeight"), s.cfg.CanvasHeight)
	c := easel.NewStaticCanvas(cw, ch, easel.StaticCanvasOptions{
		DisableRenderOnAddRemove: true,
		Loader:                   s.loader(),
		UnknownTypes:             unknownPolicy(q.Get("unknown")),
		Debug:                    s.cfg.Debug,
	})
	if err := c.LoadFromJSON(r.Context(), data); err != nil {
		c.Dispose()
		return nil, err
	}
	return c, nil
}

func (s *Server) loader() easel.ResourceLoader {
	return easel.DefaultLoader{
		DisableFiles:  true,
		DisableRemote: !s.cfg.AllowRemote,
		MaxBytes:      s.cfg.MaxSceneBytes,
	}
}

func unknownPolicy(v string) easel.UnknownTypePolicy {
	if v == "skip" {
		return easel.SkipUnknown
	}
	return easel.RejectUnknown
}

const maxCanvasSide = 8192

func intParam(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxCanvasSide {
		return def
	}
	return n
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// imageOptions parses the raster export query parameters.
func (s *Server) imageOptions(r *http.Request) (easel.ImageOptions, error) {
	q := r.URL.Query()
	opts := easel.ImageOptions{Format: q.Get("format")}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"multiplier", &opts.Multiplier},
		{"quality", &opts.Quality},
		{"left", &opts.Left},
		{"top", &opts.Top},
		{"width", &opts.Width},
		{"height", &opts.Height},
	}
	for _, f := range fields {
		v, err := floatParam(q.Get(f.name))
		if err != nil {
			return opts, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = v
	}
	if opts.Multiplier > s.cfg.MaxMultiplier {
		return opts, fmt.Errorf("multiplier %g exceeds %g", opts.Multiplier, s.cfg.MaxMultiplier)
	}
	if opts.Quality < 0 || opts.Quality > 1 {
		return opts, fmt.Errorf("quality %g outside [0, 1]", opts.Quality)
	}
	return opts, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.imageOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.loadScene(w, r)
	if err != nil {
		s.log.Debug("render: load failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer c.Dispose()

	data, err := c.ToBlob(opts)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	mime := "image/png"
	if opts.Format == "jpeg" || opts.Format == "jpg" {
		mime = "image/jpeg"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	c, err := s.loadScene(w, r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer c.Dispose()

	svg, err := c.ToSVG(easel.SVGOptions{SuppressPreamble: r.URL.Query().Get("preamble") == "false"}, nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	io.WriteString(w, svg)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	c, err := s.loadScene(w, r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	defer c.Dispose()

	if r.URL.Query().Get("dataless") == "true" {
		writeJSON(w, http.StatusOK, c.ToDatalessObject())
		return
	}
	writeJSON(w, http.StatusOK, c.ToObject())
}
