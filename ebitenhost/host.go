// Package ebitenhost shows an easel.Canvas in an Ebitengine window.
//
// The host polls mouse, touch and modifier state each Update, forwards it
// to the canvas pointer handlers, ticks the canvas frame queue and blits the
// painted surfaces in Draw:
//
//	c := easel.NewCanvas(800, 600, easel.CanvasOptions{})
//	c.Add(easel.NewRect(100, 100, 200, 120))
//	if err := ebitenhost.Run(c, ebitenhost.RunConfig{Title: "easel"}); err != nil {
//		log.Fatal(err)
//	}
package ebitenhost

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"

	"github.com/phanxgames/easel"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the window size. Zero uses the canvas size.
	Width, Height int
	// Background fills the window behind the canvas surface.
	Background color.Color
	// ShowFPS draws an FPS/TPS counter in the top-left corner.
	ShowFPS bool
	// Resizable lets the user resize the window; the canvas follows.
	Resizable bool
	// Script, when set, is stepped once per frame before real input.
	Script *easel.ScriptRunner
	// OnUpdate runs once per tick after input and the frame queue.
	OnUpdate func(dt float64) error
}

// Run opens a window and drives c until the window closes or OnUpdate
// returns an error.
func Run(c *easel.Canvas, cfg RunConfig) error {
	g := NewGame(c, cfg)
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = c.Width(), c.Height()
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	return ebiten.RunGame(g)
}

// Game implements ebiten.Game for a canvas. Use it directly to embed a
// canvas in an existing game loop.
type Game struct {
	canvas *easel.Canvas
	cfg    RunConfig

	pointers pointerPoller
	fps      *fpsWidget

	surface    *ebiten.Image
	pix        *image.RGBA
	lastRender uint64
	lastTop    uint64
	cursor     string
}

// NewGame wraps c in an ebiten.Game.
func NewGame(c *easel.Canvas, cfg RunConfig) *Game {
	g := &Game{canvas: c, cfg: cfg, lastRender: ^uint64(0)}
	if cfg.ShowFPS {
		g.fps = newFPSWidget()
	}
	return g
}

// Update polls input, steps the script and ticks the canvas frame queue.
func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	c := g.canvas
	if c.IsDisposed() {
		return ebiten.Termination
	}
	if g.cfg.Script != nil && !g.cfg.Script.Done() {
		if err := g.cfg.Script.Step(c); err != nil {
			return err
		}
	} else if !c.ProcessInjected() {
		g.pointers.poll(c)
	}
	c.Frames().Tick(dt)
	g.updateCursor()
	if g.fps != nil {
		g.fps.update(dt)
	}
	if g.cfg.OnUpdate != nil {
		return g.cfg.OnUpdate(dt)
	}
	return nil
}

// Draw uploads the canvas surfaces when either was repainted and draws
// them to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.Background != nil {
		screen.Fill(g.cfg.Background)
	}
	c := g.canvas
	if c.RenderCount() != g.lastRender || c.TopRenderCount() != g.lastTop || g.surface == nil {
		g.upload()
	}
	if g.surface != nil {
		op := &ebiten.DrawImageOptions{}
		if r := c.RetinaScaling(); r != 1 {
			op.GeoM.Scale(1/r, 1/r)
		}
		screen.DrawImage(g.surface, op)
	}
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

// upload copies the composited canvas into the ebiten image. Ebiten wants
// premultiplied RGBA; draw.Draw converts the straight-alpha snapshot.
func (g *Game) upload() {
	c := g.canvas
	snap := c.Snapshot()
	b := snap.Bounds()
	if g.pix == nil || g.pix.Bounds() != b {
		g.pix = image.NewRGBA(b)
	}
	draw.Draw(g.pix, b, snap, b.Min, draw.Src)
	if g.surface == nil || g.surface.Bounds().Size() != b.Size() {
		if g.surface != nil {
			g.surface.Deallocate()
		}
		g.surface = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.surface.WritePixels(g.pix.Pix)
	g.lastRender = c.RenderCount()
	g.lastTop = c.TopRenderCount()
}

// Layout keeps the canvas sized to the window when it is resizable.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	c := g.canvas
	if g.cfg.Resizable && (outsideWidth != c.Width() || outsideHeight != c.Height()) {
		c.SetDimensions(outsideWidth, outsideHeight)
		c.RequestRenderAll()
	}
	if !g.cfg.Resizable {
		return c.Width(), c.Height()
	}
	return outsideWidth, outsideHeight
}

func (g *Game) updateCursor() {
	name := g.canvas.Cursor()
	if name == g.cursor {
		return
	}
	g.cursor = name
	ebiten.SetCursorShape(cursorShape(name))
}

// cursorShape maps a canvas cursor name to the closest ebiten shape.
func cursorShape(name string) ebiten.CursorShapeType {
	switch name {
	case easel.CursorMove:
		return ebiten.CursorShapeMove
	case easel.CursorCrosshair:
		return ebiten.CursorShapeCrosshair
	case easel.CursorNotAllowed:
		return ebiten.CursorShapeNotAllowed
	case easel.CursorText:
		return ebiten.CursorShapeText
	case "pointer":
		return ebiten.CursorShapePointer
	case "e-resize", "w-resize", "ew-resize":
		return ebiten.CursorShapeEWResize
	case "n-resize", "s-resize", "ns-resize":
		return ebiten.CursorShapeNSResize
	case "ne-resize", "sw-resize", "nesw-resize":
		return ebiten.CursorShapeNESWResize
	case "nw-resize", "se-resize", "nwse-resize":
		return ebiten.CursorShapeNWSEResize
	}
	return ebiten.CursorShapeDefault
}
