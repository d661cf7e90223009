package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/phanxgames/easel"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// sessionEvents are forwarded to the client as event messages.
var sessionEvents = []string{
	"selection:created",
	"selection:updated",
	"selection:cleared",
	"object:added",
	"object:removed",
	"object:modified",
	"object:moving",
	"object:scaling",
	"object:rotating",
	"object:skewing",
	"object:resizing",
	"path:created",
	"mouse:down",
	"mouse:up",
	"mouse:dblclick",
	"canvas:loaded",
}

// session owns one interactive canvas. The canvas is only touched from the
// run goroutine; the read pump hands work to it through the frame queue.
type session struct {
	id     string
	srv    *Server
	conn   *websocket.Conn
	canvas *easel.Canvas
	send   chan []byte
	cancel context.CancelFunc

	lastRender, lastTop uint64
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Origins(),
	})
	if err != nil {
		s.log.Error("websocket accept", "error", err)
		return
	}
	conn.SetReadLimit(s.cfg.MaxSceneBytes)

	q := r.URL.Query()
	ctx, cancel := context.WithCancel(r.Context())
	ss := &session{
		id:     uuid.New().String(),
		srv:    s,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		cancel: cancel,
	}
	ss.canvas = easel.NewCanvas(
		intParam(q.Get("width"), s.cfg.CanvasWidth),
		intParam(q.Get("height"), s.cfg.CanvasHeight),
		easel.CanvasOptions{
			StaticCanvasOptions: easel.StaticCanvasOptions{
				Loader:        s.loader(),
				Debug:         s.cfg.Debug,
				ScreenshotDir: s.cfg.ScreenshotDir,
			},
			PinchGestures: true,
		},
	)
	if !s.register(ss) {
		cancel()
		ss.canvas.Dispose()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	log := s.log.With("session", ss.id)
	log.Info("session opened")

	ss.subscribe()
	ss.sendMessage(TypeHello, 0, HelloPayload{
		SessionID: ss.id,
		Width:     ss.canvas.Width(),
		Height:    ss.canvas.Height(),
		FrameRate: s.cfg.FrameRate,
	})
	ss.canvas.RequestRenderAll()

	go ss.writePump(ctx)
	go ss.readPump(ctx)
	ss.run(ctx)

	<-ss.canvas.Dispose()
	conn.Close(websocket.StatusNormalClosure, "")
	s.unregister(ss)
	log.Info("session closed")
}

func (ss *session) stop() { ss.cancel() }

// run ticks the canvas frame queue at the configured rate and ships a frame
// after every repaint.
func (ss *session) run(ctx context.Context) {
	fps := ss.srv.cfg.FrameRate
	dt := 1 / float64(fps)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ss.canvas.Frames().Tick(dt)
			ss.flushFrame()
		}
	}
}

func (ss *session) readPump(ctx context.Context) {
	defer ss.cancel()
	for {
		_, data, err := ss.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			ss.srv.log.Debug("read error", "error", err, "session", ss.id)
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			ss.sendError(0, fmt.Errorf("invalid message: %w", err))
			continue
		}
		ss.canvas.Frames().Post(func() {
			if err := ss.handleMessage(ctx, &msg); err != nil {
				ss.sendError(msg.Seq, err)
			}
		})
	}
}

func (ss *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case message := <-ss.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := ss.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				ss.srv.log.Debug("write error", "error", err, "session", ss.id)
				ss.cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := ss.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				ss.cancel()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (ss *session) sendMessage(typ string, seq int64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		ss.srv.log.Error("marshal payload", "error", err, "type", typ)
		return
	}
	data, err := json.Marshal(Message{Type: typ, Seq: seq, Payload: raw})
	if err != nil {
		ss.srv.log.Error("marshal message", "error", err)
		return
	}
	select {
	case ss.send <- data:
	default:
		ss.srv.log.Warn("session send buffer full, dropping message", "session", ss.id, "type", typ)
	}
}

func (ss *session) sendError(seq int64, err error) {
	ss.sendMessage(TypeError, seq, ErrorPayload{Message: err.Error()})
}

func (ss *session) subscribe() {
	for _, name := range sessionEvents {
		ss.canvas.On(name, func(e *easel.Event) {
			ss.sendMessage(TypeEvent, 0, ss.eventPayload(name, e))
		})
	}
}

func (ss *session) eventPayload(name string, e *easel.Event) EventPayload {
	p := EventPayload{Name: name, Action: e.Action}
	if e.Target != nil {
		i := ss.indexOf(e.Target)
		p.Target = &i
	}
	for _, o := range e.Selected {
		p.Selected = append(p.Selected, ss.indexOf(o))
	}
	for _, o := range e.Deselected {
		p.Deselected = append(p.Deselected, ss.indexOf(o))
	}
	return p
}

// indexOf returns the top-level index of o or of the group holding it.
func (ss *session) indexOf(o *easel.Object) int {
	for o.Parent() != nil {
		o = o.Parent()
	}
	return slices.Index(ss.canvas.Objects(), o)
}

func (ss *session) flushFrame() {
	c := ss.canvas
	if c.IsDisposed() || (c.RenderCount() == ss.lastRender && c.TopRenderCount() == ss.lastTop) {
		return
	}
	ss.lastRender, ss.lastTop = c.RenderCount(), c.TopRenderCount()
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.Snapshot()); err != nil {
		ss.srv.log.Error("encode frame", "error", err, "session", ss.id)
		return
	}
	ss.sendMessage(TypeFrame, 0, FramePayload{
		Data:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Cursor: c.Cursor(),
	})
}

// handleMessage runs on the session goroutine.
func (ss *session) handleMessage(ctx context.Context, msg *Message) error {
	c := ss.canvas
	switch msg.Type {
	case TypeLoad:
		seq := msg.Seq
		c.LoadFromJSONAsync(ctx, []byte(msg.Payload), func(err error) {
			if err != nil {
				ss.sendError(seq, fmt.Errorf("load: %w", err))
				return
			}
			ss.sendMessage(TypeScene, seq, c.ToObject())
		})
	case TypePointer:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("pointer: %w", err)
		}
		return ss.dispatchPointer(p)
	case TypeExport:
		var p ExportPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}
		return ss.export(msg.Seq, p)
	case TypeSelect:
		var p SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("select: %w", err)
		}
		return ss.selectObjects(p.Indices)
	case TypeDiscard:
		c.DiscardActiveObject(nil)
		c.RequestRenderAll()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (ss *session) dispatchPointer(p PointerPayload) error {
	mods, err := easel.ParseModifiers(p.Keys)
	if err != nil {
		return fmt.Errorf("pointer: %w", err)
	}
	if p.Button < 0 || p.Button > int(easel.MouseButtonRight) {
		return fmt.Errorf("pointer: invalid button %d", p.Button)
	}
	e := easel.PointerEvent{
		X: p.X, Y: p.Y,
		Button:    easel.MouseButton(p.Button),
		Modifiers: mods,
		Touch:     p.Touch,
		PointerID: p.PointerID,
		Primary:   !p.Touch || p.PointerID == 0,
	}
	c := ss.canvas
	switch p.Kind {
	case "down":
		c.OnPointerDown(e)
	case "move":
		c.OnPointerMove(e)
	case "up":
		c.OnPointerUp(e)
	case "dblclick":
		c.OnDoubleClick(e)
	case "leave":
		c.OnPointerLeave(e)
	default:
		return fmt.Errorf("pointer: unknown kind %q", p.Kind)
	}
	return nil
}

func (ss *session) export(seq int64, p ExportPayload) error {
	c := ss.canvas
	switch p.Format {
	case "", "json":
		if p.Dataless {
			ss.sendMessage(TypeScene, seq, c.ToDatalessObject())
		} else {
			ss.sendMessage(TypeScene, seq, c.ToObject())
		}
		return nil
	case "svg":
		svg, err := c.ToSVG(easel.SVGOptions{}, nil)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		ss.sendMessage(TypeResult, seq, ResultPayload{Format: "svg", Data: svg})
		return nil
	}
	if p.Multiplier > ss.srv.cfg.MaxMultiplier {
		return fmt.Errorf("export: multiplier %g exceeds %g", p.Multiplier, ss.srv.cfg.MaxMultiplier)
	}
	url, err := c.ToDataURL(easel.ImageOptions{Format: p.Format, Multiplier: p.Multiplier, Quality: p.Quality})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	ss.sendMessage(TypeResult, seq, ResultPayload{Format: p.Format, Data: url})
	return nil
}

func (ss *session) selectObjects(indices []int) error {
	c := ss.canvas
	objs := make([]*easel.Object, 0, len(indices))
	for _, i := range indices {
		o := c.Item(i)
		if o == nil {
			return fmt.Errorf("select: no object at index %d", i)
		}
		objs = append(objs, o)
	}
	switch len(objs) {
	case 0:
		c.DiscardActiveObject(nil)
	case 1:
		c.SetActiveObject(objs[0], nil)
	default:
		c.SetActiveObject(easel.NewActiveSelection(objs...), nil)
	}
	c.RequestRenderAll()
	return nil
}
