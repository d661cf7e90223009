package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/easel/internal/config"
)

const redSquare = `{"objects":[{"type":"rect","left":10,"top":10,"width":20,"height":20,"fill":"red"}]}`

func testConfig() *config.Config {
	return &config.Config{
		Addr:           ":0",
		LogLevel:       "info",
		MaxSceneBytes:  1 << 20,
		FrameRate:      60,
		AllowedOrigins: "localhost:5173",
		MaxMultiplier:  4,
		CanvasWidth:    50,
		CanvasHeight:   50,
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(testConfig(), slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestRenderPNG(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/v1/render?format=png", redSquare)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, b)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Dx(); got != 50 {
		t.Errorf("width = %d, want 50", got)
	}
	r, g, b, a := img.At(20, 20).RGBA()
	if r>>8 < 240 || g>>8 > 15 || b>>8 > 15 || a>>8 < 240 {
		t.Errorf("pixel (20,20) = %d,%d,%d,%d, want red", r>>8, g>>8, b>>8, a>>8)
	}
	if _, _, _, a := img.At(45, 45).RGBA(); a != 0 {
		t.Errorf("pixel (45,45) alpha = %d, want 0", a)
	}
}

func TestRenderMultiplier(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/v1/render?multiplier=2", redSquare)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 100 {
		t.Errorf("width = %d, want 100", got)
	}
}

func TestRenderErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		body   string
		status int
	}{
		{"empty body", "", "", http.StatusBadRequest},
		{"bad json", "", "{", http.StatusBadRequest},
		{"not an object", "", "[1,2]", http.StatusBadRequest},
		{"unknown type", "", `{"objects":[{"type":"sprocket"}]}`, http.StatusBadRequest},
		{"bad format", "?format=gif", redSquare, http.StatusBadRequest},
		{"multiplier too large", "?multiplier=10", redSquare, http.StatusBadRequest},
		{"bad quality", "?format=jpeg&quality=2", redSquare, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/v1/render"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestRenderSkipUnknown(t *testing.T) {
	_, ts := newTestServer(t)
	body := `{"objects":[{"type":"sprocket"},{"type":"rect","width":5,"height":5}]}`
	resp := post(t, ts.URL+"/api/v1/render?unknown=skip", body)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRenderTooLarge(t *testing.T) {
	s, ts := newTestServer(t)
	s.cfg.MaxSceneBytes = 16
	resp := post(t, ts.URL+"/api/v1/render", redSquare)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusRequestEntityTooLarge)
	}
}

func TestSVG(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/v1/svg", redSquare)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"<svg", "<rect"} {
		if !bytes.Contains(b, []byte(want)) {
			t.Errorf("svg output missing %q", want)
		}
	}
}

func TestNormalize(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/v1/normalize", redSquare)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var doc struct {
		Objects []map[string]any `json:"objects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Objects) != 1 {
		t.Fatalf("len(objects) = %d, want 1", len(doc.Objects))
	}
	got := map[string]any{
		"type":  doc.Objects[0]["type"],
		"fill":  doc.Objects[0]["fill"],
		"width": doc.Objects[0]["width"],
	}
	want := map[string]any{"type": "rect", "fill": "red", "width": 20.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalized object mismatch (-want +got):\n%s", diff)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/render", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want the request origin", got)
	}
}

// readUntil reads messages until one of type typ satisfies match.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, match func(Message) bool) Message {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type == TypeError && typ != TypeError {
			t.Fatalf("server error while waiting for %s: %s", typ, msg.Payload)
		}
		if msg.Type == typ && (match == nil || match(msg)) {
			return msg
		}
	}
}

func write(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, seq int64, payload string) {
	t.Helper()
	data, _ := json.Marshal(Message{Type: typ, Seq: seq, Payload: json.RawMessage(payload)})
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestSession(t *testing.T) {
	s, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/session?width=100&height=100"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(1 << 22)

	hello := readUntil(t, ctx, conn, TypeHello, nil)
	var hp HelloPayload
	if err := json.Unmarshal(hello.Payload, &hp); err != nil {
		t.Fatal(err)
	}
	if hp.SessionID == "" || hp.Width != 100 {
		t.Errorf("hello = %+v, want a session id and width 100", hp)
	}
	if n := s.SessionCount(); n != 1 {
		t.Errorf("SessionCount() = %d, want 1", n)
	}

	write(t, ctx, conn, TypeLoad, 1, redSquare)
	readUntil(t, ctx, conn, TypeScene, func(m Message) bool { return m.Seq == 1 })

	// Press and release inside the square selects it.
	write(t, ctx, conn, TypePointer, 2, `{"kind":"down","x":20,"y":20}`)
	write(t, ctx, conn, TypePointer, 3, `{"kind":"up","x":20,"y":20}`)
	ev := readUntil(t, ctx, conn, TypeEvent, func(m Message) bool {
		var p EventPayload
		json.Unmarshal(m.Payload, &p)
		return p.Name == "selection:created"
	})
	var ep EventPayload
	json.Unmarshal(ev.Payload, &ep)
	if diff := cmp.Diff([]int{0}, ep.Selected); diff != "" {
		t.Errorf("selected mismatch (-want +got):\n%s", diff)
	}
	readUntil(t, ctx, conn, TypeFrame, nil)

	write(t, ctx, conn, TypeDiscard, 4, `{}`)
	readUntil(t, ctx, conn, TypeEvent, func(m Message) bool {
		var p EventPayload
		json.Unmarshal(m.Payload, &p)
		return p.Name == "selection:cleared"
	})

	write(t, ctx, conn, TypeExport, 5, `{"format":"svg"}`)
	res := readUntil(t, ctx, conn, TypeResult, func(m Message) bool { return m.Seq == 5 })
	var rp ResultPayload
	json.Unmarshal(res.Payload, &rp)
	if !strings.Contains(rp.Data, "<svg") {
		t.Errorf("svg export = %.40q, want svg markup", rp.Data)
	}

	write(t, ctx, conn, "bogus", 6, `{}`)
	readUntil(t, ctx, conn, TypeError, func(m Message) bool { return m.Seq == 6 })
}
