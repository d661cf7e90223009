package server

import "encoding/json"

// Message is the envelope of every websocket frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// client → server
	TypeLoad    = "load"
	TypePointer = "pointer"
	TypeExport  = "export"
	TypeSelect  = "select"
	TypeDiscard = "discard"

	// server → client
	TypeHello  = "hello"
	TypeEvent  = "event"
	TypeScene  = "scene"
	TypeFrame  = "frame"
	TypeResult = "result"
	TypeError  = "error"
)

type PointerPayload struct {
	// Kind is down, move, up or dblclick.
	Kind      string   `json:"kind"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Button    int      `json:"button,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	Touch     bool     `json:"touch,omitempty"`
	PointerID int      `json:"pointerId,omitempty"`
}

type ExportPayload struct {
	// Format is json, svg, png or jpeg.
	Format     string  `json:"format"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Quality    float64 `json:"quality,omitempty"`
	Dataless   bool    `json:"dataless,omitempty"`
}

type SelectPayload struct {
	Indices []int `json:"indices"`
}

type HelloPayload struct {
	SessionID string `json:"sessionId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameRate int    `json:"frameRate"`
}

// EventPayload reports a canvas event. Objects are identified by their
// top-level index; -1 means not on the canvas.
type EventPayload struct {
	Name       string `json:"name"`
	Target     *int   `json:"target,omitempty"`
	Selected   []int  `json:"selected,omitempty"`
	Deselected []int  `json:"deselected,omitempty"`
	Action     string `json:"action,omitempty"`
}

type FramePayload struct {
	// Data is a PNG data URL.
	Data   string `json:"data"`
	Cursor string `json:"cursor"`
}

type ResultPayload struct {
	Format string `json:"format"`
	Data   string `json:"data"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
