package websocket

import "time"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionStrike Action = "strike"
)

// RequestPayload is the single client frame shape. Action "ping"
// resynchronizes the countdown against the server clock; action "strike"
// reports one suspicious client event (copy, tab switch, context menu)
// with its kind.
type RequestPayload struct {
	Action Action `json:"action"`
	Kind   string `json:"kind,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventPong   Event = "pong"
	EventStrike Event = "strike"
)

// PongResponse carries the server clock and the seconds left in the exam
// window, so a skewed client clock never decides when the exam ends.
type PongResponse struct {
	Event            Event     `json:"event"`
	ServerTime       time.Time `json:"server_time"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// StrikeResponse acknowledges a reported strike with the running total.
type StrikeResponse struct {
	Event Event `json:"event"`
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
