package ws

import "time"

// Message types pushed to connected UIs.
const (
	TypeStatus = "status"
	TypeTick   = "tick"
)

// StatusMessage carries the pipeline status line.
type StatusMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// TickMessage carries one countdown tick.
type TickMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining_seconds"`
}

// NewStatusMessage builds a status message stamped with the current time.
func NewStatusMessage(text string) StatusMessage {
	return StatusMessage{
		Type:      TypeStatus,
		Text:      text,
		Timestamp: time.Now().Unix(),
	}
}

// NewTickMessage builds a countdown tick message.
func NewTickMessage(remaining int) TickMessage {
	return TickMessage{Type: TypeTick, Remaining: remaining}
}
