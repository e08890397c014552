package amqp

import (
	"encoding/json"
	"time"

	"mbtidash/internal/core"
)

// ViewRow is one table row of a resolved view.
type ViewRow struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// ViewResolvedMessage announces that a dashboard view was rendered for a selection.
type ViewResolvedMessage struct {
	Selection  string    `json:"selection"`
	Chart      string    `json:"chart"`
	Rows       []ViewRow `json:"rows"`
	Emphasized string    `json:"emphasized,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewViewResolvedMessage builds the message for res.
func NewViewResolvedMessage(res core.ViewResult, requestID string) *ViewResolvedMessage {
	msg := &ViewResolvedMessage{
		Selection: res.Selection.String(),
		Rows:      make([]ViewRow, 0, len(res.Rows)),
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
	if res.Chart != nil {
		msg.Chart = string(res.Chart.Kind())
	}
	if pie, ok := res.Chart.(core.PieChart); ok {
		if s, ok := pie.Emphasized(); ok {
			msg.Emphasized = string(s.Record.Category)
		}
	}
	for _, r := range res.Rows {
		msg.Rows = append(msg.Rows, ViewRow{Category: string(r.Category), Score: r.Score})
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *ViewResolvedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ViewResolvedMessageFromJSON decodes a message.
func ViewResolvedMessageFromJSON(data []byte) (*ViewResolvedMessage, error) {
	var msg ViewResolvedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
