package ws

import (
	"encoding/json"
	"time"

	"canvas-lab/domain"
	"canvas-lab/domain/event"
)

type inbound struct {
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Color   string `json:"color,omitempty"`
	Content string `json:"content,omitempty"`
}

type pixelPayload struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Color     string `json:"color"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

type messagePayload struct {
	Channel   string `json:"channel"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type presencePayload struct {
	UserID    string `json:"user_id"`
	Scope     string `json:"scope"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

type outbound struct {
	Type              string            `json:"type"`
	Topic             string            `json:"topic,omitempty"`
	Pixel             *pixelPayload     `json:"pixel,omitempty"`
	Pixels            []pixelPayload    `json:"pixels,omitempty"`
	Message           *messagePayload   `json:"message,omitempty"`
	Messages          []messagePayload  `json:"messages,omitempty"`
	Presence          *presencePayload  `json:"presence,omitempty"`
	Count             int               `json:"count,omitempty"`
	ActionKind        string            `json:"action_kind,omitempty"`
	RetryAfterSeconds int               `json:"retry_after_seconds,omitempty"`
	Error             string            `json:"error,omitempty"`
	Code              string            `json:"code,omitempty"`
}

func toPixelPayload(cell domain.Cell) pixelPayload {
	return pixelPayload{
		X:         cell.X,
		Y:         cell.Y,
		Color:     cell.Color,
		UserID:    string(cell.OwnerID),
		Timestamp: cell.PlacedAt.Unix(),
	}
}

func toMessagePayload(message domain.ChatEvent) messagePayload {
	return messagePayload{
		Channel:   string(message.Channel),
		UserID:    string(message.UserID),
		Content:   message.Content,
		Timestamp: message.CreatedAt.Unix(),
	}
}

// encodeEvent maps a broadcast event onto its wire frame.
// Unknown event types encode to nil and are skipped.
func encodeEvent(e event.DomainEvent) []byte {
	var frame outbound
	switch evt := e.(type) {
	case event.PixelPlaced:
		frame = outbound{Type: "pixel", Topic: evt.Topic(), Pixel: &pixelPayload{
			X: evt.X, Y: evt.Y, Color: evt.Color, UserID: string(evt.UserID), Timestamp: evt.At.Unix(),
		}}
	case event.ChatPosted:
		frame = outbound{Type: "message", Topic: evt.Topic(), Message: &messagePayload{
			Channel: string(evt.Channel), UserID: string(evt.UserID), Content: evt.Content, Timestamp: evt.At.Unix(),
		}}
	case event.PresenceChanged:
		frame = outbound{Type: "presence", Topic: evt.Topic(), Presence: &presencePayload{
			UserID: string(evt.UserID), Scope: evt.Scope, Action: evt.Action, Timestamp: evt.At.Unix(),
		}}
	case event.RateLimited:
		frame = rateLimitedFrame(evt.Kind, evt.RetryAfter)
	default:
		return nil
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return nil
	}
	return payload
}

func rateLimitedFrame(kind domain.ActionKind, retryAfter time.Duration) outbound {
	return outbound{
		Type:              "rate_limited",
		ActionKind:        string(kind),
		RetryAfterSeconds: int(retryAfter.Seconds()),
	}
}
