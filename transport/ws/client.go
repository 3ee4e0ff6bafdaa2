package ws

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"canvas-lab/domain"
	"canvas-lab/domain/event"
	"canvas-lab/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
	maxMessage = 64 * 1024
)

// client is one websocket connection. It implements contract.Subscriber:
// the hub hands events to Consume, which encodes and enqueues them on
// the send channel with drop-on-full semantics, so a slow reader only
// ever loses its own frames.
//
// send is never closed: a publish snapshot taken before the disconnect
// may deliver after teardown, and a send on a closed channel would
// panic the publishing goroutine. Teardown flips closed under mu and
// signals the writeLoop through done instead; late deliveries drop.
type client struct {
	id      string
	actor   domain.ActorContext
	conn    *websocket.Conn
	gateway *Gateway
	log     *slog.Logger

	mu        sync.Mutex
	send      chan []byte
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) ID() string { return c.id }

func (c *client) Consume(_ context.Context, e event.DomainEvent) error {
	payload := encodeEvent(e)
	if payload == nil {
		return nil
	}
	c.enqueue(payload)
	return nil
}

func (c *client) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.log.Debug("Outbound buffer full, dropping frame", "connection", c.id)
	}
}

func (c *client) transmit(frame outbound) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	c.enqueue(payload)
}

// markClosed flips the teardown flag; deliveries racing the disconnect
// drop from here on.
func (c *client) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	close(c.done)
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.markClosed()
		c.gateway.manager.RemoveConnection(c.id, time.Now())
		_ = c.conn.Close()
	})
}

func (c *client) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.gateway.manager.Refresh(c.id, time.Now())
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame inbound
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("Read failed", "connection", c.id, "error", err)
			}
			return
		}
		c.handle(frame)
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handle(frame inbound) {
	c.gateway.manager.Refresh(c.id, time.Now())

	switch frame.Type {
	case "subscribe":
		c.handleSubscribe(frame.Topic)
	case "unsubscribe":
		c.handleUnsubscribe(frame.Topic)
	case "draw_pixel":
		c.handleDraw(frame)
	case "send_message":
		c.handleMessage(frame)
	case "presence_count":
		c.handlePresenceCount(frame.Topic)
	default:
		c.sendError("unsupported_event", "unsupported event type")
	}
}

func (c *client) handleSubscribe(topic string) {
	if !validTopic(topic) {
		c.sendError("unknown_topic", errors.ErrUnknownTopic.Error())
		return
	}
	if !c.channelActionAllowed() {
		return
	}
	if groupID, ok := domain.ChannelID(topic).GroupID(); ok {
		if !c.gateway.groups.IsMember(c.actor.UserID, groupID) {
			c.sendError("forbidden", errors.ErrNotGroupMember.Error())
			return
		}
	}

	now := time.Now()
	if !c.gateway.manager.Subscribe(c, c.actor.UserID, topic, now) {
		return // already subscribed
	}
	c.log.Info("Subscribed", "connection", c.id, "user", c.actor.UserID, "topic", topic)
	c.transmitSnapshot(topic)
}

// transmitSnapshot hydrates the new subscriber: the full grid for the
// canvas topic, the last K messages for a chat topic. Events published
// after the subscribe arrive through the hub; the snapshot covers
// everything before it.
func (c *client) transmitSnapshot(topic string) {
	switch {
	case topic == event.CanvasTopic:
		cells := c.gateway.canvas.Snapshot()
		pixels := make([]pixelPayload, 0, len(cells))
		for _, cell := range cells {
			pixels = append(pixels, toPixelPayload(cell))
		}
		c.transmit(outbound{Type: "initial_canvas", Topic: topic, Pixels: pixels})
	case strings.HasPrefix(topic, "chat:"):
		messages := c.gateway.chats.Recent(domain.ChannelID(topic), c.gateway.replayDepth)
		payloads := make([]messagePayload, 0, len(messages))
		for _, message := range messages {
			payloads = append(payloads, toMessagePayload(message))
		}
		c.transmit(outbound{Type: "recent_messages", Topic: topic, Messages: payloads})
	}
}

// handlePresenceCount answers how many users are online in a scope.
// Presence topics are observers, not scopes, so they cannot be counted.
func (c *client) handlePresenceCount(scope string) {
	if strings.HasPrefix(scope, "presence:") || !validTopic(scope) {
		c.sendError("unknown_topic", errors.ErrUnknownTopic.Error())
		return
	}
	count := c.gateway.presences.OnlineCount(scope, time.Now())
	c.transmit(outbound{Type: "presence_count", Topic: scope, Count: count})
}

func (c *client) handleUnsubscribe(topic string) {
	if !c.channelActionAllowed() {
		return
	}
	c.gateway.manager.Unsubscribe(c.id, topic, time.Now())
	c.log.Info("Unsubscribed", "connection", c.id, "user", c.actor.UserID, "topic", topic)
}

func (c *client) handleDraw(frame inbound) {
	now := time.Now()
	_, err := c.gateway.canvas.PlacePixel(context.Background(), domain.PlacePixelCommand{
		Requester: c.actor,
		X:         frame.X,
		Y:         frame.Y,
		Color:     frame.Color,
		At:        now,
	})
	c.reportOutcome(err)
}

func (c *client) handleMessage(frame inbound) {
	if !validChatTopic(frame.Topic) {
		c.sendError("unknown_topic", errors.ErrUnknownTopic.Error())
		return
	}
	now := time.Now()
	_, err := c.gateway.chats.Post(context.Background(), domain.PostMessageCommand{
		Requester: c.actor,
		Channel:   domain.ChannelID(frame.Topic),
		Content:   frame.Content,
		At:        now,
	})
	c.reportOutcome(err)
}

// reportOutcome translates the attempt result for this connection only.
// Rejections carry the retry hint; validation errors come back verbatim.
// Nothing here is broadcast.
func (c *client) reportOutcome(err error) {
	if err == nil {
		return
	}
	var rejection domain.Rejection
	if goerrors.As(err, &rejection) {
		c.transmit(rateLimitedFrame(rejection.Kind, rejection.RetryAfter))
		return
	}
	c.sendError("invalid", err.Error())
}

// channelActionAllowed applies the generic churn limit on
// subscribe/unsubscribe traffic.
func (c *client) channelActionAllowed() bool {
	if c.gateway.limiter.TryConsume(c.actor.Key(domain.ActionChannelAction), time.Now()) {
		return true
	}
	c.transmit(rateLimitedFrame(domain.ActionChannelAction, c.gateway.limiter.RetryAfter(domain.ActionChannelAction)))
	return false
}

func (c *client) sendError(code, message string) {
	c.transmit(outbound{Type: "error", Code: code, Error: message})
}

func validTopic(topic string) bool {
	if topic == event.CanvasTopic || topic == string(domain.GlobalChannel) {
		return true
	}
	if _, ok := domain.ChannelID(topic).GroupID(); ok {
		return true
	}
	scope, ok := strings.CutPrefix(topic, "presence:")
	return ok && scope != "" && validTopic(scope)
}

func validChatTopic(topic string) bool {
	if topic == string(domain.GlobalChannel) {
		return true
	}
	_, ok := domain.ChannelID(topic).GroupID()
	return ok
}
