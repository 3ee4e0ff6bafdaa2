// Package ws is the websocket gateway: the only transport surface of
// the engine. It resolves identity at the edge, applies the connection
// gate, and from then on speaks JSON frames over one connection per
// client.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"canvas-lab/contract"
	"canvas-lab/domain"
	"canvas-lab/gate"
	"canvas-lab/hub"
	"canvas-lab/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin cookies; adjust if cross-origin usage appears.
		return true
	},
}

type Gateway struct {
	log         *slog.Logger
	identity    contract.IdentityProvider
	groups      contract.GroupMembership
	limiter     *gate.RateLimiter
	manager     *hub.Manager
	canvas      *services.CanvasService
	chats       *services.ChatService
	presences   *services.PresenceService
	sendBuffer  int
	replayDepth int
}

func NewGateway(log *slog.Logger, identity contract.IdentityProvider, groups contract.GroupMembership,
	limiter *gate.RateLimiter, manager *hub.Manager, canvas *services.CanvasService,
	chats *services.ChatService, presences *services.PresenceService, sendBuffer, replayDepth int) *Gateway {
	return &Gateway{
		log:         log,
		identity:    identity,
		groups:      groups,
		limiter:     limiter,
		manager:     manager,
		canvas:      canvas,
		chats:       chats,
		presences:   presences,
		sendBuffer:  sendBuffer,
		replayDepth: replayDepth,
	}
}

// ServeHTTP upgrades one client connection. Unidentified clients are
// rejected before the upgrade, as are clients reconnecting faster than
// the connect window allows.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := g.identity.CurrentUser(r.Context())
	if !ok {
		g.log.Warn("Unauthorized connection attempt")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	actor := domain.ActorContext{UserID: user, ConnectionID: uuid.NewString()}
	if !g.limiter.TryConsume(actor.Key(domain.ActionConnect), time.Now()) {
		g.log.Warn("Connection rate exceeded", "user", user)
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Upgrade failed", "error", err)
		return
	}
	g.log.Info("Connection established", "user", user, "connection", actor.ConnectionID)

	c := &client{
		id:      actor.ConnectionID,
		actor:   actor,
		conn:    conn,
		send:    make(chan []byte, g.sendBuffer),
		done:    make(chan struct{}),
		gateway: g,
		log:     g.log,
	}
	go c.writeLoop()
	go c.readLoop()
}
