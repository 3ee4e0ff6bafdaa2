package hub

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"canvas-lab/contract"
	"canvas-lab/domain"
	"canvas-lab/domain/event"
	"canvas-lab/presence"
)

type connection struct {
	user   domain.UserID
	sub    contract.Subscriber
	topics map[string]struct{}
}

// Manager binds connections to topics and drives presence transitions.
// A connection holds at most one subscription per topic; joining a topic
// marks the user online in that scope and leaving it (or disconnecting)
// marks them offline once their last connection is gone.
type Manager struct {
	mu       sync.Mutex
	log      *slog.Logger
	hub      contract.IHub
	presence *presence.Registry
	conns    map[string]*connection
	// members refcounts connections per (topic, user) so a user with two
	// tabs produces exactly one joined and one left.
	members map[string]map[domain.UserID]int
}

func NewManager(log *slog.Logger, hub contract.IHub, registry *presence.Registry) *Manager {
	return &Manager{
		log:      log,
		hub:      hub,
		presence: registry,
		conns:    make(map[string]*connection),
		members:  make(map[string]map[domain.UserID]int),
	}
}

// Subscribe attaches the connection to the topic. Returns false when the
// connection already holds this subscription.
func (m *Manager) Subscribe(sub contract.Subscriber, user domain.UserID, topic string, now time.Time) bool {
	m.mu.Lock()

	conn, ok := m.conns[sub.ID()]
	if !ok {
		conn = &connection{user: user, sub: sub, topics: make(map[string]struct{})}
		m.conns[sub.ID()] = conn
	}
	if _, dup := conn.topics[topic]; dup {
		m.mu.Unlock()
		return false
	}
	conn.topics[topic] = struct{}{}

	users := m.members[topic]
	if users == nil {
		users = make(map[domain.UserID]int)
		m.members[topic] = users
	}
	users[user]++
	// Attach while still holding the lock: a disconnect sweeping this
	// connection must observe the attachment, or the hub would keep a
	// dead subscriber forever.
	m.hub.Attach(topic, sub)
	m.mu.Unlock()

	if presenceScope(topic) && m.presence.MarkOnline(user, topic, now) {
		m.log.Debug("User joined", "user", user, "scope", topic)
		m.hub.Publish(event.PresenceTopic(topic), event.PresenceChanged{
			UserID: user, Scope: topic, Action: event.ActionJoined, At: now,
		})
	}
	return true
}

// Unsubscribe detaches the connection from the topic.
func (m *Manager) Unsubscribe(connID, topic string, now time.Time) {
	m.mu.Lock()
	conn, ok := m.conns[connID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, subscribed := conn.topics[topic]; !subscribed {
		m.mu.Unlock()
		return
	}
	delete(conn.topics, topic)
	user := conn.user
	last := m.dropMember(topic, user)
	m.mu.Unlock()

	m.hub.Detach(topic, connID)
	m.markLeft(topic, user, last, now)
}

// RemoveConnection sweeps every subscription of a disconnected client.
func (m *Manager) RemoveConnection(connID string, now time.Time) {
	m.mu.Lock()
	conn, ok := m.conns[connID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.conns, connID)

	type departure struct {
		topic string
		last  bool
	}
	departures := make([]departure, 0, len(conn.topics))
	for topic := range conn.topics {
		departures = append(departures, departure{topic: topic, last: m.dropMember(topic, conn.user)})
	}
	user := conn.user
	m.mu.Unlock()

	for _, d := range departures {
		m.hub.Detach(d.topic, connID)
		m.markLeft(d.topic, user, d.last, now)
	}
}

// Refresh extends the user's presence in every scope the connection is
// subscribed to. Called on observed activity or heartbeat.
func (m *Manager) Refresh(connID string, now time.Time) {
	m.mu.Lock()
	conn, ok := m.conns[connID]
	if !ok {
		m.mu.Unlock()
		return
	}
	topics := make([]string, 0, len(conn.topics))
	for topic := range conn.topics {
		if presenceScope(topic) {
			topics = append(topics, topic)
		}
	}
	user := conn.user
	m.mu.Unlock()

	for _, topic := range topics {
		m.presence.MarkOnline(user, topic, now)
	}
}

// dropMember decrements the (topic, user) refcount and reports whether
// this was the user's last connection on the topic. Caller holds the lock.
func (m *Manager) dropMember(topic string, user domain.UserID) bool {
	users, ok := m.members[topic]
	if !ok {
		return false
	}
	users[user]--
	if users[user] > 0 {
		return false
	}
	delete(users, user)
	if len(users) == 0 {
		delete(m.members, topic)
	}
	return true
}

func (m *Manager) markLeft(topic string, user domain.UserID, last bool, now time.Time) {
	if !last || !presenceScope(topic) {
		return
	}
	if m.presence.MarkOffline(user, topic, now) {
		m.log.Debug("User left", "user", user, "scope", topic)
		m.hub.Publish(event.PresenceTopic(topic), event.PresenceChanged{
			UserID: user, Scope: topic, Action: event.ActionLeft, At: now,
		})
	}
}

// presenceScope reports whether joining the topic counts as presence.
// Presence topics themselves are observers, not scopes, or every join
// would recurse into another presence topic.
func presenceScope(topic string) bool {
	return !strings.HasPrefix(topic, "presence:")
}
