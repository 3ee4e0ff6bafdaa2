package event

import (
	"time"

	"github.com/google/uuid"

	"canvas-lab/domain"
)

const CanvasTopic = "canvas"

// PresenceTopic is the broadcast topic carrying join/leave events for a scope.
func PresenceTopic(scope string) string {
	return "presence:" + scope
}

// DomainEvent is anything the hub can fan out to topic subscribers.
type DomainEvent interface {
	Topic() string
	OccurredAt() time.Time
}

type PixelPlaced struct {
	X      int
	Y      int
	Color  string
	UserID domain.UserID
	At     time.Time
}

func (p PixelPlaced) Topic() string         { return CanvasTopic }
func (p PixelPlaced) OccurredAt() time.Time { return p.At }

type ChatPosted struct {
	ID      uuid.UUID
	Channel domain.ChannelID
	UserID  domain.UserID
	Content string
	At      time.Time
}

func (c ChatPosted) Topic() string         { return string(c.Channel) }
func (c ChatPosted) OccurredAt() time.Time { return c.At }

const (
	ActionJoined = "joined"
	ActionLeft   = "left"
)

type PresenceChanged struct {
	UserID domain.UserID
	Scope  string
	Action string // joined or left
	At     time.Time
}

func (p PresenceChanged) Topic() string         { return PresenceTopic(p.Scope) }
func (p PresenceChanged) OccurredAt() time.Time { return p.At }

// RateLimited is transmitted to the offending connection only.
// Its topic is empty: the hub never broadcasts it.
type RateLimited struct {
	Kind       domain.ActionKind
	RetryAfter time.Duration
	At         time.Time
}

func (r RateLimited) Topic() string         { return "" }
func (r RateLimited) OccurredAt() time.Time { return r.At }
