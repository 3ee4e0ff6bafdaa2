package services

import (
	"time"

	"canvas-lab/domain"
	"canvas-lab/presence"
)

// PresenceService answers online queries. Transitions are owned by the
// subscription manager; this surface is read-only plus heartbeat.
type PresenceService struct {
	registry *presence.Registry
}

func NewPresenceService(registry *presence.Registry) *PresenceService {
	return &PresenceService{registry: registry}
}

func (s *PresenceService) IsOnline(user domain.UserID, scope string, now time.Time) bool {
	return s.registry.IsOnline(user, scope, now)
}

func (s *PresenceService) OnlineCount(scope string, now time.Time) int {
	return s.registry.OnlineCount(scope, now)
}

// Heartbeat refreshes the user's presence in a scope without producing
// a transition event.
func (s *PresenceService) Heartbeat(user domain.UserID, scope string, now time.Time) {
	s.registry.MarkOnline(user, scope, now)
}
