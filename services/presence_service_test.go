package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"canvas-lab/presence"
)

func TestPresenceService_Heartbeat_Keeps_User_Online(t *testing.T) {
	req := require.New(t)
	registry := presence.NewRegistry(15 * time.Minute)
	service := NewPresenceService(registry)
	now := time.Now()

	service.Heartbeat("alice", "canvas", now)
	req.True(service.IsOnline("alice", "canvas", now))
	req.Equal(1, service.OnlineCount("canvas", now))

	// When the heartbeat stops, the TTL runs out
	req.False(service.IsOnline("alice", "canvas", now.Add(16*time.Minute)))

	// When it keeps coming, the user outlives the original TTL
	service.Heartbeat("alice", "canvas", now.Add(14*time.Minute))
	req.True(service.IsOnline("alice", "canvas", now.Add(20*time.Minute)))
}
