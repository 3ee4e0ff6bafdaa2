// Package groups holds the in-process view of group membership.
// Accounts and invitations live with an external collaborator; the
// engine only asks whether a user may enter a group channel.
package groups

import (
	"strings"
	"sync"

	"canvas-lab/domain"
)

// StaticMembership is a fixed membership table, loaded at boot.
type StaticMembership struct {
	mu      sync.RWMutex
	members map[string]map[domain.UserID]struct{}
}

func NewStaticMembership() *StaticMembership {
	return &StaticMembership{members: make(map[string]map[domain.UserID]struct{})}
}

// ParseMembership reads the "group:user,user;group:user" form used by
// the GROUPS environment variable.
func ParseMembership(spec string) *StaticMembership {
	m := NewStaticMembership()
	for _, groupSpec := range strings.Split(spec, ";") {
		name, users, ok := strings.Cut(strings.TrimSpace(groupSpec), ":")
		if !ok || name == "" {
			continue
		}
		for _, user := range strings.Split(users, ",") {
			if user = strings.TrimSpace(user); user != "" {
				m.Add(domain.UserID(user), name)
			}
		}
	}
	return m
}

func (m *StaticMembership) Add(user domain.UserID, groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[groupID] == nil {
		m.members[groupID] = make(map[domain.UserID]struct{})
	}
	m.members[groupID][user] = struct{}{}
}

func (m *StaticMembership) IsMember(user domain.UserID, groupID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.members[groupID][user]
	return ok
}
