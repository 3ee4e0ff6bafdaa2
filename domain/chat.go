package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChannelID names a chat channel, which is also its broadcast topic.
type ChannelID string

const GlobalChannel ChannelID = "chat:global"

const groupChannelPrefix = "chat:group:"

// GroupChannel builds the channel for a group.
func GroupChannel(groupID string) ChannelID {
	return ChannelID(fmt.Sprintf("%s%s", groupChannelPrefix, groupID))
}

// GroupID extracts the group from a channel name.
// Returns false for the global channel or anything that is not a group channel.
func (c ChannelID) GroupID() (string, bool) {
	rest, ok := strings.CutPrefix(string(c), groupChannelPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// ChatEvent represents an immutable chat message.
type ChatEvent struct {
	ID        uuid.UUID // unique identifier
	Channel   ChannelID
	UserID    UserID
	Content   string
	CreatedAt time.Time
}
