package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"canvas-lab/chat"
	"canvas-lab/contract"
	"canvas-lab/domain"
	"canvas-lab/domain/event"
	"canvas-lab/errors"
	"canvas-lab/gate"
	"canvas-lab/moderation"
)

type ChatService struct {
	log        *slog.Logger
	cooldown   *gate.CooldownGate
	limiter    *gate.RateLimiter
	ring       *chat.RingBuffer
	moderator  *moderation.Moderator
	groups     contract.GroupMembership
	dispatcher Dispatcher
	maxLength  int
}

func NewChatService(log *slog.Logger, cooldown *gate.CooldownGate, limiter *gate.RateLimiter,
	ring *chat.RingBuffer, moderator *moderation.Moderator, groups contract.GroupMembership,
	dispatcher Dispatcher, maxLength int) *ChatService {
	return &ChatService{
		log:        log,
		cooldown:   cooldown,
		limiter:    limiter,
		ring:       ring,
		moderator:  moderator,
		groups:     groups,
		dispatcher: dispatcher,
		maxLength:  maxLength,
	}
}

// Post attempts one chat message. Order matters: membership, then both
// gates, then content moderation and validation, and only then does the
// message reach the ring and the dispatcher.
func (s *ChatService) Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.ChatEvent, error) {
	if cmd.Requester.Anonymous() {
		return domain.ChatEvent{}, errors.ErrNoIdentity
	}

	kind := domain.ActionSendGlobalMessage
	var scope string
	if groupID, ok := cmd.Channel.GroupID(); ok {
		if !s.groups.IsMember(cmd.Requester.UserID, groupID) {
			return domain.ChatEvent{}, errors.ErrNotGroupMember
		}
		kind = domain.ActionSendGroupMessage
		scope = groupID
	}
	key := cmd.Requester.ScopedKey(kind, scope)

	if !s.cooldown.TryEnter(key, cmd.At) {
		return domain.ChatEvent{}, domain.Rejection{
			Kind:       kind,
			Reason:     domain.ReasonCooldown,
			RetryAfter: s.cooldown.RetryAfter(kind),
		}
	}
	if !s.limiter.TryConsume(key, cmd.At) {
		return domain.ChatEvent{}, domain.Rejection{
			Kind:       kind,
			Reason:     domain.ReasonRateLimited,
			RetryAfter: s.limiter.RetryAfter(kind),
		}
	}

	content := s.moderator.Censor(strings.TrimSpace(cmd.Content))
	if err := domain.ValidateContent(content, s.maxLength); err != nil {
		return domain.ChatEvent{}, err
	}

	message := domain.ChatEvent{
		ID:        uuid.New(),
		Channel:   cmd.Channel,
		UserID:    cmd.Requester.UserID,
		Content:   content,
		CreatedAt: cmd.At,
	}
	s.ring.Append(cmd.Channel, message)
	s.dispatcher.Dispatch(event.ChatPosted{
		ID:      message.ID,
		Channel: message.Channel,
		UserID:  message.UserID,
		Content: message.Content,
		At:      message.CreatedAt,
	})
	return message, nil
}

// Recent answers the replay read for a newly subscribed client,
// oldest first, straight from the ring.
func (s *ChatService) Recent(channel domain.ChannelID, n int) []domain.ChatEvent {
	return s.ring.Recent(channel, n)
}
