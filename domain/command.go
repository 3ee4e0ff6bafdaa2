package domain

import (
	"time"
)

type Command interface {
	Actor() ActorContext
}

type PlacePixelCommand struct {
	Requester ActorContext
	X         int
	Y         int
	Color     string
	At        time.Time
}

func (p PlacePixelCommand) Actor() ActorContext {
	return p.Requester
}

type PostMessageCommand struct {
	Requester ActorContext
	Channel   ChannelID
	Content   string
	At        time.Time
}

func (p PostMessageCommand) Actor() ActorContext {
	return p.Requester
}
