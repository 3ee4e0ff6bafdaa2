package main

import (
	"time"

	"canvas-lab/domain"
	"canvas-lab/gate"
)

type Config struct {
	GridSize             int           `env:"GRID_SIZE,default=100"`
	RingCapacity         int           `env:"RING_CAPACITY,default=50"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=500"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	PresenceTTL          time.Duration `env:"PRESENCE_TTL,default=15m"`

	DrawCooldown        time.Duration `env:"DRAW_COOLDOWN,default=10s"`
	ChatCooldown        time.Duration `env:"CHAT_COOLDOWN,default=5s"`
	ChatLimit           int           `env:"CHAT_LIMIT,default=5"`
	ChatWindow          time.Duration `env:"CHAT_WINDOW,default=10s"`
	ChannelActionLimit  int           `env:"CHANNEL_ACTION_LIMIT,default=30"`
	ChannelActionWindow time.Duration `env:"CHANNEL_ACTION_WINDOW,default=10s"`
	ConnectLimit        int           `env:"CONNECT_LIMIT,default=5"`
	ConnectWindow       time.Duration `env:"CONNECT_WINDOW,default=1m"`

	ModerationCharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	CensoredWords             string `env:"CENSORED_WORDS"`
	Groups                    string `env:"GROUPS"`
	WarmChannels              string `env:"WARM_CHANNELS,default=chat:global"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	Host           string `env:"HOST,default=localhost"`
	Port           int    `env:"PORT,default=8080"`
}

// Policy builds the canonical pacing table from the environment.
func (c Config) Policy() gate.Policy {
	return gate.Policy{
		domain.ActionDrawPixel:         {Cooldown: c.DrawCooldown},
		domain.ActionSendGlobalMessage: {Cooldown: c.ChatCooldown, Limit: c.ChatLimit, Window: c.ChatWindow},
		domain.ActionSendGroupMessage:  {Cooldown: c.ChatCooldown, Limit: c.ChatLimit, Window: c.ChatWindow},
		domain.ActionChannelAction:     {Limit: c.ChannelActionLimit, Window: c.ChannelActionWindow},
		domain.ActionConnect:           {Limit: c.ConnectLimit, Window: c.ConnectWindow},
	}
}
