package domain

// ActionKind identifies a pace-controlled kind of action.
type ActionKind string

const (
	ActionDrawPixel         ActionKind = "draw_pixel"
	ActionSendGlobalMessage ActionKind = "send_global_message"
	ActionSendGroupMessage  ActionKind = "send_group_message"
	ActionChannelAction     ActionKind = "channel_action"
	ActionConnect           ActionKind = "connect"
)

// ActorContext carries the logical actor behind a request.
// It is passed explicitly into every gated call; nothing in the
// engine resolves identity from ambient state.
type ActorContext struct {
	UserID       UserID
	ConnectionID string
}

func (a ActorContext) Anonymous() bool {
	return a.UserID == ""
}

// ActionKey is the pacing unit: one counter per actor and kind.
// Scope disambiguates otherwise identical actions, e.g. the group
// a message is sent to.
type ActionKey struct {
	User  UserID
	Kind  ActionKind
	Scope string
}

func (a ActorContext) Key(kind ActionKind) ActionKey {
	return ActionKey{User: a.UserID, Kind: kind}
}

func (a ActorContext) ScopedKey(kind ActionKind, scope string) ActionKey {
	return ActionKey{User: a.UserID, Kind: kind, Scope: scope}
}
