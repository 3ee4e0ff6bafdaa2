package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"canvas-lab/errors"
)

func TestNormalizeColor(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "Canonical form passes through", input: "#FF00AA", expected: "#FF00AA"},
		{name: "Lowercase is uppercased", input: "#ff00aa", expected: "#FF00AA"},
		{name: "Missing hash is prepended", input: "ff00aa", expected: "#FF00AA"},
		{name: "Surrounding spaces are trimmed", input: "  #ff00aa  ", expected: "#FF00AA"},
		{name: "Short form is refused", input: "#fff", err: errors.ErrInvalidColor},
		{name: "Non-hex digits are refused", input: "#GG0000", err: errors.ErrInvalidColor},
		{name: "Too long is refused", input: "#ff00aa0", err: errors.ErrInvalidColor},
		{name: "Empty is refused", input: "", err: errors.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeColor(tt.input)
			if tt.err != nil {
				req.ErrorIs(err, tt.err)
				return
			}
			req.NoError(err)
			req.Equal(tt.expected, got)
		})
	}
}

func TestValidateContent(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateContent("hello", 500))
	req.ErrorIs(ValidateContent("", 500), errors.ErrEmptyContent)
	req.ErrorIs(ValidateContent("   ", 500), errors.ErrEmptyContent)
	req.ErrorIs(ValidateContent(strings.Repeat("a", 501), 500), errors.ErrContentTooLong)

	// Length counts runes, not bytes
	req.NoError(ValidateContent(strings.Repeat("é", 500), 500))
}

func TestChannelID_GroupID(t *testing.T) {
	req := require.New(t)

	groupID, ok := GroupChannel("42").GroupID()
	req.True(ok)
	req.Equal("42", groupID)

	_, ok = GlobalChannel.GroupID()
	req.False(ok)

	_, ok = ChannelID("canvas").GroupID()
	req.False(ok)
}

func TestActorContext_Keys(t *testing.T) {
	req := require.New(t)
	a := ActorContext{UserID: "alice", ConnectionID: "conn-1"}

	req.False(a.Anonymous())
	req.True(ActorContext{}.Anonymous())

	req.Equal(ActionKey{User: "alice", Kind: ActionDrawPixel}, a.Key(ActionDrawPixel))
	req.Equal(ActionKey{User: "alice", Kind: ActionSendGroupMessage, Scope: "42"},
		a.ScopedKey(ActionSendGroupMessage, "42"))
}
