package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteTokenHashing(t *testing.T) {
	invite := Invite{Email: "novo@igreja.dev"}
	require.NoError(t, invite.SetToken("raw-invite-token"))

	assert.NotEqual(t, "raw-invite-token", invite.TokenHash)
	assert.True(t, invite.MatchToken("raw-invite-token"))
	assert.False(t, invite.MatchToken("wrong-token"))
}

func TestInviteExpiry(t *testing.T) {
	now := time.Now()
	invite := Invite{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, invite.Expired(now))
	assert.True(t, invite.Expired(now.Add(2*time.Hour)))
}

func TestInviteAccepted(t *testing.T) {
	invite := Invite{}
	assert.False(t, invite.Accepted())

	now := time.Now()
	invite.AcceptedAt = &now
	assert.True(t, invite.Accepted())
}
