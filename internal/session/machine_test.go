package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/menu"
	"github.com/pokeriot/station/internal/protocol"
)

const (
	cardA card.ID = "A1B2"
	cardB card.ID = "FFEE"
)

// actingMachine returns a machine with cardA bound
func actingMachine(t *testing.T, policy ResetPolicy) *Machine {
	t.Helper()
	m := NewMachine(policy)
	m.Scan(cardA, false)
	require.Equal(t, Acting, m.Phase())
	return m
}

// awaitingMachine returns a machine with a fold sent for cardA
func awaitingMachine(t *testing.T) *Machine {
	t.Helper()
	m := actingMachine(t, Continuity)
	_, err := m.Commit(menu.PendingAction{Kind: menu.Fold})
	require.NoError(t, err)
	require.Equal(t, AwaitingReconfirm, m.Phase())
	return m
}

func TestScanBindsAndJoinsOnce(t *testing.T) {
	m := NewMachine(Continuity)

	out := m.Scan(cardA, false)
	assert.Equal(t, Acting, m.Phase())
	assert.Equal(t, cardA, m.Session().BoundCard)
	assert.NotEmpty(t, m.Session().CycleID)
	require.Len(t, out.Send, 1)
	assert.Equal(t, protocol.NewAddPlayer("A1B2"), out.Send[0])

	// complete the cycle and scan again in the same game
	_, err := m.Commit(menu.PendingAction{Kind: menu.Check})
	require.NoError(t, err)
	m.Scan(cardA, false)
	require.Equal(t, Idle, m.Phase())

	out = m.Scan(cardA, false)
	assert.Equal(t, Acting, m.Phase())
	assert.Empty(t, out.Send, "join is sent once per card per game")
}

func TestScanWhileRegistering(t *testing.T) {
	m := NewMachine(Continuity)

	out := m.Scan(cardA, true)
	assert.Equal(t, Idle, m.Phase(), "menu stays disarmed during registration")
	require.Len(t, out.Send, 1)
	assert.Equal(t, protocol.NewRegisterPlayer("A1B2"), out.Send[0])
	assert.True(t, m.Joined(cardA))

	out = m.Scan(cardA, true)
	assert.Empty(t, out.Send)

	m.ResetRound()
	assert.Equal(t, Acting, m.Phase(), "round start arms the registered seat card")
	assert.Equal(t, cardA, m.Session().BoundCard)
}

func TestCommitSendsActionImmediately(t *testing.T) {
	m := actingMachine(t, Continuity)

	out, err := m.Commit(menu.PendingAction{Kind: menu.Fold})
	require.NoError(t, err)

	assert.Equal(t, AwaitingReconfirm, m.Phase())
	require.Len(t, out.Send, 1)
	assert.Equal(t, protocol.NewActionUpdate("fold", 0, "A1B2"), out.Send[0])
	require.NotNil(t, out.Notice)
	assert.Equal(t, "Confirm Action", out.Notice.Line1)

	s := m.Session()
	assert.True(t, s.ActionCommitted)
	require.NotNil(t, s.Pending)
	assert.Equal(t, menu.PendingAction{Kind: menu.Fold}, *s.Pending)
}

func TestCommitRequiresActing(t *testing.T) {
	m := NewMachine(Continuity)
	_, err := m.Commit(menu.PendingAction{Kind: menu.Fold})
	assert.ErrorIs(t, err, ErrNotActing)

	m = awaitingMachine(t)
	_, err = m.Commit(menu.PendingAction{Kind: menu.Check})
	assert.ErrorIs(t, err, ErrNotActing)
}

func TestWrongCardAtReconfirm(t *testing.T) {
	m := awaitingMachine(t)
	before := m.Session()

	out := m.Scan(cardB, false)

	assert.Empty(t, out.Send, "wrong card must not resend")
	require.NotNil(t, out.Notice)
	assert.Equal(t, Notice{Line1: "Wrong card", Line2: "Scan again"}, *out.Notice)
	assert.Equal(t, before, m.Session(), "state is unchanged")
}

func TestSameCardFinalizes(t *testing.T) {
	m := awaitingMachine(t)

	out := m.Scan(cardA, false)

	assert.Empty(t, out.Send)
	assert.Equal(t, Idle, m.Phase())
	s := m.Session()
	assert.Nil(t, s.Pending)
	assert.False(t, s.ActionCommitted)
	assert.True(t, s.BoundCard.IsZero())
	require.NotNil(t, out.Notice)
	assert.Equal(t, "Action Confirmed", out.Notice.Line1)
}

func TestScanIgnoredWhileActing(t *testing.T) {
	m := actingMachine(t, Continuity)
	out := m.Scan(cardB, false)
	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, cardA, m.Session().BoundCard)
}

func TestResetRound(t *testing.T) {
	t.Run("continuity rebinds the seat card", func(t *testing.T) {
		m := awaitingMachine(t)

		m.ResetRound()

		s := m.Session()
		assert.Equal(t, Acting, s.Phase)
		assert.Equal(t, cardA, s.BoundCard)
		assert.Nil(t, s.Pending)
		assert.False(t, s.ActionCommitted)

		_, err := m.Commit(menu.PendingAction{Kind: menu.Check})
		assert.NoError(t, err, "menu is armed without a new scan")
	})

	t.Run("continuity without a seat card stays idle", func(t *testing.T) {
		m := NewMachine(Continuity)
		m.ResetRound()
		assert.Equal(t, Idle, m.Phase())
	})

	t.Run("rescan requires a scan and does not rejoin", func(t *testing.T) {
		m := actingMachine(t, Rescan)
		_, err := m.Commit(menu.PendingAction{Kind: menu.Fold})
		require.NoError(t, err)

		m.ResetRound()

		s := m.Session()
		assert.Equal(t, Idle, s.Phase)
		assert.True(t, s.BoundCard.IsZero())
		assert.Nil(t, s.Pending)

		out := m.Scan(cardA, false)
		assert.Equal(t, Acting, m.Phase())
		assert.Empty(t, out.Send)
	})
}

func TestEndGameForgetsJoins(t *testing.T) {
	m := actingMachine(t, Continuity)

	m.EndGame()
	assert.Equal(t, Acting, m.Phase(), "game end is not a transition")
	assert.False(t, m.Joined(cardA))

	m.ResetRound()
	assert.Equal(t, Idle, m.Phase(), "a new game needs a fresh scan")

	out := m.Scan(cardA, false)
	require.Len(t, out.Send, 1)
	assert.Equal(t, protocol.TagAddPlayer, out.Send[0].OutboundTag())
}

func TestCancel(t *testing.T) {
	m := actingMachine(t, Continuity)
	out := m.Cancel()
	assert.Equal(t, Idle, m.Phase())
	require.NotNil(t, out.Notice)

	m = awaitingMachine(t)
	assert.Equal(t, Outcome{}, m.Cancel(), "a sent action cannot be cancelled")
	assert.Equal(t, AwaitingReconfirm, m.Phase())
}

func TestParseResetPolicy(t *testing.T) {
	p, err := ParseResetPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Continuity, p)

	p, err = ParseResetPolicy("rescan")
	require.NoError(t, err)
	assert.Equal(t, Rescan, p)

	_, err = ParseResetPolicy("sometimes")
	assert.Error(t, err)
}
