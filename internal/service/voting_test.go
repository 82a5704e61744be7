package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planning_poker/internal/models"
)

func TestVote(t *testing.T) {
	t.Run("records the value for the voter", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		player, revealed, err := voting.Vote(room.Code, "conn-1", "8")
		require.NoError(t, err)

		assert.False(t, revealed)
		assert.Equal(t, "Alice", player.Name)
		assert.Equal(t, "8", room.Cards[0].Votes["conn-1"])
	})

	t.Run("unknown room", func(t *testing.T) {
		_, voting := newTestServices(t)
		_, _, err := voting.Vote("NOSUCH", "conn-1", "8")
		assert.ErrorIs(t, err, models.ErrRoomNotFound)
	})

	t.Run("unknown identity", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-404", "8")
		assert.ErrorIs(t, err, models.ErrPlayerNotInRoom)
	})

	t.Run("spectators cannot vote", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		in := defaultInput()
		in.OwnerName = ""
		room, _, err := rooms.CreateRoom(in, "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "8")
		assert.ErrorIs(t, err, models.ErrSpectatorCannotVote)
	})

	t.Run("value must belong to the scale", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "7")
		assert.ErrorIs(t, err, models.ErrInvalidVoteValue)

		_, _, err = voting.Vote(room.Code, "conn-1", models.VoteUnsure)
		assert.NoError(t, err, "the unsure sentinel is part of every scale")
	})

	t.Run("break votes need coffee breaks enabled", func(t *testing.T) {
		rooms, voting := newTestServices(t)

		plain, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)
		_, _, err = voting.Vote(plain.Code, "conn-1", models.VoteBreak)
		assert.ErrorIs(t, err, models.ErrInvalidVoteValue)

		in := defaultInput()
		in.CoffeeBreakEnabled = true
		coffee, _, err := rooms.CreateRoom(in, "conn-2")
		require.NoError(t, err)
		_, _, err = voting.Vote(coffee.Code, "conn-2", models.VoteBreak)
		assert.NoError(t, err)
	})

	t.Run("post-reveal vote overwrites without changing state", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "5")
		require.NoError(t, err)
		_, err = voting.Reveal(room.Code, "conn-1")
		require.NoError(t, err)

		_, revealed, err := voting.Vote(room.Code, "conn-1", "13")
		require.NoError(t, err)

		assert.True(t, revealed)
		assert.Equal(t, models.StateRevealed, room.State)
		assert.Equal(t, "13", room.Cards[0].Votes["conn-1"])
	})
}

func TestReveal(t *testing.T) {
	t.Run("owner only", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)
		_, _, _, err = rooms.JoinRoom(room.Code, "Bob", "conn-2")
		require.NoError(t, err)

		_, err = voting.Reveal(room.Code, "conn-2")
		assert.ErrorIs(t, err, models.ErrNotOwner)
	})

	t.Run("returns named votes with consensus and average", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		in := defaultInput()
		in.CoffeeBreakEnabled = true
		room, _, err := rooms.CreateRoom(in, "conn-1")
		require.NoError(t, err)
		_, _, _, err = rooms.JoinRoom(room.Code, "Bob", "conn-2")
		require.NoError(t, err)
		_, _, _, err = rooms.JoinRoom(room.Code, "Carol", "conn-3")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "5")
		require.NoError(t, err)
		_, _, err = voting.Vote(room.Code, "conn-2", "5")
		require.NoError(t, err)
		_, _, err = voting.Vote(room.Code, "conn-3", models.VoteBreak)
		require.NoError(t, err)

		payload, err := voting.Reveal(room.Code, "conn-1")
		require.NoError(t, err)

		assert.Equal(t, models.StateRevealed, room.State)
		assert.Equal(t, map[string]string{
			"Alice": "5",
			"Bob":   "5",
			"Carol": models.VoteBreak,
		}, payload.Votes)
		require.NotNil(t, payload.Consensus)
		assert.Equal(t, "5", *payload.Consensus)
		require.NotNil(t, payload.Average)
		assert.InDelta(t, 5.0, *payload.Average, 0.001)
		assert.Equal(t, 1, payload.BreakCount)
	})

	t.Run("double reveal fails", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, err = voting.Reveal(room.Code, "conn-1")
		require.NoError(t, err)
		_, err = voting.Reveal(room.Code, "conn-1")
		assert.ErrorIs(t, err, models.ErrAlreadyRevealed)
	})
}

func TestAcceptEstimate(t *testing.T) {
	t.Run("stores any string verbatim", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		payload, err := voting.AcceptEstimate(room.Code, "conn-1", "6.5 days")
		require.NoError(t, err)

		assert.Equal(t, "6.5 days", payload.Value)
		assert.Equal(t, "6.5 days", room.Cards[0].AcceptedEstimate)
	})

	t.Run("owner only", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)
		_, _, _, err = rooms.JoinRoom(room.Code, "Bob", "conn-2")
		require.NoError(t, err)

		_, err = voting.AcceptEstimate(room.Code, "conn-2", "8")
		assert.ErrorIs(t, err, models.ErrNotOwner)
	})
}

func TestRevote(t *testing.T) {
	rooms, voting := newTestServices(t)
	in := defaultInput()
	in.SessionMinutes = 10
	room, _, err := rooms.CreateRoom(in, "conn-1")
	require.NoError(t, err)

	_, _, err = voting.Vote(room.Code, "conn-1", "8")
	require.NoError(t, err)
	_, err = voting.Reveal(room.Code, "conn-1")
	require.NoError(t, err)
	_, err = voting.AcceptEstimate(room.Code, "conn-1", "8")
	require.NoError(t, err)

	payload, err := voting.Revote(room.Code, "conn-1")
	require.NoError(t, err)

	assert.Equal(t, models.StateVoting, room.State)
	assert.Empty(t, room.Cards[0].Votes)
	assert.Empty(t, room.Cards[0].AcceptedEstimate)
	assert.NotNil(t, payload.CardTimerStartedAt)
	assert.Equal(t, room.Cards[0].Subject, payload.Card.Subject)
}

func TestNextQuestion(t *testing.T) {
	t.Run("auto-accepts the consensus when none was accepted", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)
		_, _, _, err = rooms.JoinRoom(room.Code, "Bob", "conn-2")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "8")
		require.NoError(t, err)
		_, _, err = voting.Vote(room.Code, "conn-2", "8")
		require.NoError(t, err)
		_, err = voting.Reveal(room.Code, "conn-1")
		require.NoError(t, err)

		payload, finished, err := voting.NextQuestion(room.Code, "conn-1")
		require.NoError(t, err)

		assert.False(t, finished)
		assert.Equal(t, "8", room.Cards[0].AcceptedEstimate)
		assert.Equal(t, 1, room.CurrentCardIndex)
		assert.Equal(t, models.StateVoting, room.State)
		assert.Equal(t, room.Cards[1].Subject, payload.Card.Subject)
	})

	t.Run("manual accept is never overwritten", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "8")
		require.NoError(t, err)
		_, err = voting.AcceptEstimate(room.Code, "conn-1", "13")
		require.NoError(t, err)

		_, _, err = voting.NextQuestion(room.Code, "conn-1")
		require.NoError(t, err)

		assert.Equal(t, "13", room.Cards[0].AcceptedEstimate)
	})

	t.Run("no consensus leaves the estimate empty", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)
		_, _, _, err = rooms.JoinRoom(room.Code, "Bob", "conn-2")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "5")
		require.NoError(t, err)
		_, _, err = voting.Vote(room.Code, "conn-2", "8")
		require.NoError(t, err)

		_, _, err = voting.NextQuestion(room.Code, "conn-1")
		require.NoError(t, err)

		assert.Empty(t, room.Cards[0].AcceptedEstimate)
	})

	t.Run("advancing past the last card finishes the session", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			_, finished, err := voting.NextQuestion(room.Code, "conn-1")
			require.NoError(t, err)
			require.False(t, finished)
		}

		payload, finished, err := voting.NextQuestion(room.Code, "conn-1")
		require.NoError(t, err)

		assert.True(t, finished)
		assert.Nil(t, payload)
		assert.Equal(t, models.StateFinished, room.State)
		assert.Equal(t, len(room.Cards), room.CurrentCardIndex)

		// Nothing left to act on
		_, _, err = voting.Vote(room.Code, "conn-1", "5")
		assert.ErrorIs(t, err, models.ErrNoActiveCard)
		_, _, err = voting.NextQuestion(room.Code, "conn-1")
		assert.ErrorIs(t, err, models.ErrNoActiveCard)
	})
}

func TestResults(t *testing.T) {
	t.Run("round-trip keeps every question including unvoted ones", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "5")
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, _, err := voting.NextQuestion(room.Code, "conn-1")
			require.NoError(t, err)
		}

		payload, err := voting.Results(room.Code)
		require.NoError(t, err)

		require.Len(t, payload.Results, 3)
		assert.Equal(t, "login page", payload.Results[0].Subject)
		assert.Equal(t, map[string]string{"Alice": "5"}, payload.Results[0].Votes)
		assert.Equal(t, "5", payload.Results[0].AcceptedEstimate)
		assert.Empty(t, payload.Results[1].Votes)
		assert.Empty(t, payload.Results[2].Votes)
	})

	t.Run("ordered by original index regardless of shuffle", func(t *testing.T) {
		rooms, voting := newTestServices(t)

		lines := ""
		for i := 0; i < 12; i++ {
			lines += fmt.Sprintf("task %d\n", i)
		}
		in := defaultInput()
		in.Questions = lines
		in.Shuffle = true

		room, _, err := rooms.CreateRoom(in, "conn-1")
		require.NoError(t, err)

		payload, err := voting.Results(room.Code)
		require.NoError(t, err)

		require.Len(t, payload.Results, 12)
		for i, entry := range payload.Results {
			assert.Equal(t, i+1, entry.Position)
			assert.Equal(t, fmt.Sprintf("task %d", i), entry.Subject)
		}
	})

	t.Run("orphaned votes are skipped silently", func(t *testing.T) {
		rooms, voting := newTestServices(t)
		room, _, err := rooms.CreateRoom(defaultInput(), "conn-1")
		require.NoError(t, err)

		_, _, err = voting.Vote(room.Code, "conn-1", "5")
		require.NoError(t, err)

		// Simulate the narrow race of a vote whose player is gone
		room.Mutex.Lock()
		room.Cards[0].Votes["conn-gone"] = "8"
		room.Mutex.Unlock()

		payload, err := voting.Results(room.Code)
		require.NoError(t, err)

		assert.Equal(t, map[string]string{"Alice": "5"}, payload.Results[0].Votes)
	})
}
