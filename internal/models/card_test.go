package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardsFromText(t *testing.T) {
	t.Run("one card per non-blank line", func(t *testing.T) {
		cards := NewCardsFromText("first\n\n  \nsecond\n")

		require.Len(t, cards, 2)
		assert.Equal(t, "first", cards[0].Subject)
		assert.Equal(t, 0, cards[0].OriginalIndex)
		assert.Equal(t, "second", cards[1].Subject)
		assert.Equal(t, 1, cards[1].OriginalIndex)
	})

	t.Run("first separator splits subject and description", func(t *testing.T) {
		cards := NewCardsFromText("checkout | retries | edge cases")

		require.Len(t, cards, 1)
		assert.Equal(t, "checkout", cards[0].Subject)
		assert.Equal(t, "retries | edge cases", cards[0].Description)
	})

	t.Run("no separator means no description", func(t *testing.T) {
		cards := NewCardsFromText("plain subject")

		require.Len(t, cards, 1)
		assert.Equal(t, "plain subject", cards[0].Subject)
		assert.Empty(t, cards[0].Description)
	})

	t.Run("whitespace-only input yields nothing", func(t *testing.T) {
		assert.Empty(t, NewCardsFromText("  \n\t\n"))
		assert.Empty(t, NewCardsFromText(""))
	})
}

func TestCardResetVotes(t *testing.T) {
	card := &Card{
		Subject:          "s",
		AcceptedEstimate: "8",
		Votes:            map[string]string{"conn-1": "5"},
	}

	card.ResetVotes()

	assert.Empty(t, card.Votes)
	assert.Empty(t, card.AcceptedEstimate)
}

func TestScale(t *testing.T) {
	t.Run("unknown names fall back to fibonacci", func(t *testing.T) {
		assert.Equal(t, ScaleFibonacci, NormalizeScale("nope"))
		assert.Equal(t, ScaleTShirt, NormalizeScale("tshirt"))
	})

	t.Run("contains", func(t *testing.T) {
		assert.True(t, ScaleFibonacci.Contains("13"))
		assert.True(t, ScaleFibonacci.Contains(VoteUnsure))
		assert.False(t, ScaleFibonacci.Contains("7"))
		assert.False(t, ScaleFibonacci.Contains(VoteBreak), "break is a sentinel, not a scale value")
		assert.True(t, ScaleTShirt.Contains("XL"))
	})
}
