package service

import (
	"sort"
	"time"

	"planning_poker/internal/models"
	"planning_poker/internal/repository"
)

// VotingService runs the per-card voting state machine:
// voting -> revealed -> voting (revote) on the same card, and
// voting/revealed -> voting on the next card until the session
// finishes. All operations run under the room mutex.
type VotingService struct {
	store *repository.RoomStore
	now   func() time.Time
}

func NewVotingService(rooms *RoomService) *VotingService {
	return &VotingService{
		store: rooms.store,
		now:   time.Now,
	}
}

// withRoom resolves a room and runs fn with its mutex held
func (s *VotingService) withRoom(code string, fn func(*models.Room) error) error {
	room, ok := s.store.Get(code)
	if !ok {
		return models.ErrRoomNotFound
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if room.Closed {
		return models.ErrRoomNotFound
	}
	return fn(room)
}

// memberLocked resolves the acting player. Caller holds the room mutex.
func memberLocked(room *models.Room, identity string) (*models.Player, error) {
	player, ok := room.Players[identity]
	if !ok {
		return nil, models.ErrPlayerNotInRoom
	}
	return player, nil
}

// ownerLocked resolves the acting player and requires it to hold
// ownership. Caller holds the room mutex.
func ownerLocked(room *models.Room, identity string) (*models.Player, error) {
	player, err := memberLocked(room, identity)
	if err != nil {
		return nil, err
	}
	if !player.IsOwner {
		return nil, models.ErrNotOwner
	}
	return player, nil
}

// Vote records a player's estimate for the current card. Voting is
// allowed both before and after the reveal; a post-reveal vote just
// overwrites the stored value. The second return reports whether the
// room was already revealed, so the caller can broadcast the value
// instead of an anonymous notice.
func (s *VotingService) Vote(code, identity, value string) (*models.Player, bool, error) {
	var player *models.Player
	var revealed bool

	err := s.withRoom(code, func(room *models.Room) error {
		var err error
		player, err = memberLocked(room, identity)
		if err != nil {
			return err
		}
		if player.IsSpectator {
			return models.ErrSpectatorCannotVote
		}

		card := room.CurrentCard()
		if card == nil {
			return models.ErrNoActiveCard
		}

		if !room.Scale.Contains(value) && !(value == models.VoteBreak && room.CoffeeBreakEnabled) {
			return models.ErrInvalidVoteValue
		}

		card.Votes[identity] = value
		revealed = room.State == models.StateRevealed
		return nil
	})

	return player, revealed, err
}

// Reveal flips the current card face up and returns the named votes
// with consensus, average and break count
func (s *VotingService) Reveal(code, identity string) (*models.RevealedPayload, error) {
	var payload *models.RevealedPayload

	err := s.withRoom(code, func(room *models.Room) error {
		if _, err := ownerLocked(room, identity); err != nil {
			return err
		}

		card := room.CurrentCard()
		if card == nil {
			return models.ErrNoActiveCard
		}
		if room.State != models.StateVoting {
			return models.ErrAlreadyRevealed
		}

		room.State = models.StateRevealed
		payload = revealedLocked(room, card)
		return nil
	})

	return payload, err
}

// AcceptEstimate stores the owner's chosen estimate verbatim. The
// value is deliberately not checked against the scale so the owner can
// override with anything, including values the room never voted on.
func (s *VotingService) AcceptEstimate(code, identity, value string) (*models.EstimateAccepted, error) {
	var payload *models.EstimateAccepted

	err := s.withRoom(code, func(room *models.Room) error {
		if _, err := ownerLocked(room, identity); err != nil {
			return err
		}

		card := room.CurrentCard()
		if card == nil {
			return models.ErrNoActiveCard
		}

		card.AcceptedEstimate = value
		payload = &models.EstimateAccepted{Subject: card.Subject, Value: value}
		return nil
	})

	return payload, err
}

// Revote clears the current card and starts the round over
func (s *VotingService) Revote(code, identity string) (*models.NewRound, error) {
	var payload *models.NewRound

	err := s.withRoom(code, func(room *models.Room) error {
		if _, err := ownerLocked(room, identity); err != nil {
			return err
		}

		card := room.CurrentCard()
		if card == nil {
			return models.ErrNoActiveCard
		}

		card.ResetVotes()
		room.State = models.StateVoting
		restartTimerLocked(room, s.now())

		payload = newRoundLocked(room, card)
		return nil
	})

	return payload, err
}

// NextQuestion advances the session to the next card. A card left
// without an accepted estimate but with votes gets the consensus
// auto-accepted first; a value the owner accepted manually is never
// overwritten. Advancing past the last card finishes the session and
// returns a nil round.
func (s *VotingService) NextQuestion(code, identity string) (*models.NewRound, bool, error) {
	var payload *models.NewRound
	var finished bool

	err := s.withRoom(code, func(room *models.Room) error {
		if _, err := ownerLocked(room, identity); err != nil {
			return err
		}

		card := room.CurrentCard()
		if card == nil {
			return models.ErrNoActiveCard
		}

		if card.AcceptedEstimate == "" && len(card.Votes) > 0 {
			if value, ok := Consensus(voteValuesLocked(card)); ok {
				card.AcceptedEstimate = value
			}
		}

		room.CurrentCardIndex++
		next := room.CurrentCard()
		if next == nil {
			room.State = models.StateFinished
			finished = true
			return nil
		}

		room.State = models.StateVoting
		restartTimerLocked(room, s.now())
		payload = newRoundLocked(room, next)
		return nil
	})

	return payload, finished, err
}

// Results reports every card in original question order with its
// accepted estimate and votes by display name. Votes whose identity no
// longer resolves to a player are skipped; they are leftovers of a
// narrow disconnect race, not corruption.
func (s *VotingService) Results(code string) (*models.ResultsPayload, error) {
	var payload *models.ResultsPayload

	err := s.withRoom(code, func(room *models.Room) error {
		cards := make([]*models.Card, len(room.Cards))
		copy(cards, room.Cards)
		sort.Slice(cards, func(i, j int) bool {
			return cards[i].OriginalIndex < cards[j].OriginalIndex
		})

		results := make([]models.ResultEntry, 0, len(cards))
		for _, card := range cards {
			entry := models.ResultEntry{
				Position:         card.OriginalIndex + 1,
				Subject:          card.Subject,
				Description:      card.Description,
				AcceptedEstimate: card.AcceptedEstimate,
				Votes:            namedVotesLocked(room, card),
			}
			results = append(results, entry)
		}

		payload = &models.ResultsPayload{Code: room.Code, Results: results}
		return nil
	})

	return payload, err
}

// revealedLocked builds the cards-revealed payload. Caller holds the
// room mutex.
func revealedLocked(room *models.Room, card *models.Card) *models.RevealedPayload {
	values := voteValuesLocked(card)

	payload := &models.RevealedPayload{
		Subject:    card.Subject,
		Votes:      namedVotesLocked(room, card),
		Average:    Average(values),
		BreakCount: CountBreakVotes(values),
	}
	if value, ok := Consensus(values); ok {
		payload.Consensus = &value
	}
	return payload
}

// namedVotesLocked maps a card's votes from transport identity to
// display name, silently dropping orphaned entries. Caller holds the
// room mutex.
func namedVotesLocked(room *models.Room, card *models.Card) map[string]string {
	votes := make(map[string]string, len(card.Votes))
	for identity, value := range card.Votes {
		player, ok := room.Players[identity]
		if !ok {
			continue
		}
		votes[player.Name] = value
	}
	return votes
}

// voteValuesLocked collects a card's raw vote values. Caller holds the
// room mutex.
func voteValuesLocked(card *models.Card) []string {
	values := make([]string, 0, len(card.Votes))
	for _, value := range card.Votes {
		values = append(values, value)
	}
	return values
}

// newRoundLocked builds the new-round payload. Caller holds the room
// mutex.
func newRoundLocked(room *models.Room, card *models.Card) *models.NewRound {
	payload := &models.NewRound{
		Card: models.CardInfo{
			Subject:     card.Subject,
			Description: card.Description,
		},
		CurrentCardIndex: room.CurrentCardIndex,
		CardCount:        len(room.Cards),
		SecondsPerCard:   room.SecondsPerCard,
	}
	if room.TimerConfigured() {
		startedAt := room.CardTimerStartedAt
		payload.CardTimerStartedAt = &startedAt
	}
	return payload
}

// restartTimerLocked restamps the advisory per-card timer when the
// session is timed. Caller holds the room mutex.
func restartTimerLocked(room *models.Room, now time.Time) {
	if room.TimerConfigured() {
		room.CardTimerStartedAt = now
	}
}
