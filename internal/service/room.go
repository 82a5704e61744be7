package service

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"planning_poker/internal/models"
	"planning_poker/internal/repository"
)

// RoomService owns the room registry: creation, lookup, join,
// reconnect, disconnect and the periodic sweep. Every mutation of a
// single room runs under that room's mutex; the registry map itself is
// guarded by the store.
type RoomService struct {
	store *repository.RoomStore
	codes CodeGenerator

	rng   *rand.Rand
	rngMu sync.Mutex

	maxPlayers  int
	gracePeriod time.Duration

	now func() time.Time
}

// CreateRoomInput carries the facilitator's room settings
type CreateRoomInput struct {
	OwnerName          string
	Scale              string
	Questions          string
	SessionMinutes     int
	CoffeeBreakEnabled bool
	Shuffle            bool
}

func NewRoomService(store *repository.RoomStore, codes CodeGenerator, maxPlayers int, gracePeriod time.Duration) *RoomService {
	return &RoomService{
		store:       store,
		codes:       codes,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		maxPlayers:  maxPlayers,
		gracePeriod: gracePeriod,
		now:         time.Now,
	}
}

// CreateRoom parses the question text into cards, generates a unique
// room code and registers the room with its owner attached. A blank
// owner name creates the owner as a non-voting spectator, the
// facilitator-only setup.
func (s *RoomService) CreateRoom(in CreateRoomInput, ownerIdentity string) (*models.Room, *models.Player, error) {
	cards := models.NewCardsFromText(in.Questions)
	if len(cards) == 0 {
		return nil, nil, models.ErrEmptyInput
	}

	if in.Shuffle {
		s.rngMu.Lock()
		s.rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
		s.rngMu.Unlock()
	}

	now := s.now()
	owner := &models.Player{
		ID:               uuid.NewString(),
		Identity:         ownerIdentity,
		Name:             strings.TrimSpace(in.OwnerName),
		IsOwner:          true,
		WasOriginalOwner: true,
		JoinedAt:         now,
	}
	if owner.Name == "" {
		owner.Name = "Spectator"
		owner.IsSpectator = true
	}

	room := &models.Room{
		OwnerIdentity:      ownerIdentity,
		Scale:              models.NormalizeScale(in.Scale),
		Cards:              cards,
		Players:            map[string]*models.Player{ownerIdentity: owner},
		State:              models.StateVoting,
		SessionMinutes:     in.SessionMinutes,
		CoffeeBreakEnabled: in.CoffeeBreakEnabled,
		CreatedAt:          now,
	}
	if in.SessionMinutes > 0 {
		room.SecondsPerCard = in.SessionMinutes * 60 / len(cards)
		room.CardTimerStartedAt = now
	}

	// Codes collide rarely; on collision the store refuses the insert
	// and we draw again rather than overwrite a live room
	for {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, nil, err
		}
		room.Code = strings.ToUpper(code)
		if s.store.Add(room) {
			break
		}
	}

	return room, owner, nil
}

// GetRoom looks a room up by code, case-insensitively
func (s *RoomService) GetRoom(code string) (*models.Room, error) {
	room, ok := s.store.Get(code)
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom attaches a new player to a room. When a disconnected player
// with the same name exists this reconnects that player instead of
// creating a duplicate, which is the name-based rejoin fallback for
// clients that lost their token. The capacity limit only counts
// currently connected players.
func (s *RoomService) JoinRoom(code, name, identity string) (*models.Room, *models.Player, bool, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, nil, false, err
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if room.Closed {
		return nil, nil, false, models.ErrRoomNotFound
	}

	if existing, ok := room.Players[identity]; ok {
		return room, existing, false, nil
	}

	name = strings.TrimSpace(name)
	if ghost := room.FindByName(name); ghost != nil && !ghost.Connected() {
		s.reconnectLocked(room, ghost, identity)
		return room, ghost, true, nil
	}

	if room.ConnectedCount() >= s.maxPlayers {
		return nil, nil, false, models.ErrRoomFull
	}

	player := &models.Player{
		ID:       uuid.NewString(),
		Identity: identity,
		Name:     name,
		JoinedAt: s.now(),
	}
	room.Players[identity] = player

	return room, player, false, nil
}

// RejoinRoom reconnects a player by its stable id, the token-based
// rejoin path
func (s *RoomService) RejoinRoom(code, playerID, identity string) (*models.Room, *models.Player, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return nil, nil, err
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	if room.Closed {
		return nil, nil, models.ErrRoomNotFound
	}

	player := room.FindByPlayerID(playerID)
	if player == nil {
		return nil, nil, models.ErrPlayerNotInRoom
	}

	s.reconnectLocked(room, player, identity)
	return room, player, nil
}

// reconnectLocked rekeys a player onto a fresh transport identity:
// the player map entry, the vote entry on every card, and the room's
// owner reference all move together so ownership follows the stable
// player, not the connection. Caller holds the room mutex.
func (s *RoomService) reconnectLocked(room *models.Room, player *models.Player, newIdentity string) {
	oldIdentity := player.Identity

	delete(room.Players, oldIdentity)
	player.Identity = newIdentity
	player.DisconnectedAt = nil
	room.Players[newIdentity] = player

	for _, card := range room.Cards {
		if vote, ok := card.Votes[oldIdentity]; ok {
			delete(card.Votes, oldIdentity)
			card.Votes[newIdentity] = vote
		}
	}

	if player.IsOwner {
		room.OwnerIdentity = newIdentity
	}
}

// Disconnect marks the player behind a dropped connection as
// disconnected, without removing it; the sweeper forgets it after the
// grace period. When the owner drops, ownership moves to the earliest
// joined connected non-spectator; with no such player ownership stays
// put so the room is never ownerless.
func (s *RoomService) Disconnect(identity string) (*models.Room, *models.Player, *models.Player, bool) {
	room, ok := s.FindRoomByIdentity(identity)
	if !ok {
		return nil, nil, nil, false
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	player, ok := room.Players[identity]
	if !ok {
		return nil, nil, nil, false
	}

	now := s.now()
	player.DisconnectedAt = &now

	var newOwner *models.Player
	if player.IsOwner {
		if successor := ownerCandidateLocked(room, player); successor != nil {
			player.IsOwner = false
			successor.IsOwner = true
			room.OwnerIdentity = successor.Identity
			newOwner = successor
		}
	}

	return room, player, newOwner, true
}

// FindRoomByIdentity resolves which room a transport identity belongs
// to, used for disconnect notifications
func (s *RoomService) FindRoomByIdentity(identity string) (*models.Room, bool) {
	for _, room := range s.store.List() {
		room.Mutex.Lock()
		_, ok := room.Players[identity]
		room.Mutex.Unlock()
		if ok {
			return room, true
		}
	}
	return nil, false
}

// Sweep permanently removes players whose disconnect outlived the
// grace period, together with their votes, and evicts rooms left
// empty. This is the only path that forgets a player.
func (s *RoomService) Sweep() (removedPlayers, removedRooms int) {
	now := s.now()

	for _, room := range s.store.List() {
		room.Mutex.Lock()

		for identity, player := range room.Players {
			if player.Connected() || now.Sub(*player.DisconnectedAt) <= s.gracePeriod {
				continue
			}
			delete(room.Players, identity)
			for _, card := range room.Cards {
				delete(card.Votes, identity)
			}
			removedPlayers++
		}

		if len(room.Players) == 0 {
			room.Closed = true
			room.Mutex.Unlock()
			s.store.Remove(room.Code)
			removedRooms++
			continue
		}

		// Evicting the disconnected owner must not leave the room
		// ownerless for the players that remain
		if room.Owner() == nil {
			successor := ownerCandidateLocked(room, nil)
			if successor == nil {
				successor = sortedPlayersLocked(room)[0]
			}
			successor.IsOwner = true
			room.OwnerIdentity = successor.Identity
		}

		room.Mutex.Unlock()
	}

	return removedPlayers, removedRooms
}

// ownerCandidateLocked picks the ownership successor: the earliest
// joined connected non-spectator, excluding the departing owner.
// Caller holds the room mutex.
func ownerCandidateLocked(room *models.Room, exclude *models.Player) *models.Player {
	for _, player := range sortedPlayersLocked(room) {
		if player == exclude || player.IsSpectator || !player.Connected() {
			continue
		}
		return player
	}
	return nil
}

// sortedPlayersLocked returns the room's players ordered by join time,
// ties broken by stable id. Caller holds the room mutex.
func sortedPlayersLocked(room *models.Room) []*models.Player {
	players := make([]*models.Player, 0, len(room.Players))
	for _, player := range room.Players {
		players = append(players, player)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players
}

// Snapshot builds the full room-state payload for create and resync
func (s *RoomService) Snapshot(code string) (models.RoomSnapshot, error) {
	room, err := s.GetRoom(code)
	if err != nil {
		return models.RoomSnapshot{}, err
	}

	room.Mutex.Lock()
	defer room.Mutex.Unlock()

	return snapshotLocked(room), nil
}

// snapshotLocked assembles the public view of a room. Caller holds the
// room mutex.
func snapshotLocked(room *models.Room) models.RoomSnapshot {
	snapshot := models.RoomSnapshot{
		Code:               room.Code,
		Scale:              room.Scale,
		ScaleValues:        room.Scale.Values(),
		State:              room.State,
		CurrentCardIndex:   room.CurrentCardIndex,
		CardCount:          len(room.Cards),
		CoffeeBreakEnabled: room.CoffeeBreakEnabled,
		SecondsPerCard:     room.SecondsPerCard,
	}
	if room.TimerConfigured() && !room.CardTimerStartedAt.IsZero() {
		startedAt := room.CardTimerStartedAt
		snapshot.CardTimerStartedAt = &startedAt
	}

	if card := room.CurrentCard(); card != nil {
		snapshot.CurrentCard = &models.CardInfo{
			Subject:     card.Subject,
			Description: card.Description,
		}
	}

	card := room.CurrentCard()
	for _, player := range sortedPlayersLocked(room) {
		hasVoted := false
		if card != nil {
			_, hasVoted = card.Votes[player.Identity]
		}
		snapshot.Players = append(snapshot.Players, models.PlayerInfo{
			Name:        player.Name,
			IsOwner:     player.IsOwner,
			IsSpectator: player.IsSpectator,
			Connected:   player.Connected(),
			HasVoted:    hasVoted,
		})
	}

	return snapshot
}
