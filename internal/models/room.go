package models

import (
	"strings"
	"sync"
	"time"
)

// RoomState is the voting state machine position of a room
type RoomState string

const (
	StateVoting   RoomState = "voting"
	StateRevealed RoomState = "revealed"
	StateFinished RoomState = "finished"
)

// Room is one estimation session: its cards, its players keyed by
// transport identity, and the session configuration.
//
// All mutation of a room happens under Mutex; the helper methods below
// expect the caller to hold it.
type Room struct {
	Code               string
	OwnerIdentity      string
	Scale              ScaleType
	Cards              []*Card
	CurrentCardIndex   int
	Players            map[string]*Player
	State              RoomState
	SessionMinutes     int
	SecondsPerCard     int
	CardTimerStartedAt time.Time
	CoffeeBreakEnabled bool
	CreatedAt          time.Time

	// Closed is set when the sweeper evicts the room; joins racing the
	// eviction observe it and fail with ErrRoomNotFound
	Closed bool

	Mutex sync.Mutex
}

// CurrentCard returns the card being voted on, or nil once the session
// advanced past the last card
func (r *Room) CurrentCard() *Card {
	if r.CurrentCardIndex >= len(r.Cards) {
		return nil
	}
	return r.Cards[r.CurrentCardIndex]
}

// ConnectedCount counts players with a live connection
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected() {
			n++
		}
	}
	return n
}

// FindByName returns the player with a case-insensitively matching
// display name, or nil
func (r *Room) FindByName(name string) *Player {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// FindByPlayerID returns the player with the given stable id, or nil
func (r *Room) FindByPlayerID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Owner returns the player holding ownership, or nil
func (r *Room) Owner() *Player {
	if p, ok := r.Players[r.OwnerIdentity]; ok {
		return p
	}
	return nil
}

// TimerConfigured reports whether the room runs an advisory per-card timer
func (r *Room) TimerConfigured() bool {
	return r.SecondsPerCard > 0
}
