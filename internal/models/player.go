package models

import "time"

// Player is one participant of a room. The stable ID survives
// reconnects; Identity is the ephemeral transport identity of the
// current connection and is rekeyed on every reconnect.
type Player struct {
	ID               string     `json:"-"`
	Identity         string     `json:"-"`
	Name             string     `json:"name"`
	IsOwner          bool       `json:"isOwner"`
	WasOriginalOwner bool       `json:"-"`
	IsSpectator      bool       `json:"isSpectator"`
	JoinedAt         time.Time  `json:"joinedAt"`
	DisconnectedAt   *time.Time `json:"-"`
}

// Connected reports whether the player currently has a live connection
func (p *Player) Connected() bool {
	return p.DisconnectedAt == nil
}
