package models

import "time"

// Event is one payload pushed to connected clients
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types
const (
	EventTypeRoomCreated      = "room_created"
	EventTypeRoomState        = "room_state"
	EventTypePlayerJoined     = "player_joined"
	EventTypePlayerLeft       = "player_left"
	EventTypeVoteSubmitted    = "vote_submitted"
	EventTypeVoteUpdated      = "vote_updated"
	EventTypeCardsRevealed    = "cards_revealed"
	EventTypeEstimateAccepted = "estimate_accepted"
	EventTypeNewRound         = "new_round"
	EventTypeGameFinished     = "game_finished"
	EventTypeError            = "error"
)

// PlayerInfo is the public view of a player
type PlayerInfo struct {
	Name        string `json:"name"`
	IsOwner     bool   `json:"isOwner"`
	IsSpectator bool   `json:"isSpectator"`
	Connected   bool   `json:"connected"`
	HasVoted    bool   `json:"hasVoted"`
}

// CardInfo is the public view of the card being voted on
type CardInfo struct {
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
}

// RoomSnapshot is the full room state sent on create and resync
type RoomSnapshot struct {
	Code               string       `json:"code"`
	Scale              ScaleType    `json:"scale"`
	ScaleValues        []string     `json:"scaleValues"`
	State              RoomState    `json:"state"`
	CurrentCardIndex   int          `json:"currentCardIndex"`
	CardCount          int          `json:"cardCount"`
	CurrentCard        *CardInfo    `json:"currentCard,omitempty"`
	Players            []PlayerInfo `json:"players"`
	SecondsPerCard     int          `json:"secondsPerCard,omitempty"`
	CardTimerStartedAt *time.Time   `json:"cardTimerStartedAt,omitempty"`
	CoffeeBreakEnabled bool         `json:"coffeeBreakEnabled"`
}

// RoomWelcome is sent only to the client that created, joined or
// rejoined a room; the token is its key for later rejoins
type RoomWelcome struct {
	Room        RoomSnapshot `json:"room"`
	PlayerName  string       `json:"playerName"`
	PlayerToken string       `json:"playerToken"`
}

// PlayerJoined announces a new or reconnected player
type PlayerJoined struct {
	Player    PlayerInfo `json:"player"`
	Reconnect bool       `json:"reconnect"`
}

// PlayerLeft announces a disconnect, with the successor when
// ownership moved
type PlayerLeft struct {
	Name     string `json:"name"`
	NewOwner string `json:"newOwner,omitempty"`
}

// VoteNotice is the anonymous notice that a player voted
type VoteNotice struct {
	Name string `json:"name"`
}

// VoteUpdate carries a value-visible vote change after reveal
type VoteUpdate struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RevealedPayload is the cards-revealed snapshot
type RevealedPayload struct {
	Subject    string            `json:"subject"`
	Votes      map[string]string `json:"votes"`
	Consensus  *string           `json:"consensus"`
	Average    *float64          `json:"average"`
	BreakCount int               `json:"breakCount"`
}

// EstimateAccepted announces the estimate stored for the current card
type EstimateAccepted struct {
	Subject string `json:"subject"`
	Value   string `json:"value"`
}

// NewRound announces the next card to vote on
type NewRound struct {
	Card               CardInfo   `json:"card"`
	CurrentCardIndex   int        `json:"currentCardIndex"`
	CardCount          int        `json:"cardCount"`
	SecondsPerCard     int        `json:"secondsPerCard,omitempty"`
	CardTimerStartedAt *time.Time `json:"cardTimerStartedAt,omitempty"`
}

// ResultEntry is one card of the final results, in original question
// order regardless of shuffling
type ResultEntry struct {
	Position         int               `json:"position"`
	Subject          string            `json:"subject"`
	Description      string            `json:"description,omitempty"`
	AcceptedEstimate string            `json:"acceptedEstimate,omitempty"`
	Votes            map[string]string `json:"votes"`
}

// ResultsPayload is the game-finished results snapshot
type ResultsPayload struct {
	Code    string        `json:"code"`
	Results []ResultEntry `json:"results"`
}
