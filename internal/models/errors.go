package models

import "errors"

// Common errors returned by room and voting operations
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrEmptyInput          = errors.New("no questions provided")
	ErrRoomFull            = errors.New("room is full")
	ErrPlayerNotInRoom     = errors.New("player not in room")
	ErrSpectatorCannotVote = errors.New("spectators cannot vote")
	ErrInvalidVoteValue    = errors.New("invalid vote value")
	ErrNotOwner            = errors.New("only the room owner can perform this action")
	ErrAlreadyRevealed     = errors.New("votes already revealed")
	ErrNoActiveCard        = errors.New("no active card")
)
