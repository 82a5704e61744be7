package service

import (
	"time"

	"planning_poker/internal/repository"
	"planning_poker/pkg/config"
)

type Services struct {
	Room      *RoomService
	Voting    *VotingService
	WebSocket *WebSocketManager
	Sweeper   *Sweeper
}

func NewServices(cfg *config.Config) *Services {
	store := repository.NewRoomStore()

	roomService := NewRoomService(
		store,
		NewCodeGenerator(),
		cfg.Room.MaxPlayers,
		time.Duration(cfg.Room.GracePeriodSeconds)*time.Second,
	)
	votingService := NewVotingService(roomService)
	wsManager := NewWebSocketManager()
	sweeper := NewSweeper(roomService, time.Duration(cfg.Room.SweepIntervalSeconds)*time.Second)

	return &Services{
		Room:      roomService,
		Voting:    votingService,
		WebSocket: wsManager,
		Sweeper:   sweeper,
	}
}
