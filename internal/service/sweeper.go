package service

import (
	"log"
	"time"
)

// Sweeper periodically evicts expired disconnected players and empty
// rooms, independent of request traffic
type Sweeper struct {
	rooms    *RoomService
	interval time.Duration
	stop     chan struct{}
}

func NewSweeper(rooms *RoomService, interval time.Duration) *Sweeper {
	return &Sweeper{
		rooms:    rooms,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run blocks until Stop is called; start it on its own goroutine
func (s *Sweeper) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			players, rooms := s.rooms.Sweep()
			if players > 0 || rooms > 0 {
				log.Printf("sweeper: removed %d expired players, %d empty rooms", players, rooms)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stop)
}
