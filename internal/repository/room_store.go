package repository

import (
	"strings"
	"sync"

	"planning_poker/internal/models"
)

// RoomStore is the in-memory registry of live rooms, keyed by room
// code. Rooms never touch disk; the whole session state is lost on
// restart by design.
//
// The store lock only guards the registry map. Everything inside a
// room is serialized by that room's own mutex, so operations on
// different rooms never contend.
type RoomStore struct {
	rooms map[string]*models.Room
	mutex sync.RWMutex
}

// NewRoomStore creates an empty store
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*models.Room),
	}
}

// normalizeCode makes room codes case-insensitive
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Add inserts a room under its code. It returns false without
// overwriting when the code is already taken.
func (s *RoomStore) Add(room *models.Room) bool {
	code := normalizeCode(room.Code)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.rooms[code]; exists {
		return false
	}
	s.rooms[code] = room
	return true
}

// Get returns a room by code, case-insensitively
func (s *RoomStore) Get(code string) (*models.Room, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	room, exists := s.rooms[normalizeCode(code)]
	return room, exists
}

// List returns a snapshot of all live rooms
func (s *RoomStore) List() []*models.Room {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rooms := make([]*models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Remove evicts a room from the registry
func (s *RoomStore) Remove(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.rooms, normalizeCode(code))
}

// Len returns the number of live rooms
func (s *RoomStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.rooms)
}
