package app

import (
	"slices"

	"github.com/dkeye/Duel/internal/core"
	"github.com/dkeye/Duel/internal/domain"
)

// RoomStore is the authoritative roomID -> Room mapping.
// It is not safe for concurrent use: the coordinator is its only owner and
// serializes every call.
type RoomStore struct {
	rooms map[domain.RoomID]*domain.Room
	order []domain.RoomID // creation order, for deterministic sweeps
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*domain.Room)}
}

// Create inserts a room holding exactly p.
func (s *RoomStore) Create(id domain.RoomID, p domain.Participant) (*domain.Room, error) {
	if _, ok := s.rooms[id]; ok {
		return nil, domain.ErrDuplicateRoom
	}
	room := domain.NewRoom(id, p)
	s.rooms[id] = room
	s.order = append(s.order, id)
	return room, nil
}

func (s *RoomStore) Get(id domain.RoomID) (*domain.Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

func (s *RoomStore) Delete(id domain.RoomID) {
	if _, ok := s.rooms[id]; !ok {
		return
	}
	delete(s.rooms, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// ForEach visits rooms in creation order. The visitor may delete the room it
// is given.
func (s *RoomStore) ForEach(visit func(*domain.Room)) {
	for _, id := range slices.Clone(s.order) {
		if room, ok := s.rooms[id]; ok {
			visit(room)
		}
	}
}

func (s *RoomStore) Len() int { return len(s.rooms) }

func (s *RoomStore) List() []core.RoomInfo {
	out := make([]core.RoomInfo, 0, len(s.rooms))
	s.ForEach(func(r *domain.Room) {
		out = append(out, core.NewRoomInfo(r))
	})
	return out
}
