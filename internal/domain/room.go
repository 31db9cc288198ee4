package domain

import (
	"encoding/json"
	"slices"
)

// MaxPlayers is the room capacity.
const MaxPlayers = 2

type RoomID string

// Room is a session of at most MaxPlayers participants kept in join order.
// State is reserved for game-specific data and stays empty.
type Room struct {
	ID      RoomID
	Players []Participant
	State   json.RawMessage
}

func NewRoom(id RoomID, creator Participant) *Room {
	return &Room{
		ID:      id,
		Players: []Participant{creator},
	}
}

func (r *Room) Len() int     { return len(r.Players) }
func (r *Room) IsFull() bool { return len(r.Players) >= MaxPlayers }
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

func (r *Room) Has(id PlayerID) bool {
	return slices.ContainsFunc(r.Players, func(p Participant) bool { return p.ID == id })
}

// AddPlayer appends p, refusing once the room holds MaxPlayers.
func (r *Room) AddPlayer(p Participant) error {
	if r.IsFull() {
		return ErrRoomFull
	}
	r.Players = append(r.Players, p)
	return nil
}

// RemovePlayer drops every entry with the given id and reports whether any
// was found. A connection joining its own room twice holds two seats.
func (r *Room) RemovePlayer(id PlayerID) bool {
	n := len(r.Players)
	r.Players = slices.DeleteFunc(r.Players, func(p Participant) bool { return p.ID == id })
	return len(r.Players) != n
}

// Snapshot returns a copy of the participant list, safe to hand to other goroutines.
func (r *Room) Snapshot() []Participant {
	return slices.Clone(r.Players)
}
