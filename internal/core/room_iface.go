package core

import "github.com/dkeye/Duel/internal/domain"

// Broadcaster is the part of the connection registry the coordinator needs:
// point-to-point sends, room-group fan-out and group membership.
// Implementations must not block on a slow connection.
type Broadcaster interface {
	Send(sid SessionID, ev Event)
	Emit(room domain.RoomID, ev Event)
	JoinGroup(sid SessionID, room domain.RoomID)
	LeaveGroup(sid SessionID, room domain.RoomID)
}

// RoomInfo is a read-only view of a room for APIs.
type RoomInfo struct {
	ID      domain.RoomID        `json:"id"`
	Players []domain.Participant `json:"players"`
	Full    bool                 `json:"full"`
}

func NewRoomInfo(r *domain.Room) RoomInfo {
	return RoomInfo{ID: r.ID, Players: r.Snapshot(), Full: r.IsFull()}
}
