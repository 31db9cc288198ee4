package signal

import (
	"encoding/json"

	"github.com/dkeye/Duel/internal/core"
)

// handleCreateRoom takes the room id as sent; "" is a key like any other.
func (ctl *SignalWSController) handleCreateRoom(sid core.SessionID, data json.RawMessage) {
	var p core.CreateRoomPayload
	if !decode(sid, core.EventCreateRoom, data, &p) {
		return
	}
	_ = ctl.Orch.CreateRoom(sid, p.RoomID, p.PlayerName)
}

func (ctl *SignalWSController) handleJoinRoom(sid core.SessionID, data json.RawMessage) {
	var p core.JoinRoomPayload
	if !decode(sid, core.EventJoinRoom, data, &p) {
		return
	}
	_ = ctl.Orch.JoinRoom(sid, p.RoomID, p.PlayerName)
}

// handleLeaveRoom leaves one room; the connection itself stays open.
func (ctl *SignalWSController) handleLeaveRoom(sid core.SessionID, data json.RawMessage) {
	var p core.LeaveRoomPayload
	if !decode(sid, core.EventLeaveRoom, data, &p) {
		return
	}
	ctl.Orch.LeaveRoom(sid, p.RoomID)
}
