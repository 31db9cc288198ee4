package orch

import (
	"github.com/dkeye/Duel/internal/core"
	"github.com/dkeye/Duel/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateRoom opens roomID with sid as its only participant. On a collision the
// requester gets a roomError and nothing changes.
func (c *Coordinator) CreateRoom(sid core.SessionID, roomID domain.RoomID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.Create(roomID, domain.NewParticipant(domain.PlayerID(sid), name)); err != nil {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Err(err).Msg("create rejected")
		c.bc.Send(sid, core.RoomError(err))
		return err
	}
	c.bc.JoinGroup(sid, roomID)
	c.bc.Send(sid, core.RoomCreated(roomID))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("name", name).Msg("room created")
	return nil
}

// JoinRoom appends sid to an existing room that still has a free seat and
// announces the new roster. The join that fills the room also starts the game.
func (c *Coordinator) JoinRoom(sid core.SessionID, roomID domain.RoomID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.store.Get(roomID)
	if !ok {
		return c.reject(sid, roomID, domain.ErrRoomNotFound)
	}
	if err := room.AddPlayer(domain.NewParticipant(domain.PlayerID(sid), name)); err != nil {
		return c.reject(sid, roomID, err)
	}
	c.bc.JoinGroup(sid, roomID)

	players := room.Snapshot()
	c.bc.Emit(roomID, core.PlayerJoined(players))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("name", name).Int("players", len(players)).Msg("player joined")

	if len(players) == domain.MaxPlayers {
		c.bc.Emit(roomID, core.GameStart(players))
		log.Info().Str("module", "orch").Str("room", string(roomID)).Msg("game start")
	}
	return nil
}

// LeaveRoom removes sid from one room while its connection stays open.
func (c *Coordinator) LeaveRoom(sid core.SessionID, roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.store.Get(roomID)
	if !ok {
		return
	}
	c.removeFrom(room, sid)
}

// HandleDisconnect sweeps every room for sid. It never fails and is a no-op
// for a connection that is in no room.
func (c *Coordinator) HandleDisconnect(sid core.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	swept := 0
	c.store.ForEach(func(room *domain.Room) {
		if c.removeFrom(room, sid) {
			swept++
		}
	})
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("rooms", swept).Msg("disconnect handled")
}

// removeFrom drops sid from room, tells the remaining members and destroys the
// room once empty. The room is deleted only after the notification.
func (c *Coordinator) removeFrom(room *domain.Room, sid core.SessionID) bool {
	if !room.RemovePlayer(domain.PlayerID(sid)) {
		return false
	}
	c.bc.LeaveGroup(sid, room.ID)
	c.bc.Emit(room.ID, core.PlayerLeft(domain.PlayerID(sid)))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room.ID)).Int("players", room.Len()).Msg("player left")

	if room.IsEmpty() {
		c.store.Delete(room.ID)
		log.Info().Str("module", "orch").Str("room", string(room.ID)).Msg("room removed")
	}
	return true
}

func (c *Coordinator) reject(sid core.SessionID, roomID domain.RoomID, err error) error {
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Err(err).Msg("join rejected")
	c.bc.Send(sid, core.RoomError(err))
	return err
}
