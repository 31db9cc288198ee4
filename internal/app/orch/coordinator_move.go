package orch

import (
	"encoding/json"

	"github.com/dkeye/Duel/internal/core"
	"github.com/dkeye/Duel/internal/domain"
	"github.com/rs/zerolog/log"
)

// RelayMove forwards move to everyone in roomID's group, sender included.
// Neither membership nor the payload is checked; an unknown room simply has
// nobody to deliver to.
func (c *Coordinator) RelayMove(sid core.SessionID, roomID domain.RoomID, move json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bc.Emit(roomID, core.MoveMade(move))
	log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Int("bytes", len(move)).Msg("move relayed")
}
