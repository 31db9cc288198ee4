package signal

import (
	"encoding/json"

	"github.com/dkeye/Duel/internal/core"
)

func (ctl *SignalWSController) handleMove(sid core.SessionID, data json.RawMessage) {
	var p core.MovePayload
	if !decode(sid, core.EventMove, data, &p) {
		return
	}
	ctl.Orch.RelayMove(sid, p.RoomID, p.Move)
}
