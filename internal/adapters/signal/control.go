package signal

import "github.com/dkeye/Duel/internal/core"

func (ctl *SignalWSController) handlePing(sid core.SessionID) {
	ctl.Registry.Send(sid, core.Pong())
}
