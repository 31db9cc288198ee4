package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Duel/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *playerConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(ctl.cfg.WriteWait))
			return
		case <-c.done:
			log.Debug().Str("module", "signal").Str("sid", string(c.sid)).Msg("writePump conn closed")
			return
		case data := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *playerConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.disconnect(sid, c)
	}()

	c.ws.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		// Any inbound frame proves the peer is alive.
		_ = c.ws.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
		if !ctl.limiter.Allow(sid) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited, frame dropped")
			continue
		}
		ctl.handleSignal(sid, data)
	}
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	switch env.Type {
	case core.EventCreateRoom:
		ctl.handleCreateRoom(sid, env.Data)
	case core.EventJoinRoom:
		ctl.handleJoinRoom(sid, env.Data)
	case core.EventLeaveRoom:
		ctl.handleLeaveRoom(sid, env.Data)
	case core.EventMove:
		ctl.handleMove(sid, env.Data)
	case core.EventPing:
		ctl.handlePing(sid)
	default:
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("unknown signal")
	}
}

// decode unpacks an event payload; malformed payloads are logged and dropped.
func decode(sid core.SessionID, event string, raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", event).Msg("bad payload")
		return false
	}
	return true
}
