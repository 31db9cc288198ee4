package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/dkeye/Duel/internal/app"
	"github.com/dkeye/Duel/internal/app/orch"
	"github.com/dkeye/Duel/internal/config"
	"github.com/dkeye/Duel/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SignalWSController is the transport collaborator of the coordinator: it owns
// the sockets, decodes inbound events and reports disconnects.
type SignalWSController struct {
	Orch     *orch.Coordinator
	Registry *app.Registry

	cfg      config.SignalConfig
	limiter  *RoomRateLimiter
	upgrader websocket.Upgrader
}

// NewSignalWSController builds a controller. checkOrigin may be nil to accept
// any origin.
func NewSignalWSController(
	coord *orch.Coordinator,
	reg *app.Registry,
	cfg config.SignalConfig,
	checkOrigin func(*http.Request) bool,
) *SignalWSController {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &SignalWSController{
		Orch:     coord,
		Registry: reg,
		cfg:      cfg,
		limiter:  NewRoomRateLimiter(cfg.RateLimit, cfg.RateInterval),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// playerConn is one client socket. The send queue is never closed, so a
// TrySend racing Close cannot panic; done marks the end instead.
type playerConn struct {
	ws   *websocket.Conn
	sid  core.SessionID
	send chan core.Frame

	done      chan struct{}
	closeOnce sync.Once
}

func newPlayerConn(ws *websocket.Conn, sid core.SessionID, buffer int) *playerConn {
	return &playerConn{
		ws:   ws,
		sid:  sid,
		send: make(chan core.Frame, buffer),
		done: make(chan struct{}),
	}
}

func (c *playerConn) TrySend(f core.Frame) error {
	select {
	case <-c.done:
		return core.ErrConnClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	default:
		log.Debug().Str("module", "signal").Str("sid", string(c.sid)).Int("queued", len(c.send)).Msg("send queue full")
		return core.ErrBackpressure
	}
}

func (c *playerConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// HandleSignal upgrades the request and starts the connection's pumps. Every
// socket gets a fresh session id; the cookie client token is only logged.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	client := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", client).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newPlayerConn(ws, sid, ctl.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, conn, cancel, client)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// disconnect runs once per connection, after its read loop ends.
func (ctl *SignalWSController) disconnect(sid core.SessionID, c *playerConn) {
	ctl.Registry.Cancel(sid)
	ctl.Orch.HandleDisconnect(sid)
	ctl.Registry.Unbind(sid)
	ctl.limiter.Forget(sid)
	c.Close()
}
