package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Duel/internal/core"
)

func TestPlayerConn_TrySend(t *testing.T) {
	c := newPlayerConn(nil, "alice", 1)

	assert.NoError(t, c.TrySend(core.Frame(`{"type":"pong"}`)))
	assert.ErrorIs(t, c.TrySend(core.Frame(`{"type":"pong"}`)), core.ErrBackpressure)

	<-c.send
	close(c.done)
	assert.ErrorIs(t, c.TrySend(core.Frame(`{"type":"pong"}`)), core.ErrConnClosed, "closed wins over a free slot")
}
