package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Duel/internal/core"
)

type mockConn struct {
	mu      sync.Mutex
	frames  []core.Frame
	sendErr error
	closed  bool
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) types(t *testing.T) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.frames))
	for _, f := range m.frames {
		var ev struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev.Type)
	}
	return out
}

func pong() core.Event { return core.Pong() }

type cancelSpy struct{ calls int }

func (c *cancelSpy) cancel() { c.calls++ }

func TestRegistry_SendToOne(t *testing.T) {
	r := NewRegistry(nil)
	a, b := &mockConn{}, &mockConn{}
	r.Bind("a", a, nil, "")
	r.Bind("b", b, nil, "")

	r.Send("a", pong())
	r.Send("ghost", pong())

	assert.Equal(t, []string{"pong"}, a.types(t))
	assert.Empty(t, b.types(t))
}

func TestRegistry_EmitToGroup(t *testing.T) {
	r := NewRegistry(nil)
	a, b, c := &mockConn{}, &mockConn{}, &mockConn{}
	r.Bind("a", a, nil, "")
	r.Bind("b", b, nil, "")
	r.Bind("c", c, nil, "")
	r.JoinGroup("a", "R1")
	r.JoinGroup("b", "R1")
	r.JoinGroup("c", "R2")

	r.Emit("R1", core.PlayerLeft("x"))
	r.Emit("empty", core.PlayerLeft("x"))

	assert.Equal(t, []string{"playerLeft"}, a.types(t))
	assert.Equal(t, []string{"playerLeft"}, b.types(t))
	assert.Empty(t, c.types(t))
	assert.Equal(t, []core.SessionID{"a", "b"}, r.MembersOfRoom("R1"))
}

func TestRegistry_JoinGroupUnknownSession(t *testing.T) {
	r := NewRegistry(nil)
	r.JoinGroup("ghost", "R1")
	assert.Empty(t, r.MembersOfRoom("R1"))
}

func TestRegistry_LeaveGroup(t *testing.T) {
	r := NewRegistry(nil)
	a := &mockConn{}
	r.Bind("a", a, nil, "")
	r.JoinGroup("a", "R1")
	r.JoinGroup("a", "R2")

	r.LeaveGroup("a", "R1")
	r.LeaveGroup("a", "R1")

	assert.Empty(t, r.MembersOfRoom("R1"))
	assert.Equal(t, []string{"R2"}, toStrings(r.RoomsOf("a")))
}

func TestRegistry_UnbindDropsAllGroups(t *testing.T) {
	r := NewRegistry(nil)
	r.Bind("a", &mockConn{}, nil, "tok")
	r.JoinGroup("a", "R1")
	r.JoinGroup("a", "R2")
	require.Equal(t, 1, r.Len())

	r.Unbind("a")
	r.Unbind("a")

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.MembersOfRoom("R1"))
	assert.Empty(t, r.MembersOfRoom("R2"))
	assert.Nil(t, r.RoomsOf("a"))
	_, ok := r.GetSession("a")
	assert.False(t, ok)
}

func TestRegistry_Backpressure(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		sendErr    error
		wantCancel int
	}{
		{"kick slow member", SimplePolicy{Action: KickMember}, core.ErrBackpressure, 1},
		{"drop frame for slow member", SimplePolicy{Action: DropFrame}, core.ErrBackpressure, 0},
		{"closed connection is not kicked", SimplePolicy{Action: KickMember}, core.ErrConnClosed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.policy)
			spy := &cancelSpy{}
			slow := &mockConn{sendErr: tt.sendErr}
			fast := &mockConn{}
			r.Bind("slow", slow, spy.cancel, "")
			r.Bind("fast", fast, nil, "")
			r.JoinGroup("slow", "R1")
			r.JoinGroup("fast", "R1")

			r.Emit("R1", pong())

			assert.Equal(t, tt.wantCancel, spy.calls)
			assert.Equal(t, []string{"pong"}, fast.types(t))
		})
	}
}

func TestRegistry_SendBackpressureKicks(t *testing.T) {
	r := NewRegistry(SimplePolicy{Action: KickMember})
	spy := &cancelSpy{}
	r.Bind("slow", &mockConn{sendErr: core.ErrBackpressure}, spy.cancel, "")

	r.Send("slow", pong())
	assert.Equal(t, 1, spy.calls)
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
