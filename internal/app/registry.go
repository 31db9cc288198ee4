package app

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/dkeye/Duel/internal/core"
	"github.com/dkeye/Duel/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Cancel context.CancelFunc
	Client string
	Rooms  map[domain.RoomID]struct{}
}

// Registry tracks live connections and the broadcast group of every room.
// It implements core.Broadcaster.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	groups   map[domain.RoomID]map[core.SessionID]struct{}
	policy   Policy
}

var _ core.Broadcaster = (*Registry)(nil)

func NewRegistry(policy Policy) *Registry {
	if policy == nil {
		policy = SimplePolicy{Action: DropFrame}
	}
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		groups:   make(map[domain.RoomID]map[core.SessionID]struct{}),
		policy:   policy,
	}
}

// Bind registers a live connection. client is the stable cookie token, used
// for logging only.
func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc, client string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		Conn:   conn,
		Cancel: cancel,
		Client: client,
		Rooms:  make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("client", client).Msg("bound session")
}

// Unbind forgets the connection and drops it from every group.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	for room := range e.Rooms {
		r.leaveLocked(sid, room)
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) GetSession(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Cancel stops the connection's pumps; the transport then runs the normal
// disconnect path.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// MembersOfRoom returns the group's sids in a stable order.
func (r *Registry) MembersOfRoom(room domain.RoomID) []core.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionID, 0, len(r.groups[room]))
	for sid := range r.groups[room] {
		out = append(out, sid)
	}
	slices.Sort(out)
	return out
}

// RoomsOf returns the groups a connection belongs to.
func (r *Registry) RoomsOf(sid core.SessionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(e.Rooms))
	for room := range e.Rooms {
		out = append(out, room)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) JoinGroup(sid core.SessionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("join group: unknown session")
		return
	}
	g, ok := r.groups[room]
	if !ok {
		g = make(map[core.SessionID]struct{})
		r.groups[room] = g
	}
	g[sid] = struct{}{}
	e.Rooms[room] = struct{}{}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("joined group")
}

func (r *Registry) LeaveGroup(sid core.SessionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sid, room)
}

func (r *Registry) leaveLocked(sid core.SessionID, room domain.RoomID) {
	if e, ok := r.sessions[sid]; ok {
		delete(e.Rooms, room)
	}
	g, ok := r.groups[room]
	if !ok {
		return
	}
	delete(g, sid)
	if len(g) == 0 {
		delete(r.groups, room)
	}
}

func (r *Registry) Send(sid core.SessionID, ev core.Event) {
	data, ok := encode(ev)
	if !ok {
		return
	}
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if err := e.Conn.TrySend(data); err != nil {
		r.onSendError(sid, ev, err)
	}
}

// Emit writes ev to every member of the room's group. An empty or unknown
// group is a no-op.
func (r *Registry) Emit(room domain.RoomID, ev core.Event) {
	data, ok := encode(ev)
	if !ok {
		return
	}

	type failed struct {
		sid core.SessionID
		err error
	}
	var dropped []failed
	sent := 0

	r.mu.RLock()
	for sid := range r.groups[room] {
		e, ok := r.sessions[sid]
		if !ok {
			continue
		}
		if err := e.Conn.TrySend(data); err != nil {
			dropped = append(dropped, failed{sid: sid, err: err})
			continue
		}
		sent++
	}
	r.mu.RUnlock()

	// Policy actions run outside the lock: Cancel takes it again.
	for _, f := range dropped {
		r.onSendError(f.sid, ev, f.err)
	}
	log.Debug().Str("module", "app.registry").Str("room", string(room)).Str("event", ev.Type).Int("sent_to", sent).Int("dropped", len(dropped)).Msg("broadcast result")
}

func (r *Registry) onSendError(sid core.SessionID, ev core.Event, err error) {
	if !errors.Is(err, core.ErrBackpressure) {
		log.Debug().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("send to closed session")
		return
	}
	switch r.policy.OnBackPressure(sid, ev) {
	case KickMember:
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Str("event", ev.Type).Msg("slow session, kicking")
		r.Cancel(sid)
	case DropFrame:
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Str("event", ev.Type).Msg("slow session, frame dropped")
	case NoAction:
	}
}

func encode(ev core.Event) (core.Frame, bool) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", ev.Type).Msg("encode event")
		return nil, false
	}
	return b, true
}
