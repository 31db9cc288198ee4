// Package orch holds the room coordinator: every room-state transition and the
// decision of what to emit to whom goes through it.
package orch

import (
	"sync"

	"github.com/dkeye/Duel/internal/app"
	"github.com/dkeye/Duel/internal/core"
	"github.com/dkeye/Duel/internal/domain"
)

// Coordinator owns the room store. Each operation holds mu for its whole
// duration, including emission, so operations are atomic relative to each
// other and every member sees a room's events in application order.
type Coordinator struct {
	mu    sync.Mutex
	store *app.RoomStore
	bc    core.Broadcaster
}

func NewCoordinator(store *app.RoomStore, bc core.Broadcaster) *Coordinator {
	return &Coordinator{store: store, bc: bc}
}

func (c *Coordinator) Rooms() []core.RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.List()
}

func (c *Coordinator) Room(id domain.RoomID) (core.RoomInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.store.Get(id)
	if !ok {
		return core.RoomInfo{}, false
	}
	return core.NewRoomInfo(room), true
}

func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}
