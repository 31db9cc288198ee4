package signal

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dkeye/Duel/internal/core"
)

// RoomRateLimiter keeps one token bucket per connection: bursts of up to
// limit frames, refilled at limit per interval. A non-positive limit disables it.
type RoomRateLimiter struct {
	mu       sync.Mutex
	buckets  map[core.SessionID]*rate.Limiter
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	return &RoomRateLimiter{
		buckets:  make(map[core.SessionID]*rate.Limiter),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RoomRateLimiter) Allow(sid core.SessionID) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[sid]
	if !ok {
		every := rate.Every(rl.interval / time.Duration(rl.limit))
		b = rate.NewLimiter(every, rl.limit)
		rl.buckets[sid] = b
	}
	return b.AllowN(rl.now(), 1)
}

// Forget drops the bucket of a closed connection.
func (rl *RoomRateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, sid)
}
