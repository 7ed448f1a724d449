// Package session tracks per-user login activity in memory, independent of
// and faster than the persisted state machine, for per-request liveness
// checks.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultInactivityLimit is the window after which a login entry is
// considered stale.
const DefaultInactivityLimit = 3600 * time.Second

// LoginCache maps user ids to their last recorded activity. One mutex
// guards every operation over the shared map; the map never escapes by
// reference. Entries older than the inactivity limit are logically absent:
// the lazy check in IsLoggedIn and the eager sweep in PurgeInactive enforce
// the same threshold.
type LoginCache struct {
	mu       sync.Mutex
	lastSeen map[uuid.UUID]time.Time
	limit    time.Duration
	now      func() time.Time
}

// NewLoginCache creates a cache with the given inactivity limit. A zero or
// negative limit falls back to the default.
func NewLoginCache(limit time.Duration) *LoginCache {
	if limit <= 0 {
		limit = DefaultInactivityLimit
	}
	return &LoginCache{
		lastSeen: make(map[uuid.UUID]time.Time),
		limit:    limit,
		now:      time.Now,
	}
}

// IsLoggedIn reports whether the user has been seen within the inactivity
// limit. A stale entry is removed on the spot, so checking can mutate the
// map.
func (c *LoginCache) IsLoggedIn(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen, ok := c.lastSeen[id]
	if !ok {
		return false
	}
	if seen.Before(c.staleBefore()) {
		delete(c.lastSeen, id)
		return false
	}
	return true
}

// Login records activity for the user at the current time.
func (c *LoginCache) Login(id uuid.UUID) {
	c.LoginAt(id, c.now())
}

// LoginAt records activity at a known time, e.g. a token's issued-at claim.
func (c *LoginCache) LoginAt(id uuid.UUID, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen[id] = at
}

// Logout removes the user's entry. Absent entries are fine.
func (c *LoginCache) Logout(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lastSeen, id)
}

// PurgeInactive removes every entry older than the inactivity limit and
// returns the number removed. Maintenance only: IsLoggedIn is correct
// whether or not the sweep ever runs.
func (c *LoginCache) PurgeInactive() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.staleBefore()
	removed := 0
	for id, seen := range c.lastSeen {
		if seen.Before(cutoff) {
			delete(c.lastSeen, id)
			removed++
		}
	}
	return removed
}

// PurgeAll clears the cache unconditionally.
func (c *LoginCache) PurgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = make(map[uuid.UUID]time.Time)
}

// ActiveCount returns the number of entries currently held, including any
// stale ones not yet evicted.
func (c *LoginCache) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lastSeen)
}

// staleBefore is the single eviction threshold shared by the lazy check and
// the sweep. Callers must hold the lock.
func (c *LoginCache) staleBefore() time.Time {
	return c.now().Add(-c.limit)
}
