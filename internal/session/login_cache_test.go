package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// virtualClock lets tests advance time without sleeping.
type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache() (*LoginCache, *virtualClock) {
	clock := newVirtualClock()
	cache := NewLoginCache(DefaultInactivityLimit)
	cache.now = clock.Now
	return cache, clock
}

func TestLoginThenIsLoggedIn(t *testing.T) {
	cache, _ := newTestCache()
	id := uuid.New()

	assert.False(t, cache.IsLoggedIn(id))
	cache.Login(id)
	assert.True(t, cache.IsLoggedIn(id))
	assert.Equal(t, 1, cache.ActiveCount())
}

func TestInactivityEvictsLazily(t *testing.T) {
	cache, clock := newTestCache()
	id := uuid.New()

	cache.Login(id)
	clock.Advance(3601 * time.Second)

	assert.False(t, cache.IsLoggedIn(id))
	assert.Equal(t, 0, cache.ActiveCount(), "lazy check must remove the stale entry")
	// behavior consistent with absence afterwards
	assert.False(t, cache.IsLoggedIn(id))
}

func TestActivityWithinLimitKeepsEntry(t *testing.T) {
	cache, clock := newTestCache()
	id := uuid.New()

	cache.Login(id)
	clock.Advance(3599 * time.Second)
	require.True(t, cache.IsLoggedIn(id))

	// activity resets the window
	cache.Login(id)
	clock.Advance(3599 * time.Second)
	assert.True(t, cache.IsLoggedIn(id))
}

func TestLoginAtStaleTimestamp(t *testing.T) {
	cache, clock := newTestCache()
	id := uuid.New()

	cache.LoginAt(id, clock.Now().Add(-3601*time.Second))

	assert.False(t, cache.IsLoggedIn(id))
	assert.Equal(t, 0, cache.ActiveCount(), "stale entry removed as a side effect")
}

func TestLogoutIsUnconditional(t *testing.T) {
	cache, _ := newTestCache()
	id := uuid.New()

	cache.Logout(id) // absent entry is fine

	cache.Login(id)
	cache.Logout(id)
	assert.False(t, cache.IsLoggedIn(id))
}

func TestPurgeInactiveRemovesOnlyStaleEntries(t *testing.T) {
	cache, clock := newTestCache()

	stale := make([]uuid.UUID, 3)
	for i := range stale {
		stale[i] = uuid.New()
		cache.Login(stale[i])
	}
	clock.Advance(3601 * time.Second)

	fresh := make([]uuid.UUID, 2)
	for i := range fresh {
		fresh[i] = uuid.New()
		cache.Login(fresh[i])
	}

	require.Equal(t, 5, cache.ActiveCount())
	removed := cache.PurgeInactive()

	assert.Equal(t, 3, removed)
	assert.Equal(t, 2, cache.ActiveCount())
	for _, id := range stale {
		assert.False(t, cache.IsLoggedIn(id))
	}
	for _, id := range fresh {
		assert.True(t, cache.IsLoggedIn(id))
	}
}

func TestPurgeAll(t *testing.T) {
	cache, _ := newTestCache()
	for i := 0; i < 4; i++ {
		cache.Login(uuid.New())
	}

	cache.PurgeAll()
	assert.Equal(t, 0, cache.ActiveCount())
}

func TestZeroLimitFallsBackToDefault(t *testing.T) {
	cache := NewLoginCache(0)
	assert.Equal(t, DefaultInactivityLimit, cache.limit)
}

func TestConcurrentAccess(t *testing.T) {
	cache, _ := newTestCache()
	shared := uuid.New()

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			own := uuid.New()
			for i := 0; i < 500; i++ {
				switch i % 5 {
				case 0:
					cache.Login(shared)
				case 1:
					cache.Login(own)
				case 2:
					cache.IsLoggedIn(shared)
				case 3:
					cache.Logout(own)
				case 4:
					cache.PurgeInactive()
				}
			}
		}(g)
	}
	wg.Wait()

	// the shared key ends logged in: every goroutine's final shared-key
	// write was a Login within the window
	cache.Login(shared)
	assert.True(t, cache.IsLoggedIn(shared))
}
