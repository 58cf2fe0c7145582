package sessions

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCreateSession(t *testing.T) {
	store := NewStore()
	defer store.Close()

	token, err := store.CreateSession("alice", time.Minute)
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.True(t, store.IsValid(token))

	username, ok := store.Username(token)
	require.True(t, ok)
	assert.Equal(t, "alice", username)

	session, ok := store.Get(token)
	require.True(t, ok)
	assert.Equal(t, time.Minute, session.ExpiresAt.Sub(session.CreatedAt))
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	store := NewStore()
	defer store.Close()

	_, err := store.CreateSession("", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyUsername)

	_, err = store.CreateSession("alice", 0)
	assert.ErrorIs(t, err, ErrInvalidMaxAge)

	assert.Equal(t, 0, store.Count())
}

func TestValidityFollowsClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := NewStore(WithClock(clock.Now))
	defer store.Close()

	token, err := store.CreateSession("alice", time.Hour)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	assert.True(t, store.IsValid(token))

	// expired even though the timer has not fired
	clock.Advance(time.Minute)
	assert.False(t, store.IsValid(token))

	_, ok := store.Username(token)
	assert.False(t, ok)
}

func TestSessionExpiresAndIsRemoved(t *testing.T) {
	store := NewStore()
	defer store.Close()

	token, err := store.CreateSession("alice", 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, store.IsValid(token))

	assert.Eventually(t, func() bool {
		return store.Count() == 0
	}, time.Second, 10*time.Millisecond)

	assert.False(t, store.IsValid(token))
}

func TestDeleteSession(t *testing.T) {
	store := NewStore()
	defer store.Close()

	token, err := store.CreateSession("alice", time.Minute)
	require.NoError(t, err)

	store.DeleteSession(token)
	assert.False(t, store.IsValid(token))
	assert.Equal(t, 0, store.Count())

	// deleting twice or deleting an unknown token is a no-op
	store.DeleteSession(token)
	store.DeleteSession("does-not-exist")
	assert.Equal(t, 0, store.Count())
}

func TestDeleteBeforeTimerFires(t *testing.T) {
	store := NewStore()
	defer store.Close()

	token, err := store.CreateSession("alice", 30*time.Millisecond)
	require.NoError(t, err)

	other, err := store.CreateSession("bob", time.Minute)
	require.NoError(t, err)

	store.DeleteSession(token)
	time.Sleep(60 * time.Millisecond)

	assert.False(t, store.IsValid(token))
	assert.True(t, store.IsValid(other))
}

func TestEmptyTokenIsInvalid(t *testing.T) {
	store := NewStore()
	assert.False(t, store.IsValid(""))
}

func TestTokensAreUnique(t *testing.T) {
	store := NewStore()
	defer store.Close()

	seen := make(map[string]bool)

	for range 1000 {
		token, err := store.CreateSession("alice", time.Minute)
		require.NoError(t, err)
		require.False(t, seen[token], "token reused")
		seen[token] = true
	}

	assert.Equal(t, 1000, store.Count())
}

func TestCollidingTokenIsRetried(t *testing.T) {
	tokens := []string{"aaaa", "aaaa", "bbbb"}
	next := 0

	store := NewStore(WithTokenGenerator(func() (string, error) {
		token := tokens[next]
		next++
		return token, nil
	}))
	defer store.Close()

	first, err := store.CreateSession("alice", time.Minute)
	require.NoError(t, err)

	second, err := store.CreateSession("bob", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "aaaa", first)
	assert.Equal(t, "bbbb", second)
}

func TestCollisionGivesUp(t *testing.T) {
	store := NewStore(WithTokenGenerator(func() (string, error) {
		return "same", nil
	}))
	defer store.Close()

	_, err := store.CreateSession("alice", time.Minute)
	require.NoError(t, err)

	_, err = store.CreateSession("bob", time.Minute)
	assert.ErrorIs(t, err, ErrTokenExhausted)
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()
	defer store.Close()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			token, err := store.CreateSession("alice", time.Minute)
			if !assert.NoError(t, err) {
				return
			}

			assert.True(t, store.IsValid(token))
			store.DeleteSession(token)
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, store.Count())
}

func TestClose(t *testing.T) {
	store := NewStore()

	_, err := store.CreateSession("alice", time.Minute)
	require.NoError(t, err)

	store.Close()
	assert.Equal(t, 0, store.Count())
}
