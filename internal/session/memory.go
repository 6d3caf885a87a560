package session

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps sessions in memory, keyed by user ID.
//
// Idle sessions are not stored. With a positive idle TTL a session that sees no
// activity for that long silently falls back to idle.
type Store struct {
	cache *cache.Cache
	locks *keyedMutex
	now   func() time.Time
}

// Options configures a Store.
type Options struct {
	// IdleTTL expires inactive sessions; zero or negative keeps them forever.
	IdleTTL time.Duration
	// Now overrides the clock used for UpdatedAt.
	Now func() time.Time
}

// NewStore constructs an in-memory session store.
func NewStore(opts Options) *Store {
	expiration := cache.NoExpiration
	var cleanup time.Duration
	if opts.IdleTTL > 0 {
		expiration = opts.IdleTTL
		cleanup = opts.IdleTTL
		if cleanup < time.Minute {
			cleanup = time.Minute
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		cache: cache.New(expiration, cleanup),
		locks: newKeyedMutex(),
		now:   now,
	}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get returns the session for a user, or an idle session if none exists.
func (s *Store) Get(userID int64) Session {
	if v, ok := s.cache.Get(key(userID)); ok {
		if sess, ok := v.(Session); ok {
			return sess
		}
	}
	return Idle()
}

// Set replaces the session of a user. Idle sessions are dropped from memory.
func (s *Store) Set(userID int64, sess Session) {
	sess = sess.normalize()
	if sess.IsIdle() {
		s.cache.Delete(key(userID))
		return
	}
	sess.updatedAt = s.now()
	s.cache.Set(key(userID), sess, cache.DefaultExpiration)
}

// Clear resets a user to idle and drops any pending results.
func (s *Store) Clear(userID int64) {
	s.cache.Delete(key(userID))
}

// Lock acquires the per-user lock and returns its release func.
// Get and Set do not lock on their own; callers that read, decide and write
// must hold the lock for the whole sequence.
func (s *Store) Lock(userID int64) func() {
	return s.locks.Lock(userID)
}

// Update runs fn on the current session of a user while holding that user's
// lock and commits the session fn returns.
func (s *Store) Update(userID int64, fn func(Session) Session) Session {
	unlock := s.Lock(userID)
	defer unlock()
	next := fn(s.Get(userID)).normalize()
	s.Set(userID, next)
	return s.Get(userID)
}

// Active reports how many users currently have a non-idle session.
func (s *Store) Active() int {
	return s.cache.ItemCount()
}
