package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store keeps one Session per client, bounded in count and idle time.
// Sessions never share state with each other.
type Store struct {
	cache *expirable.LRU[string, *Session]
	log   *slog.Logger
}

// NewStore creates a store holding at most size sessions, each evicted
// after ttl without access.
func NewStore(size int, ttl time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{log: log}
	s.cache = expirable.NewLRU[string, *Session](size, s.onEvict, ttl)
	return s
}

// Create registers a new empty session.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.log)
	s.cache.Add(sess.ID, sess)
	s.log.Debug("session created", "session_id", sess.ID)
	return sess
}

// Get returns a live session and refreshes its idle timer.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	sess, ok := s.cache.Get(id)
	if ok {
		// expirable.LRU only refreshes the TTL on Add.
		s.cache.Add(id, sess)
	}
	return sess, ok
}

// Remove tears a session down.
func (s *Store) Remove(id string) {
	s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) onEvict(id string, sess *Session) {
	// Runs under the LRU lock; a handler may still hold the session.
	go func() {
		sess.Lock()
		defer sess.Unlock()
		sess.Reset()
		s.log.Debug("session evicted", "session_id", id)
	}()
}
