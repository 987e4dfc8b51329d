package store

import (
	"sync"
	"time"

	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/session"
)

var store Store

type InMemoryStore struct {
	namespace     string
	allNamespaces bool

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

type InitInMemoryStoreOptions struct {
	Namespace     string
	AllNamespaces bool
}

var _ Store = (*InMemoryStore)(nil)

func InitInMemory(options InitInMemoryStoreOptions) {
	store = &InMemoryStore{
		namespace:     options.Namespace,
		allNamespaces: options.AllNamespaces,
		sessions:      map[string]*session.Session{},
	}
}

func GetStore() Store {
	if store == nil {
		panic("store is not initialized")
	}
	return store
}

// SetStore is for tests only.
func SetStore(s Store) {
	store = s
}

func (s *InMemoryStore) GetNamespace() string {
	return s.namespace
}

func (s *InMemoryStore) IsAllNamespaces() bool {
	return s.allNamespaces
}

func (s *InMemoryStore) AddSession(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *InMemoryStore) GetSession(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *InMemoryStore) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *InMemoryStore) ListSessions() []*session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	return sessions
}

// ExpireSessions drops sessions idle for longer than ttl and returns how
// many were removed.
func (s *InMemoryStore) ExpireSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	expired := 0
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		logger.Debugf("expired %d idle edit sessions", expired)
	}
	return expired
}
