package store

import (
	"time"

	"github.com/helmdeck/helmdeck/pkg/session"
)

type Store interface {
	GetNamespace() string
	IsAllNamespaces() bool

	AddSession(s *session.Session)
	GetSession(id string) (*session.Session, bool)
	DeleteSession(id string)
	ListSessions() []*session.Session
	ExpireSessions(ttl time.Duration) int
}
