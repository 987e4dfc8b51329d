package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helmdeck/helmdeck/pkg/schema"
	"github.com/helmdeck/helmdeck/pkg/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	node := &schema.Node{Kind: schema.KindObject}
	s, err := session.New("web", "default", "bitnami/nginx", "15.0.0", node, nil)
	require.NoError(t, err)
	return s
}

func Test_InMemoryStoreSessions(t *testing.T) {
	InitInMemory(InitInMemoryStoreOptions{Namespace: "default"})
	s := GetStore()

	require.Equal(t, "default", s.GetNamespace())
	require.False(t, s.IsAllNamespaces())
	require.Empty(t, s.ListSessions())

	sess := newTestSession(t)
	s.AddSession(sess)

	got, ok := s.GetSession(sess.ID)
	require.True(t, ok)
	require.Equal(t, sess.ID, got.ID)
	require.Len(t, s.ListSessions(), 1)

	s.DeleteSession(sess.ID)
	_, ok = s.GetSession(sess.ID)
	require.False(t, ok)
}

func Test_ExpireSessions(t *testing.T) {
	InitInMemory(InitInMemoryStoreOptions{Namespace: "default"})
	s := GetStore()

	sess := newTestSession(t)
	s.AddSession(sess)

	// a generous ttl keeps the fresh session
	require.Equal(t, 0, s.ExpireSessions(time.Hour))
	_, ok := s.GetSession(sess.ID)
	require.True(t, ok)

	// a negative ttl puts the cutoff in the future and expires it
	require.Equal(t, 1, s.ExpireSessions(-time.Hour))
	_, ok = s.GetSession(sess.ID)
	require.False(t, ok)
}
