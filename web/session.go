package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"badc0de.net/pkg/go-texunpack/unpack"
)

// DefaultMaxSessions is how many unpacked atlases the server keeps in memory
// when Options.MaxSessions is unset.
const DefaultMaxSessions = 16

type session struct {
	id             uuid.UUID
	created        time.Time
	descriptorName string
	imageName      string
	result         *unpack.Result
}

// sessionStore keeps the most recent sessions. When full, the oldest one is
// dropped.
type sessionStore struct {
	mu       sync.Mutex
	max      int
	sessions map[uuid.UUID]*session
	order    []uuid.UUID
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &sessionStore{
		max:      max,
		sessions: make(map[uuid.UUID]*session),
	}
}

func (s *sessionStore) add(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.max {
		delete(s.sessions, s.order[0])
		s.order = s.order[1:]
	}
	s.sessions[sess.id] = sess
	s.order = append(s.order, sess.id)
}

func (s *sessionStore) get(id uuid.UUID) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
