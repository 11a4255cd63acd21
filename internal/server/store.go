package server

import (
	"sync"
	"time"

	"github.com/agenthands/rotcurve/internal/core"
)

type storedSession struct {
	session  *core.Session
	lastSeen time.Time
}

// SessionStore holds live sessions. Sessions idle longer than ttl are
// dropped whenever a new one is added.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string]*storedSession{},
	}
}

// Add stores s and returns how many idle sessions were evicted.
func (st *SessionStore) Add(s *core.Session) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	evicted := 0
	if st.ttl > 0 {
		for id, e := range st.sessions {
			if now.Sub(e.lastSeen) > st.ttl {
				delete(st.sessions, id)
				evicted++
			}
		}
	}
	st.sessions[s.ID] = &storedSession{session: s, lastSeen: now}
	return evicted
}

func (st *SessionStore) Get(id string) (*core.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = st.now()
	return e.session, true
}

func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
