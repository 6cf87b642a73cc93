package forms

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session keeps a controller alive between HTTP requests.
type Session struct {
	ID         string
	Controller *Controller
	Submit     SubmitFunc
	// Context holds the ids the form was opened for, such as userId.
	Context   map[string]string
	ExpiresAt time.Time
}

// Sessions is an in-memory session registry. Idle sessions expire after
// the configured TTL.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]*Session
}

// NewSessions returns an empty registry.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*Session),
	}
}

// Open stores a new session and returns it.
func (s *Sessions) Open(ctrl *Controller, submit SubmitFunc, context map[string]string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:         uuid.New().String(),
		Controller: ctrl,
		Submit:     submit,
		Context:    context,
		ExpiresAt:  s.now().Add(s.ttl),
	}
	s.items[sess.ID] = sess
	return sess
}

// Get returns a live session and extends its expiry.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.After(sess.ExpiresAt) {
		delete(s.items, id)
		return nil, false
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return sess, true
}

// Close removes a session.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Sweep drops expired sessions and returns how many were removed. Sessions
// with a submit still running are kept.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*Session
	for _, sess := range s.items {
		if now.After(sess.ExpiresAt) {
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	removed := 0
	for _, sess := range expired {
		if sess.Controller.InFlight() {
			continue
		}
		s.mu.Lock()
		if cur, ok := s.items[sess.ID]; ok && cur == sess && now.After(cur.ExpiresAt) {
			delete(s.items, sess.ID)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
