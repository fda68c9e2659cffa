package session

import (
	"sync"

	"github.com/authkeeper/authkeeper/internal/api"
)

// UserSession is the process-wide "who is signed in" slot.
type UserSession struct {
	mu   sync.RWMutex
	user api.UserDetail
	set  bool
}

func NewUserSession() *UserSession { return &UserSession{} }

func (s *UserSession) CurrentUser() (api.UserDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.set
}

func (s *UserSession) Set(u api.UserDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.set = true
}

func (s *UserSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = api.UserDetail{}
	s.set = false
}
