// internal/state/state.go
package state

import (
	"sync"

	"github.com/unclebandit/mailpilot-backend/internal/model"
)

// Session is the per-user working set: the cached credential and campaign
// lists plus the single open draft. At most one draft exists per session; the
// editor enforces that, not a lock on the campaign rows.
type Session struct {
	UserID      string
	Credentials []*model.SenderCredential
	Campaigns   []*model.Campaign
	Draft       *model.Campaign
}

// Editing reports whether a draft is open.
func (s *Session) Editing() bool {
	return s.Draft != nil
}

// Credential returns the cached credential for (provider, address), or nil.
func (s *Session) Credential(provider, address string) *model.SenderCredential {
	for _, c := range s.Credentials {
		if c.Provider == provider && c.Address == address {
			return c
		}
	}
	return nil
}

// Campaign returns the cached list entry by id, or nil.
func (s *Session) Campaign(id string) *model.Campaign {
	for _, c := range s.Campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Store holds every live session. HTTP handlers are the concurrent callers;
// the mutex serializes access so each session sees a sequential flow.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// With runs fn with exclusive access to the user's session, creating it on
// first use. Services mutate session state only inside With.
func (st *Store) With(userID string, fn func(*Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{UserID: userID}
		st.sessions[userID] = s
	}
	return fn(s)
}
