// Package auth supplies the current user identity to the data layer.
// The actual credential exchange happens in the hosted backend; this
// package only tracks who is signed in and tells listeners when that
// changes.
package auth

import "sync"

// Provider reports the current user id, if any. Mirror stores gate every
// refetch on it: no user, no data.
type Provider interface {
	UserID() (string, bool)
}

// Static is a fixed-identity Provider, mainly for tests and tooling.
type Static string

func (s Static) UserID() (string, bool) {
	return string(s), s != ""
}

// Session is a mutable Provider with change notification. The empty user id
// means signed out.
type Session struct {
	mu        sync.RWMutex
	userID    string
	listeners []func(userID string)
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

// SignIn records the authenticated user and notifies listeners.
func (s *Session) SignIn(userID string) {
	s.set(userID)
}

// SignOut clears the identity and notifies listeners. Stores listening on
// the session reset themselves to empty.
func (s *Session) SignOut() {
	s.set("")
}

func (s *Session) set(userID string) {
	s.mu.Lock()
	s.userID = userID
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(userID)
	}
}

// OnChange registers fn to run after every sign-in and sign-out.
func (s *Session) OnChange(fn func(userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
