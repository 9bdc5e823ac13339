package ui

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/users"
)

var _ Shell = (*State)(nil)

// State is a Shell that only records what it was asked to show. It backs
// tests and lets an embedding application read the current view.
type State struct {
	mu       sync.RWMutex
	screen   Screen
	loading  bool
	loggedIn bool
	toasts   []Toast
	notice   *Notice
	user     *users.Profile
}

func NewState() *State {
	return &State{screen: ScreenHome}
}

func (s *State) ShowScreen(screen Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = screen
}

func (s *State) ShowLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
}

func (s *State) HideLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *State) ShowToast(t Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, t)
}

func (s *State) ShowVerification(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = &n
	s.screen = ScreenVerification
}

func (s *State) SetLoggedIn(loggedIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = loggedIn
	if !loggedIn {
		s.user = nil
	}
}

func (s *State) ShowUser(p *users.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.user = nil
		return
	}
	cp := *p
	s.user = &cp
}

func (s *State) Screen() Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *State) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Toasts returns every toast shown so far, oldest first
func (s *State) Toasts() []Toast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Toast(nil), s.toasts...)
}

// LastToast returns the most recent toast
func (s *State) LastToast() (Toast, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.toasts) == 0 {
		return Toast{}, false
	}
	return s.toasts[len(s.toasts)-1], true
}

func (s *State) Notice() (Notice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notice == nil {
		return Notice{}, false
	}
	return *s.notice, true
}

func (s *State) User() *users.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}
