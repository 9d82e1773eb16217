package auth

import "sync"

type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

type Event struct {
	Kind   EventKind
	UserID string
}

// State fans sign-in and sign-out events out to whoever keeps per-user
// state. Listeners run synchronously in Publish.
type State struct {
	mu   sync.RWMutex
	subs map[int]func(Event)
	next int
}

func NewState() *State {
	return &State{subs: map[int]func(Event){}}
}

func (s *State) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *State) Publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
