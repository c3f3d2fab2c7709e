package store

import (
	"log/slog"
	"sync"

	"github.com/ogri-la/strongbox-disco-go/src/disco"
	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// Listener is called after every dispatch with the action and the resulting state
type Listener func(action disco.Action, state types.State)

// Store owns a discovery results state and is the only caller of disco.Reduce.
// Actions are applied one at a time in the order they are dispatched. An action
// dispatched while another is being applied (by a listener, or from another
// goroutine) is queued and applied by the goroutine already dispatching.
type Store struct {
	mu          sync.Mutex
	state       types.State
	queue       []disco.Action
	dispatching bool
	listeners   map[int]Listener
	order       []int
	nextID      int
}

// NewStore creates a store holding the initial state
func NewStore() *Store {
	return &Store{
		state:     types.InitialState(),
		listeners: make(map[int]Listener),
	}
}

// State returns the current state
func (s *Store) State() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch. Listeners run in
// registration order on the dispatching goroutine and must not block.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch applies action to the state and notifies listeners
func (s *Store) Dispatch(action disco.Action) {
	s.mu.Lock()
	s.queue = append(s.queue, action)
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]

		s.state = disco.Reduce(s.state, next)
		state := s.state
		listeners := s.snapshotListeners()
		s.mu.Unlock()

		if next != nil {
			slog.Debug("dispatched", "action", next.Type(), "loading", state.Loading, "results", len(state.Results))
		}
		for _, listener := range listeners {
			listener(next, state)
		}

		s.mu.Lock()
	}

	s.dispatching = false
	s.mu.Unlock()
}

// snapshotListeners must be called with mu held
func (s *Store) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	return listeners
}
