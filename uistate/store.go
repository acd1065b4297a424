package uistate

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Clock supplies the delays used by effects.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Store is the single process-wide UI state. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int

	clock   Clock
	log     *zap.Logger
	running conc.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for effect delays.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger used for effect tracing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithInitial sets the starting state instead of Default().
func WithInitial(st State) Option {
	return func(s *Store) { s.state = st }
}

// NewStore returns a Store holding Default().
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: Default(),
		subs:  make(map[int]chan State),
		clock: realClock{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update shallow-merges p into the state and returns the result.
func (s *Store) Update(p Patch) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = p.Apply(s.state)
	s.publish(s.state)
	return s.state
}

// publish hands st to every subscriber, replacing a snapshot the subscriber has
// not read yet. Callers hold s.mu.
func (s *Store) publish(st State) {
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

// Subscribe returns a channel that receives the latest state after every change,
// and a function that ends the subscription.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Wait blocks until every started effect has finished or been cancelled.
func (s *Store) Wait() {
	s.running.Wait()
}
