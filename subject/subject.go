// Package subject provides single-slot observable values shared between the
// services of one Sdk instance.
package subject

import "sync"

type observer[T any] struct {
	id uint64
	fn func(T)
}

// Subject holds exactly one current value and notifies its observers, in
// subscription order, every time the value is replaced.
//
// Delivery is synchronous: Set returns after every observer has been called.
// Two Set calls on the same Subject never interleave. Observers must not call
// Set or Subscribe on the Subject that is notifying them; work that reacts to
// a change has to be scheduled elsewhere.
type Subject[T any] struct {
	// emitMu serializes Set and Subscribe so deliveries are never interleaved
	emitMu sync.Mutex
	// mu guards value, observers and nextID
	mu        sync.RWMutex
	value     T
	observers []observer[T]
	nextID    uint64
	equal     func(a, b T) bool
}

// New returns a Subject holding initial
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
	}
}

// NewUnique returns a Subject that ignores Set calls with a value equal to the current one
func NewUnique[T comparable](initial T) *Subject[T] {
	s := New(initial)
	s.equal = func(a, b T) bool {
		return a == b
	}

	return s
}

// Value returns the latest value without side effects
func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value
}

// Set replaces the value and notifies every current observer
func (s *Subject[T]) Set(value T) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.equal != nil && s.equal(s.value, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	observers := make([]observer[T], len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(value)
	}
}

// Subscribe registers fn, calls it with the current value and then with
// every later one. The returned function removes the observer; calling it
// more than once is a no-op.
func (s *Subject[T]) Subscribe(fn func(T)) (dispose func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer[T]{id: id, fn: fn})
	current := s.value
	s.mu.Unlock()

	fn(current)

	var once sync.Once

	return func() {
		once.Do(func() {
			s.unsubscribe(id)
		})
	}
}

// Observers returns the number of registered observers
func (s *Subject[T]) Observers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.observers)
}

func (s *Subject[T]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.observers {
		if o.id == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}
