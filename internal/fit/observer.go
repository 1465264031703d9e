package fit

import "sync"

// ProgressObserver receives iteration updates. Implementations handle
// progress for UI, logging, metrics, etc.
type ProgressObserver interface {
	// Update is called after every solver iteration.
	Update(solverIndex int, it Iteration)
}

// ProgressSubject manages observer registration and notification for
// progress events. It is safe for concurrent use.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a subject without observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{
		observers: make([]ProgressObserver, 0),
	}
}

// Register adds an observer. Observers are notified in registration order.
// A nil observer is ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Notify sends an update to all registered observers, synchronously and in
// registration order.
func (s *ProgressSubject) Notify(solverIndex int, it Iteration) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, observer := range s.observers {
		observer.Update(solverIndex, it)
	}
}

// AsProgressReporter returns a ProgressReporter that notifies all observers
// on behalf of the given solver index.
func (s *ProgressSubject) AsProgressReporter(solverIndex int) ProgressReporter {
	return func(it Iteration) {
		s.Notify(solverIndex, it)
	}
}
