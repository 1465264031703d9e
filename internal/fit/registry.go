package fit

import (
	"fmt"
	"sort"
	"sync"
)

// SolverFactory creates Solver instances by name.
type SolverFactory interface {
	// Get returns a cached Solver by name.
	Get(name string) (Solver, error)
	// Create returns a fresh, uncached Solver by name.
	Create(name string) (Solver, error)
	// List returns the registered names, sorted.
	List() []string
	// Register adds or replaces a solver type.
	Register(name string, creator func() CoreSolver) error
	// GetAll returns every registered solver.
	GetAll() map[string]Solver
}

// DefaultSolver is the solver used when none is configured.
const DefaultSolver = "descent"

// DefaultFactory is a thread-safe registry of solver creators that caches
// the Solver instances it hands out.
type DefaultFactory struct {
	mu       sync.RWMutex
	creators map[string]func() CoreSolver
	solvers  map[string]Solver
}

// NewDefaultFactory returns a factory with the standard solvers:
//   - "descent": central-difference gradient descent
//   - "nelder-mead": gonum simplex
//   - "bfgs": gonum quasi-Newton
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators: make(map[string]func() CoreSolver),
		solvers:  make(map[string]Solver),
	}
	_ = f.Register("descent", func() CoreSolver { return &Descent{} })
	_ = f.Register("nelder-mead", func() CoreSolver { return &NelderMead{} })
	_ = f.Register("bfgs", func() CoreSolver { return &BFGS{} })
	return f
}

// Register adds a solver type. An existing registration with the same name
// is replaced and its cached instance dropped.
func (f *DefaultFactory) Register(name string, creator func() CoreSolver) error {
	if name == "" || creator == nil {
		return fmt.Errorf("invalid solver registration %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.solvers, name)
	return nil
}

// Create implements SolverFactory.
func (f *DefaultFactory) Create(name string) (Solver, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	return NewSolver(creator()), nil
}

// Get implements SolverFactory.
func (f *DefaultFactory) Get(name string) (Solver, error) {
	f.mu.RLock()
	if s, exists := f.solvers[name]; exists {
		f.mu.RUnlock()
		return s, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if s, exists := f.solvers[name]; exists {
		return s, nil
	}
	creator, ok := f.creators[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	s := NewSolver(creator())
	f.solvers[name] = s
	return s, nil
}

// List implements SolverFactory.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll implements SolverFactory.
func (f *DefaultFactory) GetAll() map[string]Solver {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.solvers[name]; !exists {
			f.solvers[name] = NewSolver(creator())
		}
	}
	out := make(map[string]Solver, len(f.solvers))
	for name, s := range f.solvers {
		out[name] = s
	}
	return out
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}
