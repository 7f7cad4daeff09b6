package validator

import (
	"sync"

	"github.com/WebWorksCollection/csspp/internal/resolver"
)

// programExtensions are tried in order when resolving a program name.
var programExtensions = []string{".jsonc", ".json", ".yaml", ".yml"}

// Registry caches validator programs by name, loading each through the
// resolver's search paths at most once.
type Registry struct {
	res      *resolver.Resolver
	mu       sync.RWMutex
	programs map[string]*Program
}

// NewRegistry creates an empty registry resolving names through res.
func NewRegistry(res *resolver.Resolver) *Registry {
	return &Registry{
		res:      res,
		programs: make(map[string]*Program),
	}
}

// Lookup returns the named program, loading it on first use.
func (r *Registry) Lookup(name string) (*Program, error) {
	r.mu.RLock()
	prog, ok := r.programs[name]
	r.mu.RUnlock()
	if ok {
		return prog, nil
	}

	path, err := r.res.Find(name, programExtensions...)
	if err != nil {
		return nil, err
	}
	prog, err = Load(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.programs[name] = prog
	r.mu.Unlock()
	return prog, nil
}
