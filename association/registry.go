package association

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrSealed is returned by Register once the registry has been sealed.
var ErrSealed = errors.New("association: registry is sealed")

// Registry maps entity types to their constructor and association configs.
// It is filled at startup and sealed before use; reads after Seal take no lock.
type Registry struct {
	mu      sync.RWMutex
	sealed  atomic.Bool
	entries map[string]Registration
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register validates reg and adds it. Each entity type may be registered once.
func (r *Registry) Register(reg Registration) error {
	if err := reg.Validate(); err != nil {
		return &RegistrationError{EntityType: reg.EntityType, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return ErrSealed
	}
	if _, ok := r.entries[reg.EntityType]; ok {
		return &RegistrationError{
			EntityType: reg.EntityType,
			Err:        errors.New("entity type already registered"),
		}
	}

	reg.Associations = cloneConfigs(reg.Associations)
	r.entries[reg.EntityType] = reg
	return nil
}

// MustRegister is like Register but panics on error. Meant for package level wiring.
func (r *Registry) MustRegister(regs ...Registration) *Registry {
	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			panic(err)
		}
	}
	return r
}

// Seal freezes the registry. Further Register calls fail with ErrSealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Lookup returns the registration for entityType.
func (r *Registry) Lookup(entityType string) (Registration, bool) {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	reg, ok := r.entries[entityType]
	if !ok {
		return Registration{}, false
	}
	reg.Associations = cloneConfigs(reg.Associations)
	return reg, true
}

// For returns the association configs of entityType in declaration order.
// Leaf and unknown types yield an empty slice.
func (r *Registry) For(entityType string) []Config {
	reg, _ := r.Lookup(entityType)
	return reg.Associations
}

// EntityTypes returns the registered entity types, sorted.
func (r *Registry) EntityTypes() []string {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	types := make([]string, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func cloneConfigs(in []Config) []Config {
	out := make([]Config, len(in))
	copy(out, in)
	return out
}
