package association

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoProvider is returned when a factory cannot build the requested type.
var ErrNoProvider = errors.New("association: no provider for type")

// Factory creates fresh association collaborators by type. Implementations
// must return a new value of exactly associationType on every call.
type Factory interface {
	Create(associationType reflect.Type) (any, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(associationType reflect.Type) (any, error)

// Create implements Factory.
func (f FactoryFunc) Create(associationType reflect.Type) (any, error) {
	return f(associationType)
}

// Providers is a Factory backed by one constructor per association type.
// Configure it before use; it is read-only afterwards.
type Providers struct {
	providers map[reflect.Type]func() any
	fallback  Factory
}

// NewProviders returns an empty provider set.
func NewProviders() *Providers {
	return &Providers{providers: make(map[reflect.Type]func() any)}
}

// Provide registers fn as the constructor for *A.
func Provide[A any](p *Providers, fn func() *A) *Providers {
	p.providers[TypeOf[A]()] = func() any { return fn() }
	return p
}

// WithFallback sets the factory used for types without a provider.
func (p *Providers) WithFallback(f Factory) *Providers {
	p.fallback = f
	return p
}

// Create implements Factory.
func (p *Providers) Create(associationType reflect.Type) (any, error) {
	if fn, ok := p.providers[associationType]; ok {
		v := fn()
		if v == nil || reflect.ValueOf(v).IsNil() {
			return nil, fmt.Errorf("association: provider for %s returned nil", associationType)
		}
		return v, nil
	}
	if p.fallback != nil {
		return p.fallback.Create(associationType)
	}
	return nil, fmt.Errorf("%w %s", ErrNoProvider, associationType)
}

// Reflective returns a Factory that allocates zero values of pointer-to-struct
// types. Useful for associations that need no runtime resources.
func Reflective() Factory {
	return FactoryFunc(func(t reflect.Type) (any, error) {
		if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w %v", ErrNoProvider, t)
		}
		return reflect.New(t.Elem()).Interface(), nil
	})
}
