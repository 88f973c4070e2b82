package hydratingcache

import (
	"reflect"

	"github.com/goliatone/go-entity-cache/hydration"
)

var entityInterface = reflect.TypeOf((*hydration.Entity)(nil)).Elem()

// entitySequence reports whether value is a slice or array of entities and
// returns its elements. Element types implementing hydration.Entity always
// qualify, even when empty. Interface typed sequences such as []any qualify
// when they are non-empty and every element is an entity.
func entitySequence(value any) ([]hydration.Entity, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	elem := rv.Type().Elem()
	typed := elem.Implements(entityInterface)
	if !typed && (elem.Kind() != reflect.Interface || rv.Len() == 0) {
		return nil, false
	}

	out := make([]hydration.Entity, rv.Len())
	for i := range out {
		e, ok := rv.Index(i).Interface().(hydration.Entity)
		if !ok && !typed {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}

// maxEntitySearchDepth bounds how far containsEntity follows nested values.
const maxEntitySearchDepth = 32

// containsEntity reports whether a non-nil entity is reachable from rv through
// interfaces, pointers, slices, arrays, maps and struct fields.
func containsEntity(rv reflect.Value) bool {
	s := entitySearch{seen: make(map[uintptr]struct{})}
	return s.walk(rv, 0)
}

type entitySearch struct {
	seen map[uintptr]struct{}
}

func (s *entitySearch) walk(rv reflect.Value, depth int) bool {
	if !rv.IsValid() || depth > maxEntitySearchDepth {
		return false
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return false
		}
	}
	if rv.Type().Implements(entityInterface) {
		return true
	}

	switch rv.Kind() {
	case reflect.Interface:
		return s.walk(rv.Elem(), depth+1)
	case reflect.Ptr:
		if _, ok := s.seen[rv.Pointer()]; ok {
			return false
		}
		s.seen[rv.Pointer()] = struct{}{}
		return s.walk(rv.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		if !mayHoldEntity(rv.Type().Elem()) {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if s.walk(rv.Index(i), depth+1) {
				return true
			}
		}
	case reflect.Map:
		keys, values := mayHoldEntity(rv.Type().Key()), mayHoldEntity(rv.Type().Elem())
		if !keys && !values {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if keys && s.walk(iter.Key(), depth+1) {
				return true
			}
			if values && s.walk(iter.Value(), depth+1) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if s.walk(rv.Field(i), depth+1) {
				return true
			}
		}
	}
	return false
}

// mayHoldEntity is false for types that can never lead to an entity.
func mayHoldEntity(t reflect.Type) bool {
	if t.Implements(entityInterface) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	}
	return true
}
