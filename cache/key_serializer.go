package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// TypedKeyPrefix starts every store key built from a non-string key. String
// keys that already start with it get it doubled, so no string key can take
// the store key of a typed one.
const TypedKeyPrefix = "#"

// defaultKeySerializer maps cache keys onto store keys. Strings are used as
// is so prefix eviction works on the caller's own key layout. Every other
// value is tagged with TypedKeyPrefix and its type, so 7, "7" and "#int:7"
// land on three different entries.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return defaultKeySerializer{}
}

// SerializeKey implements KeySerializer.
func (s defaultKeySerializer) SerializeKey(key any) string {
	if str, ok := key.(string); ok {
		if strings.HasPrefix(str, TypedKeyPrefix) {
			return TypedKeyPrefix + str
		}
		return str
	}
	return TypedKeyPrefix + s.serializeValue(key)
}

// Compose joins key segments with KeySeparator. It is the usual way to build
// composite keys such as Compose("project", id).
func Compose(parts ...any) string {
	s := defaultKeySerializer{}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = s.SerializeKey(p)
	}
	return strings.Join(out, KeySeparator)
}

func (s defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	if st, ok := v.(fmt.Stringer); ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || !rv.IsNil() {
			return fmt.Sprintf("%T:%s", v, st.String())
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.String:
		return fmt.Sprintf("%s:%s", rv.Type(), rv.String())
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%s:%v", rv.Type(), v)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "slice:nil"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		pairs := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, s.serializeValue(iter.Key().Interface())+"="+s.serializeValue(iter.Value().Interface()))
		}
		sort.Strings(pairs)
		return "{" + strings.Join(pairs, ",") + "}"
	case reflect.Func, reflect.Chan:
		return fmt.Sprintf("%s:%p", rv.Kind(), v)
	}

	return s.jsonFallback(v)
}

// jsonFallback covers structs and anything the switch does not name.
func (s defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%T:%+v", v, v)
	}
	return fmt.Sprintf("%T:%s", v, data)
}
