package hydration

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/goliatone/go-entity-cache/association"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var errOverflow = errors.New("value overflows field")

// coerce adapts a cached value to a constructor parameter type. Values that
// went through a remote store come back as generic maps, slices and int64s,
// so anything not directly usable is re-decoded into target with msgpack.
func coerce(v any, target reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch target.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", target)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}

	switch {
	case isNumber(rv.Kind()) && isNumber(target.Kind()):
		if out, ok := convertNumber(rv, target); ok {
			return out, nil
		}
		return reflect.Value{}, fmt.Errorf("%v does not fit in %s", v, target)
	case rv.Kind() == reflect.String && target.Kind() == reflect.String:
		return rv.Convert(target), nil
	case rv.Kind() == reflect.String && isInteger(target.Kind()):
		n, err := strconv.ParseInt(rv.String(), 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%q is not a valid %s", rv.String(), target)
		}
		out := reflect.New(target).Elem()
		if err := setInt(out, n); err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	case isInteger(rv.Kind()) && target.Kind() == reflect.String:
		return reflect.ValueOf(formatID(v)).Convert(target), nil
	}

	return redecode(v, target)
}

func redecode(v any, target reflect.Type) (reflect.Value, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot encode %T: %w", v, err)
	}

	out := reflect.New(target)
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot decode %T into %s: %w", v, target, err)
	}
	return out.Elem(), nil
}

// assignParentID writes id into field following kind.
func assignParentID(field reflect.Value, kind association.ParentIDKind, id any) error {
	if !field.CanSet() {
		return fmt.Errorf("field of type %s cannot be set", field.Type())
	}

	switch kind {
	case association.KindInt, association.KindInt64:
		n, err := toInt64(id)
		if err != nil {
			return err
		}
		return setInt(field, n)
	case association.KindString:
		if id == nil {
			return errors.New("nil id")
		}
		field.SetString(formatID(id))
		return nil
	case association.KindUUID:
		u, err := toUUID(id)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(u))
		return nil
	case association.KindAny:
		if id == nil {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		v := reflect.ValueOf(id)
		if !v.Type().AssignableTo(field.Type()) {
			return fmt.Errorf("id of type %T is not assignable to %s", id, field.Type())
		}
		field.Set(v)
		return nil
	}
	return fmt.Errorf("unsupported parent id kind %s", kind)
}

func setInt(field reflect.Value, n int64) error {
	if isUnsigned(field.Kind()) {
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%w: %d into %s", errOverflow, n, field.Type())
		}
		field.SetUint(uint64(n))
		return nil
	}
	if field.OverflowInt(n) {
		return fmt.Errorf("%w: %d into %s", errOverflow, n, field.Type())
	}
	field.SetInt(n)
	return nil
}

func toInt64(id any) (int64, error) {
	switch v := id.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", errOverflow, v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d", errOverflow, v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("id %v is not an integer", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("id %q is not an integer", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("id of type %T is not an integer", id)
}

func toUUID(id any) (uuid.UUID, error) {
	switch v := id.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	case string:
		return uuid.Parse(v)
	}
	return uuid.Nil, fmt.Errorf("id of type %T is not a uuid", id)
}

func formatID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(id)
}

func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, bool) {
	switch {
	case isSigned(rv.Kind()) && rv.Int() < 0 && isUnsigned(target.Kind()):
		return reflect.Value{}, false
	case isFloat(rv.Kind()) && rv.Float() < 0 && isUnsigned(target.Kind()):
		return reflect.Value{}, false
	case isUnsigned(rv.Kind()) && isSigned(target.Kind()):
		if u := rv.Uint(); u > math.MaxInt64 || reflect.Zero(target).OverflowInt(int64(u)) {
			return reflect.Value{}, false
		}
	}
	out := rv.Convert(target)
	if out.Convert(rv.Type()).Interface() != rv.Interface() {
		return reflect.Value{}, false
	}
	return out, true
}

func isNumber(k reflect.Kind) bool {
	return isInteger(k) || isFloat(k)
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isInteger(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
