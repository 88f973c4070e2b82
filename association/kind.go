package association

import "fmt"

// ParentIDKind declares how the owning entity's internal id is written into an
// association's parent-id field.
type ParentIDKind int

const (
	// KindAuto infers the kind from the parent-id field type when metadata is resolved.
	KindAuto ParentIDKind = iota
	// KindInt writes into an int field, rejecting values that overflow it.
	KindInt
	// KindInt64 writes into an int64 field.
	KindInt64
	// KindString writes the id's decimal or textual form into a string field.
	KindString
	// KindUUID parses the id into a uuid.UUID field.
	KindUUID
	// KindAny assigns the id as is. The field type must accept the id's dynamic type.
	KindAny
)

func (k ParentIDKind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindInt:
		return "int"
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindUUID:
		return "uuid"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("ParentIDKind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k ParentIDKind) Valid() bool {
	return k >= KindAuto && k <= KindAny
}
