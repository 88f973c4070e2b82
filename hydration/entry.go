package hydration

import "strconv"

// CacheEntry is the flat, serializable form of an entity. It never holds a
// live entity, association or resource handle.
type CacheEntry struct {
	EntityType  string `json:"entityType" msgpack:"entity_type"`
	Identity    any    `json:"identity" msgpack:"identity"`
	Description any    `json:"description" msgpack:"description"`
	// InternalID routes the entity's associations. See ParseInternalID.
	InternalID any `json:"internalId" msgpack:"internal_id"`
	// Nested holds the extracted contents of eager associations by field name.
	Nested map[string][]CacheEntry `json:"nested,omitempty" msgpack:"nested,omitempty"`
}

// ParseInternalID derives the routing id from an identity. Strings holding a
// base 10 integer become int64, every other value is returned unchanged.
func ParseInternalID(identity any) any {
	s, ok := identity.(string)
	if !ok {
		return identity
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
