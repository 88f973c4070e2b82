// Package hydration translates between live entities and the flat cache
// entries a store can keep.
//
// Extraction reads an entity's type, identity and description. Hydration
// looks up the entity type's constructor in the registry, creates a fresh
// instance of every association through the association factory, writes the
// owner's internal id into each association's parent-id field and calls the
// constructor:
//
//	h := hydration.NewHydrator(registry, func() association.Factory { return providers })
//
//	entry, err := h.Extract(conversation)
//	...
//	live, err := h.Hydrate(entry)
//
// Constructor signatures are checked once per entity type and memoized in a
// MetadataCache. Eager associations that implement Snapshotter and Preloader
// have their loaded contents carried in CacheEntry.Nested.
//
// EnvelopeCodec encodes entries and plain values for byte oriented stores.
// Values decoded from it are generic (int64, map[string]any) and are adapted
// to constructor parameter types during hydration.
package hydration
