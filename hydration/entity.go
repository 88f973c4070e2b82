package hydration

// Entity is the live shape application code works with. Identity and
// Description must be plain data: no entities, associations or handles.
type Entity interface {
	EntityType() string
	Identity() any
	Description() any
}

// Associated is implemented by entities that expose their association
// collaborators by field name. It is only consulted for eager associations.
type Associated interface {
	Association(field string) any
}

// Snapshotter is implemented by associations that can report what they have
// already loaded. The bool is false when nothing has been loaded yet.
type Snapshotter interface {
	Snapshot() ([]Entity, bool)
}

// Preloader is implemented by associations that accept contents restored from
// the cache instead of querying for them.
type Preloader interface {
	Preload(entities []Entity)
}
