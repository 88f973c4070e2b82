package hydration

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-entity-cache/association"
	"go.uber.org/zap"
)

// maxNestingDepth bounds eager association recursion.
const maxNestingDepth = 8

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithLogger sets the logger. Hydration failures are logged at error level
// before being returned.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hydrator) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetadataCache shares an existing metadata cache. It must read from the
// same registry.
func WithMetadataCache(metadata *MetadataCache) Option {
	return func(h *Hydrator) {
		if metadata != nil {
			h.metadata = metadata
		}
	}
}

// Hydrator translates between live entities and cache entries.
type Hydrator struct {
	registry Registry
	factory  func() association.Factory
	metadata *MetadataCache
	logger   *zap.Logger
}

// NewHydrator returns a Hydrator reading entity shapes from registry.
// factory is called on every hydration that needs associations, so it may be
// wired after the hydrator is built.
func NewHydrator(registry Registry, factory func() association.Factory, opts ...Option) *Hydrator {
	h := &Hydrator{
		registry: registry,
		factory:  factory,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metadata == nil {
		h.metadata = NewMetadataCache(registry, h.logger)
	}
	return h
}

// Metadata returns the hydrator's metadata cache.
func (h *Hydrator) Metadata() *MetadataCache {
	return h.metadata
}

// Extract reduces entity to a cache entry. Loaded eager associations are
// extracted into Nested; nothing else of the associations is kept.
func (h *Hydrator) Extract(entity Entity) (CacheEntry, error) {
	return h.extract(entity, 0)
}

// ExtractList extracts every entity, preserving order.
func (h *Hydrator) ExtractList(entities []Entity) ([]CacheEntry, error) {
	entries := make([]CacheEntry, 0, len(entities))
	for _, e := range entities {
		entry, err := h.Extract(e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (h *Hydrator) extract(entity Entity, depth int) (CacheEntry, error) {
	if isNilEntity(entity) {
		return CacheEntry{}, &ExtractionError{Err: ErrNilEntity}
	}

	entityType := entity.EntityType()
	if depth > maxNestingDepth {
		return CacheEntry{}, &ExtractionError{EntityType: entityType, Err: ErrNestingTooDeep}
	}

	identity := entity.Identity()
	description := entity.Description()
	if _, ok := description.(Entity); ok {
		return CacheEntry{}, &ExtractionError{EntityType: entityType, Err: fmt.Errorf("description is a live entity (%T)", description)}
	}

	entry := CacheEntry{
		EntityType:  entityType,
		Identity:    identity,
		Description: description,
		InternalID:  ParseInternalID(identity),
	}

	owner, ok := entity.(Associated)
	if !ok {
		return entry, nil
	}

	for _, cfg := range h.registry.For(entityType) {
		if !cfg.Eager {
			continue
		}
		snapshotter, ok := owner.Association(cfg.FieldName).(Snapshotter)
		if !ok {
			continue
		}
		children, loaded := snapshotter.Snapshot()
		if !loaded {
			continue
		}

		nested := make([]CacheEntry, 0, len(children))
		for _, child := range children {
			childEntry, err := h.extract(child, depth+1)
			if err != nil {
				return CacheEntry{}, &ExtractionError{EntityType: entityType, Field: cfg.FieldName, Err: err}
			}
			nested = append(nested, childEntry)
		}

		if entry.Nested == nil {
			entry.Nested = make(map[string][]CacheEntry)
		}
		entry.Nested[cfg.FieldName] = nested
	}

	return entry, nil
}

// Hydrate rebuilds a live entity from entry with freshly created associations.
// Every failure is returned as a *HydrationError.
func (h *Hydrator) Hydrate(entry CacheEntry) (Entity, error) {
	entity, err := h.hydrate(entry, 0)
	if err != nil {
		h.logger.Error("entity hydration failed",
			zap.String("entity_type", entry.EntityType),
			zap.Any("identity", entry.Identity),
			zap.Error(err),
		)
		return nil, err
	}
	return entity, nil
}

// HydrateList hydrates every entry, preserving order. The first failure aborts.
func (h *Hydrator) HydrateList(entries []CacheEntry) ([]Entity, error) {
	entities := make([]Entity, 0, len(entries))
	for _, entry := range entries {
		entity, err := h.Hydrate(entry)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (h *Hydrator) hydrate(entry CacheEntry, depth int) (Entity, error) {
	fail := func(stage Stage, err error) (Entity, error) {
		return nil, &HydrationError{EntityType: entry.EntityType, Identity: entry.Identity, Stage: stage, Err: err}
	}

	if depth > maxNestingDepth {
		return fail(StageAssociation, ErrNestingTooDeep)
	}

	meta, err := h.metadata.MetadataFor(entry.EntityType)
	if err != nil {
		return fail(StageMetadata, err)
	}

	args := make([]reflect.Value, 0, 2+len(meta.Associations))

	identity, err := coerce(entry.Identity, meta.IdentityType)
	if err != nil {
		return fail(StageArguments, fmt.Errorf("identity: %w", err))
	}
	description, err := coerce(entry.Description, meta.DescriptionType)
	if err != nil {
		return fail(StageArguments, fmt.Errorf("description: %w", err))
	}
	args = append(args, identity, description)

	if len(meta.Associations) > 0 {
		var factory association.Factory
		if h.factory != nil {
			factory = h.factory()
		}
		if factory == nil {
			return fail(StageAssociation, ErrNoFactory)
		}

		for _, am := range meta.Associations {
			v, err := h.newAssociation(factory, am, entry, depth)
			if err != nil {
				return fail(StageAssociation, fmt.Errorf("%s: %w", am.Config.FieldName, err))
			}
			args = append(args, v)
		}
	}

	entity, err := construct(meta, args)
	if err != nil {
		return fail(StageConstructor, err)
	}
	return entity, nil
}

func (h *Hydrator) newAssociation(factory association.Factory, am AssociationFieldMeta, entry CacheEntry, depth int) (reflect.Value, error) {
	obj, err := factory.Create(am.Type)
	if err != nil {
		return reflect.Value{}, err
	}

	v := reflect.ValueOf(obj)
	if !v.IsValid() || v.Type() != am.Type || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("factory returned %T, want non-nil %s", obj, am.Type)
	}

	field, err := v.Elem().FieldByIndexErr(am.ParentIDIndex)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := assignParentID(field, am.Kind, entry.InternalID); err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", am.Config.ParentIDField, err)
	}

	if !am.Config.Eager {
		return v, nil
	}
	nested, ok := entry.Nested[am.Config.FieldName]
	if !ok {
		return v, nil
	}
	preloader, ok := obj.(Preloader)
	if !ok {
		return v, nil
	}

	children := make([]Entity, 0, len(nested))
	for _, childEntry := range nested {
		child, err := h.hydrate(childEntry, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		children = append(children, child)
	}
	preloader.Preload(children)

	return v, nil
}

func construct(meta *EntityMetadata, args []reflect.Value) (entity Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			entity, err = nil, fmt.Errorf("constructor panicked: %v", r)
		}
	}()

	out := meta.Constructor.Call(args)
	if meta.returnsError && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}

	result := out[0]
	switch result.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if result.IsNil() {
			return nil, fmt.Errorf("constructor returned a nil %s", result.Type())
		}
	}

	entity, ok := result.Interface().(Entity)
	if !ok {
		return nil, fmt.Errorf("constructor returned %s, which is not an Entity", result.Type())
	}
	return entity, nil
}

func isNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
