package hydration

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-entity-cache/association"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

var (
	entityInterface = reflect.TypeOf((*Entity)(nil)).Elem()
	errorInterface  = reflect.TypeOf((*error)(nil)).Elem()
	uuidType        = reflect.TypeOf(uuid.UUID{})
)

// Registry is the read side of association.Registry.
type Registry interface {
	For(entityType string) []association.Config
	Lookup(entityType string) (association.Registration, bool)
}

// AssociationFieldMeta is the resolved form of one association.Config.
type AssociationFieldMeta struct {
	Config association.Config
	// Type is the pointer-to-struct type handed to the factory.
	Type reflect.Type
	// ParentIDIndex locates the parent-id field within *Type.
	ParentIDIndex []int
	ParentIDType  reflect.Type
	// Kind is the effective parent-id kind, never association.KindAuto.
	Kind association.ParentIDKind
}

// EntityMetadata is everything needed to call an entity type's constructor.
// It is immutable once built.
type EntityMetadata struct {
	EntityType      string
	Constructor     reflect.Value
	IdentityType    reflect.Type
	DescriptionType reflect.Type
	Associations    []AssociationFieldMeta
	returnsError    bool
}

// MetadataCache memoizes EntityMetadata per entity type. Entries are never
// invalidated. Failed resolutions are not stored.
type MetadataCache struct {
	registry Registry
	entries  *xsync.MapOf[string, *EntityMetadata]
	logger   *zap.Logger
}

// NewMetadataCache returns an empty cache reading from registry.
func NewMetadataCache(registry Registry, logger *zap.Logger) *MetadataCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataCache{
		registry: registry,
		entries:  xsync.NewMapOf[string, *EntityMetadata](),
		logger:   logger,
	}
}

// MetadataFor returns the metadata of entityType, resolving it on first use.
// Concurrent first calls may resolve more than once but all of them get the
// single stored value.
func (c *MetadataCache) MetadataFor(entityType string) (*EntityMetadata, error) {
	if meta, ok := c.entries.Load(entityType); ok {
		return meta, nil
	}

	meta, err := c.resolve(entityType)
	if err != nil {
		return nil, err
	}

	actual, loaded := c.entries.LoadOrStore(entityType, meta)
	if !loaded {
		c.logger.Debug("resolved entity metadata",
			zap.String("entity_type", entityType),
			zap.Int("associations", len(meta.Associations)),
		)
	}
	return actual, nil
}

// Warm resolves the given entity types, or every registered type when none
// are given and the registry can list them. It stops at the first error.
func (c *MetadataCache) Warm(entityTypes ...string) error {
	if len(entityTypes) == 0 {
		if lister, ok := c.registry.(interface{ EntityTypes() []string }); ok {
			entityTypes = lister.EntityTypes()
		}
	}
	for _, t := range entityTypes {
		if _, err := c.MetadataFor(t); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of resolved entity types.
func (c *MetadataCache) Len() int {
	return c.entries.Size()
}

func (c *MetadataCache) resolve(entityType string) (*EntityMetadata, error) {
	fail := func(field, reason string, err error) (*EntityMetadata, error) {
		return nil, &MetadataResolutionError{EntityType: entityType, Field: field, Reason: reason, Err: err}
	}

	reg, ok := c.registry.Lookup(entityType)
	if !ok {
		return fail("", "", ErrUnknownEntityType)
	}

	ctor := reflect.ValueOf(reg.Constructor)
	if ctor.Kind() != reflect.Func || ctor.IsNil() {
		return fail("", fmt.Sprintf("constructor must be a function, got %T", reg.Constructor), nil)
	}

	ct := ctor.Type()
	configs := c.registry.For(entityType)
	if ct.IsVariadic() {
		return fail("", "constructor must not be variadic", nil)
	}
	if want := 2 + len(configs); ct.NumIn() != want {
		return fail("", fmt.Sprintf("constructor takes %d arguments, want identity, description and %d associations", ct.NumIn(), len(configs)), nil)
	}

	meta := &EntityMetadata{
		EntityType:      entityType,
		Constructor:     ctor,
		IdentityType:    ct.In(0),
		DescriptionType: ct.In(1),
	}

	switch {
	case ct.NumOut() == 1 && ct.Out(0).Implements(entityInterface):
	case ct.NumOut() == 2 && ct.Out(0).Implements(entityInterface) && ct.Out(1) == errorInterface:
		meta.returnsError = true
	default:
		return fail("", fmt.Sprintf("constructor must return an Entity or (Entity, error), got %s", ct), nil)
	}

	for i, cfg := range configs {
		at := cfg.AssociationType
		if at == nil || at.Kind() != reflect.Ptr || at.Elem().Kind() != reflect.Struct {
			return fail(cfg.FieldName, fmt.Sprintf("association type must be a pointer to struct, got %v", at), nil)
		}
		if param := ct.In(2 + i); !at.AssignableTo(param) {
			return fail(cfg.FieldName, fmt.Sprintf("constructor argument %d is %s, association type is %s", 2+i, param, at), nil)
		}

		field, ok := at.Elem().FieldByName(cfg.ParentIDField)
		if !ok {
			return fail(cfg.FieldName, fmt.Sprintf("%s has no field %q", at.Elem(), cfg.ParentIDField), nil)
		}
		if !field.IsExported() {
			return fail(cfg.FieldName, fmt.Sprintf("field %q is not exported", cfg.ParentIDField), nil)
		}

		kind, err := effectiveKind(cfg.ParentIDKind, field.Type)
		if err != nil {
			return fail(cfg.FieldName, fmt.Sprintf("field %q", cfg.ParentIDField), err)
		}

		meta.Associations = append(meta.Associations, AssociationFieldMeta{
			Config:        cfg,
			Type:          at,
			ParentIDIndex: field.Index,
			ParentIDType:  field.Type,
			Kind:          kind,
		})
	}

	return meta, nil
}

// effectiveKind checks declared against the field type, inferring it for KindAuto.
func effectiveKind(declared association.ParentIDKind, ft reflect.Type) (association.ParentIDKind, error) {
	inferred := association.KindAny
	switch {
	case ft == uuidType:
		inferred = association.KindUUID
	case ft.Kind() == reflect.Int:
		inferred = association.KindInt
	case ft.Kind() == reflect.Int64:
		inferred = association.KindInt64
	case ft.Kind() == reflect.String:
		inferred = association.KindString
	}

	switch declared {
	case association.KindAuto:
		if inferred == association.KindAny && ft.Kind() != reflect.Interface {
			return 0, fmt.Errorf("cannot infer parent id kind for %s", ft)
		}
		return inferred, nil
	case association.KindAny:
		return declared, nil
	case inferred:
		return declared, nil
	default:
		return 0, fmt.Errorf("type %s does not match parent id kind %s", ft, declared)
	}
}
