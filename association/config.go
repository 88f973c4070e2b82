package association

import (
	"errors"
	"fmt"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config describes one association collaborator of an entity type.
type Config struct {
	// FieldName names the association on the owning entity.
	FieldName string
	// AssociationType is the pointer-to-struct type the factory creates.
	AssociationType reflect.Type
	// ParentIDField is the exported field of the association that receives the owner's internal id.
	ParentIDField string
	ParentIDKind  ParentIDKind
	// Eager associations have their loaded contents stored with the owner.
	Eager bool
}

// Registration is everything needed to rebuild one entity type.
//
// Constructor must be a function taking the identity, the description and one
// argument per association in Associations order, returning the entity or the
// entity and an error. The signature is checked when metadata is resolved.
type Registration struct {
	EntityType   string
	Constructor  any
	Associations []Config
}

// RegistrationError reports invalid registry input.
type RegistrationError struct {
	EntityType string
	Err        error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("association: invalid registration %q: %v", e.EntityType, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// TypeOf returns the pointer type of A, the form AssociationType expects.
func TypeOf[A any]() reflect.Type {
	return reflect.TypeOf((*A)(nil))
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FieldName, validation.Required),
		validation.Field(&c.AssociationType, validation.By(pointerToStruct)),
		validation.Field(&c.ParentIDField, validation.Required),
		validation.Field(&c.ParentIDKind, validation.By(knownKind)),
	)
}

// Validate implements validation.Validatable. Association configs are
// validated element by element after the uniqueness check.
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EntityType, validation.Required),
		validation.Field(&r.Constructor, validation.By(function)),
		validation.Field(&r.Associations, validation.By(uniqueFieldNames)),
	)
}

func pointerToStruct(value any) error {
	t, _ := value.(reflect.Type)
	if t == nil {
		return errors.New("cannot be nil")
	}
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("must be a pointer to struct, got %s", t)
	}
	return nil
}

func knownKind(value any) error {
	k, _ := value.(ParentIDKind)
	if !k.Valid() {
		return fmt.Errorf("unknown parent id kind %s", k)
	}
	return nil
}

func function(value any) error {
	if value == nil {
		return errors.New("cannot be nil")
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("must be a function, got %T", value)
	}
	if v.IsNil() {
		return errors.New("cannot be nil")
	}
	return nil
}

func uniqueFieldNames(value any) error {
	configs, _ := value.([]Config)
	seen := make(map[string]struct{}, len(configs))
	for _, c := range configs {
		if _, ok := seen[c.FieldName]; ok {
			return fmt.Errorf("duplicate association field %q", c.FieldName)
		}
		seen[c.FieldName] = struct{}{}
	}
	return nil
}
