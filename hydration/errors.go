package hydration

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntityType is wrapped when an entity type has no registration.
	ErrUnknownEntityType = errors.New("hydration: unknown entity type")

	// ErrNilEntity is wrapped when a nil entity is extracted.
	ErrNilEntity = errors.New("hydration: nil entity")

	// ErrNoFactory is wrapped when an entity needs associations but no factory is available.
	ErrNoFactory = errors.New("hydration: no association factory")

	// ErrNestingTooDeep is wrapped when eager associations nest beyond the supported depth.
	ErrNestingTooDeep = errors.New("hydration: eager associations nested too deep")

	// ErrLiveEntity is returned by EnvelopeCodec when asked to encode a live entity.
	ErrLiveEntity = errors.New("hydration: live entity cannot be encoded")
)

// MetadataResolutionError reports a registration that cannot be turned into
// metadata. It signals a configuration problem; retrying will not help.
type MetadataResolutionError struct {
	EntityType string
	Field      string
	Reason     string
	Err        error
}

func (e *MetadataResolutionError) Error() string {
	msg := fmt.Sprintf("hydration: cannot resolve metadata for %q", e.EntityType)
	if e.Field != "" {
		msg += fmt.Sprintf(" (association %q)", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MetadataResolutionError) Unwrap() error {
	return e.Err
}

// Stage names the hydration step that failed.
type Stage string

const (
	StageMetadata    Stage = "metadata"
	StageArguments   Stage = "arguments"
	StageAssociation Stage = "association"
	StageConstructor Stage = "constructor"
)

// HydrationError wraps any failure to rebuild an entity from a cache entry.
type HydrationError struct {
	EntityType string
	Identity   any
	Stage      Stage
	Err        error
}

func (e *HydrationError) Error() string {
	return fmt.Sprintf("hydration: cannot hydrate %q with identity %v at %s: %v", e.EntityType, e.Identity, e.Stage, e.Err)
}

func (e *HydrationError) Unwrap() error {
	return e.Err
}

// ExtractionError reports an entity that cannot be reduced to a cache entry.
type ExtractionError struct {
	EntityType string
	Field      string
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("hydration: cannot extract %q association %q: %v", e.EntityType, e.Field, e.Err)
	}
	return fmt.Sprintf("hydration: cannot extract %q: %v", e.EntityType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
