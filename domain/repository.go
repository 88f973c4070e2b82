package domain

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-entity-cache/hydration"
	repository "github.com/goliatone/go-repository-bun"
)

// ErrDetached is returned when an association is queried without a repository.
var ErrDetached = errors.New("domain: association has no repository")

// ErrNilRecord is returned when an entity is built from a nil row.
var ErrNilRecord = errors.New("domain: nil record")

// Finder is the part of repository.Repository associations query through.
type Finder[T any] interface {
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error)
}

// Reader adds lookups by id to Finder.
type Reader[T any] interface {
	Finder[T]
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error)
}

// Repositories groups the repositories the sample domain reads from. Any
// repository.Repository[T] of the matching record type satisfies them.
type Repositories struct {
	Projects      Reader[*ProjectRecord]
	Diagrams      Finder[*DiagramRecord]
	Revisions     Finder[*DiagramRevision]
	Conversations Reader[*ConversationRecord]
	Messages      Finder[*MessageRecord]
}

// collection is the shared state of one-to-many associations: a finder, the
// conversion from rows to entities and whatever has been loaded so far.
type collection[R any, E hydration.Entity] struct {
	mu     sync.Mutex
	finder Finder[R]
	build  func(R) (E, error)
	items  []E
	loaded bool
}

func (c *collection[R, E]) load(ctx context.Context, criteria ...repository.SelectCriteria) ([]E, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.items, nil
	}
	if c.finder == nil {
		return nil, ErrDetached
	}

	rows, _, err := c.finder.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}

	items := make([]E, 0, len(rows))
	for _, row := range rows {
		e, err := c.build(row)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}

	c.items, c.loaded = items, true
	return items, nil
}

// Snapshot implements hydration.Snapshotter.
func (c *collection[R, E]) Snapshot() ([]hydration.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return nil, false
	}
	out := make([]hydration.Entity, len(c.items))
	for i, e := range c.items {
		out[i] = e
	}
	return out, true
}

// Preload implements hydration.Preloader. Entities of another type are ignored.
func (c *collection[R, E]) Preload(entities []hydration.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]E, 0, len(entities))
	for _, e := range entities {
		if typed, ok := e.(E); ok {
			items = append(items, typed)
		}
	}
	c.items, c.loaded = items, true
}

// Loaded reports whether the association has contents.
func (c *collection[R, E]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}
