package domain

import (
	"context"
	"fmt"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// DiagramDescription is the cached payload of a diagram.
type DiagramDescription struct {
	Name     string `json:"name" msgpack:"name"`
	Notation string `json:"notation" msgpack:"notation"`
}

// Diagram is a project diagram. Its revisions are plain rows loaded on demand.
type Diagram struct {
	id        int
	desc      DiagramDescription
	revisions *DiagramRevisions
}

// NewDiagram builds a diagram.
func NewDiagram(identity int, desc DiagramDescription, revisions *DiagramRevisions) *Diagram {
	return &Diagram{id: identity, desc: desc, revisions: revisions}
}

func (d *Diagram) EntityType() string { return DiagramType }
func (d *Diagram) Identity() any      { return d.id }
func (d *Diagram) Description() any   { return d.desc }

func (d *Diagram) Association(field string) any {
	if field == "revisions" {
		return d.revisions
	}
	return nil
}

func (d *Diagram) ID() int      { return d.id }
func (d *Diagram) Name() string { return d.desc.Name }

// Revisions returns the diagram's revisions, oldest first.
func (d *Diagram) Revisions(ctx context.Context) ([]*DiagramRevision, error) {
	return d.revisions.All(ctx)
}

// DiagramRevisions is the diagram's revision association. Revisions are rows,
// so it never takes part in eager nesting.
type DiagramRevisions struct {
	DiagramID int

	mu     sync.Mutex
	finder Finder[*DiagramRevision]
	rows   []*DiagramRevision
	loaded bool
}

// NewDiagramRevisions returns an empty association reading from revisions.
func NewDiagramRevisions(revisions Finder[*DiagramRevision]) *DiagramRevisions {
	return &DiagramRevisions{finder: revisions}
}

// All returns the revisions of DiagramID ordered by version.
func (a *DiagramRevisions) All(ctx context.Context) ([]*DiagramRevision, error) {
	if a == nil || a.finder == nil {
		return nil, ErrDetached
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loaded {
		return a.rows, nil
	}
	id := a.DiagramID
	rows, _, err := a.finder.List(ctx, repository.SelectCriteria(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.diagram_id = ?", id).OrderExpr("?TableAlias.version ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("domain: load revisions of diagram %d: %w", id, err)
	}
	a.rows, a.loaded = rows, true
	return rows, nil
}

// DiagramFromRecord builds a live diagram around revisions.
func DiagramFromRecord(r *DiagramRecord, revisions *DiagramRevisions) (*Diagram, error) {
	if r == nil {
		return nil, ErrNilRecord
	}
	revisions.DiagramID = r.ID
	return NewDiagram(r.ID, DiagramDescription{Name: r.Name, Notation: r.Notation}, revisions), nil
}
