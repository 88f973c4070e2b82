package domain

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProjectDescription is the cached payload of a project.
type ProjectDescription struct {
	Name        string `json:"name" msgpack:"name"`
	Description string `json:"description" msgpack:"description"`
}

// Project is a business-modeling project. Its diagrams are routed by the
// project uuid, its conversations by the uuid's string form.
type Project struct {
	id            uuid.UUID
	desc          ProjectDescription
	diagrams      *ProjectDiagrams
	conversations *ProjectConversations
}

// NewProject builds a project. identity must be a uuid string.
func NewProject(identity string, desc ProjectDescription, diagrams *ProjectDiagrams, conversations *ProjectConversations) (*Project, error) {
	id, err := uuid.Parse(identity)
	if err != nil {
		return nil, fmt.Errorf("domain: invalid project id %q: %w", identity, err)
	}
	return &Project{id: id, desc: desc, diagrams: diagrams, conversations: conversations}, nil
}

func (p *Project) EntityType() string { return ProjectType }
func (p *Project) Identity() any      { return p.id.String() }
func (p *Project) Description() any   { return p.desc }

func (p *Project) Association(field string) any {
	switch field {
	case "diagrams":
		return p.diagrams
	case "conversations":
		return p.conversations
	}
	return nil
}

func (p *Project) ID() uuid.UUID { return p.id }
func (p *Project) Name() string  { return p.desc.Name }

// Diagrams returns the project's diagrams, querying them on first use.
func (p *Project) Diagrams(ctx context.Context) ([]*Diagram, error) {
	return p.diagrams.All(ctx)
}

// Conversations returns the project's conversations, querying them on first use.
func (p *Project) Conversations(ctx context.Context) ([]*Conversation, error) {
	return p.conversations.All(ctx)
}

// ProjectDiagrams is the project's diagram association.
type ProjectDiagrams struct {
	ProjectID uuid.UUID

	collection[*DiagramRecord, *Diagram]
	revisions Finder[*DiagramRevision]
}

// NewProjectDiagrams returns an empty association reading from diagrams.
// Diagrams built by it read their revisions from revisions.
func NewProjectDiagrams(diagrams Finder[*DiagramRecord], revisions Finder[*DiagramRevision]) *ProjectDiagrams {
	a := &ProjectDiagrams{revisions: revisions}
	a.finder = diagrams
	a.build = func(r *DiagramRecord) (*Diagram, error) {
		return DiagramFromRecord(r, NewDiagramRevisions(a.revisions))
	}
	return a
}

// All returns the diagrams of ProjectID ordered by id.
func (a *ProjectDiagrams) All(ctx context.Context) ([]*Diagram, error) {
	if a == nil {
		return nil, ErrDetached
	}
	id := a.ProjectID
	return a.load(ctx, repository.SelectCriteria(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.project_id = ?", id).OrderExpr("?TableAlias.id ASC")
	}))
}

// ProjectConversations is the project's conversation association.
type ProjectConversations struct {
	ProjectRef string

	collection[*ConversationRecord, *Conversation]
}

// NewProjectConversations returns an empty association reading from conversations.
// Conversations built by it read their messages from messages.
func NewProjectConversations(conversations Finder[*ConversationRecord], messages Finder[*MessageRecord]) *ProjectConversations {
	a := &ProjectConversations{}
	a.finder = conversations
	a.build = func(r *ConversationRecord) (*Conversation, error) {
		return ConversationFromRecord(r, NewConversationMessages(messages))
	}
	return a
}

// All returns the conversations of ProjectRef ordered by id.
func (a *ProjectConversations) All(ctx context.Context) ([]*Conversation, error) {
	if a == nil {
		return nil, ErrDetached
	}
	ref := a.ProjectRef
	return a.load(ctx, repository.SelectCriteria(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.project_ref = ?", ref).OrderExpr("?TableAlias.id ASC")
	}))
}

// ProjectFromRecord builds a live project around fresh associations.
func ProjectFromRecord(r *ProjectRecord, diagrams *ProjectDiagrams, conversations *ProjectConversations) (*Project, error) {
	if r == nil {
		return nil, ErrNilRecord
	}
	diagrams.ProjectID = r.ID
	conversations.ProjectRef = r.ID.String()
	return NewProject(r.ID.String(), ProjectDescription{Name: r.Name, Description: r.Description}, diagrams, conversations)
}
