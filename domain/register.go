package domain

import (
	"context"
	"fmt"

	"github.com/goliatone/go-entity-cache/association"
	"github.com/goliatone/go-entity-cache/hydratingcache"
	"github.com/goliatone/go-entity-cache/hydration"
)

// Entity type names.
const (
	ProjectType      = "project"
	DiagramType      = "diagram"
	ConversationType = "conversation"
	MessageType      = "message"
)

// Options tunes how the domain registers itself.
type Options struct {
	// EagerMessages caches a conversation's messages together with the
	// conversation whenever they were loaded before the write.
	EagerMessages bool
}

// Registrations returns the association registrations of every domain type.
func Registrations(opts Options) []association.Registration {
	return []association.Registration{
		{
			EntityType:  ProjectType,
			Constructor: NewProject,
			Associations: []association.Config{
				{
					FieldName:       "diagrams",
					AssociationType: association.TypeOf[ProjectDiagrams](),
					ParentIDField:   "ProjectID",
					ParentIDKind:    association.KindUUID,
				},
				{
					FieldName:       "conversations",
					AssociationType: association.TypeOf[ProjectConversations](),
					ParentIDField:   "ProjectRef",
					ParentIDKind:    association.KindString,
				},
			},
		},
		{
			EntityType:  DiagramType,
			Constructor: NewDiagram,
			Associations: []association.Config{
				{
					FieldName:       "revisions",
					AssociationType: association.TypeOf[DiagramRevisions](),
					ParentIDField:   "DiagramID",
				},
			},
		},
		{
			EntityType:  ConversationType,
			Constructor: NewConversation,
			Associations: []association.Config{
				{
					FieldName:       "messages",
					AssociationType: association.TypeOf[ConversationMessages](),
					ParentIDField:   "ConversationID",
					ParentIDKind:    association.KindInt64,
					Eager:           opts.EagerMessages,
				},
			},
		},
		{
			EntityType:  MessageType,
			Constructor: NewMessage,
		},
	}
}

// Register adds every domain type to registry.
func Register(registry *association.Registry, opts Options) error {
	for _, reg := range Registrations(opts) {
		if err := registry.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// Providers returns an association factory whose associations read from repos.
func Providers(repos Repositories) *association.Providers {
	p := association.NewProviders()
	association.Provide(p, func() *ProjectDiagrams {
		return NewProjectDiagrams(repos.Diagrams, repos.Revisions)
	})
	association.Provide(p, func() *ProjectConversations {
		return NewProjectConversations(repos.Conversations, repos.Messages)
	})
	association.Provide(p, func() *DiagramRevisions {
		return NewDiagramRevisions(repos.Revisions)
	})
	association.Provide(p, func() *ConversationMessages {
		return NewConversationMessages(repos.Messages)
	})
	return p
}

// Loaders reads live entities from the repositories. Its methods fit the
// loader arguments of hydratingcache.GetOrLoadAs.
type Loaders struct {
	repos Repositories
}

// NewLoaders returns loaders over repos.
func NewLoaders(repos Repositories) *Loaders {
	return &Loaders{repos: repos}
}

// Project loads a single project by its uuid string.
func (l *Loaders) Project(id string) func(ctx context.Context) (*Project, error) {
	return func(ctx context.Context) (*Project, error) {
		if l.repos.Projects == nil {
			return nil, ErrDetached
		}
		r, err := l.repos.Projects.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("domain: load project %s: %w", id, err)
		}
		return ProjectFromRecord(r,
			NewProjectDiagrams(l.repos.Diagrams, l.repos.Revisions),
			NewProjectConversations(l.repos.Conversations, l.repos.Messages),
		)
	}
}

// Conversation loads a conversation by its string identity. When withMessages
// is set the messages are queried before returning so an eager cache keeps them.
func (l *Loaders) Conversation(id string, withMessages bool) func(ctx context.Context) (*Conversation, error) {
	return func(ctx context.Context) (*Conversation, error) {
		if l.repos.Conversations == nil {
			return nil, ErrDetached
		}
		r, err := l.repos.Conversations.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("domain: load conversation %s: %w", id, err)
		}
		c, err := ConversationFromRecord(r, NewConversationMessages(l.repos.Messages))
		if err != nil {
			return nil, err
		}
		if withMessages {
			if _, err := c.Messages(ctx); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
}

// ProjectConversations loads every conversation of a project.
func (l *Loaders) ProjectConversations(projectID string) func(ctx context.Context) ([]*Conversation, error) {
	return func(ctx context.Context) ([]*Conversation, error) {
		a := NewProjectConversations(l.repos.Conversations, l.repos.Messages)
		a.ProjectRef = projectID
		return a.All(ctx)
	}
}

// CachedConversation reads a conversation through c, loading it on a miss.
func (l *Loaders) CachedConversation(ctx context.Context, c *hydratingcache.Cache, id string, withMessages bool) (*Conversation, error) {
	return hydratingcache.GetOrLoadAs(ctx, c, id, l.Conversation(id, withMessages))
}

// CachedProject reads a project through c, loading it on a miss.
func (l *Loaders) CachedProject(ctx context.Context, c *hydratingcache.Cache, id string) (*Project, error) {
	return hydratingcache.GetOrLoadAs(ctx, c, id, l.Project(id))
}

var (
	_ hydration.Associated  = (*Project)(nil)
	_ hydration.Associated  = (*Conversation)(nil)
	_ hydration.Snapshotter = (*ConversationMessages)(nil)
	_ hydration.Preloader   = (*ConversationMessages)(nil)
	_ hydration.Preloader   = (*ProjectConversations)(nil)
)
