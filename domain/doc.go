// Package domain is a small business-modeling domain wired through the
// entity cache: projects own diagrams and conversations, diagrams own
// revisions, conversations own messages.
//
// Rows are read through go-repository-bun repositories. Each entity keeps its
// associations as collaborators that query on first use, so a cached entity
// only stores its identity and description. Associations are routed by the
// parent id the hydrator assigns:
//
//	project       uuid string   diagrams by uuid.UUID, conversations by string
//	diagram       int           revisions by int
//	conversation  "7" (string)  messages by int64
//
// Wiring a cache:
//
//	registry := association.NewRegistry()
//	_ = domain.Register(registry, domain.Options{EagerMessages: true})
//	registry.Seal()
//
//	providers := domain.Providers(repos)
//	h := hydration.NewHydrator(registry, func() association.Factory { return providers })
//	c, _ := hydratingcache.NewManager(h).GetCache("conversations")
//
//	conv, err := domain.NewLoaders(repos).CachedConversation(ctx, c, "7", true)
package domain
