package domain

import (
	"strconv"
	"testing"

	"github.com/goliatone/go-entity-cache/association"
	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydratingcache"
	"github.com/goliatone/go-entity-cache/hydration"
	"github.com/goliatone/go-entity-cache/pkg/testsupport"
)

const projectID = "0b6f2c1e-7d1a-4c55-9a8e-3f2b1c0d9e8a"

type fakes struct {
	projects      *testsupport.FakeRepository[*ProjectRecord]
	diagrams      *testsupport.FakeRepository[*DiagramRecord]
	revisions     *testsupport.FakeRepository[*DiagramRevision]
	conversations *testsupport.FakeRepository[*ConversationRecord]
	messages      *testsupport.FakeRepository[*MessageRecord]
}

func newFakes(t *testing.T) *fakes {
	t.Helper()

	return &fakes{
		projects: testsupport.NewFakeRepository(
			testsupport.LoadRecords[*ProjectRecord](t, testsupport.FixturePath("projects.json"))...,
		).WithID(func(r *ProjectRecord) string { return r.ID.String() }),
		diagrams: testsupport.NewFakeRepository(
			testsupport.LoadRecords[*DiagramRecord](t, testsupport.FixturePath("diagrams.json"))...,
		),
		revisions: testsupport.NewFakeRepository(
			testsupport.LoadRecords[*DiagramRevision](t, testsupport.FixturePath("revisions.json"))...,
		),
		conversations: testsupport.NewFakeRepository(
			testsupport.LoadRecords[*ConversationRecord](t, testsupport.FixturePath("conversations.json"))...,
		).WithID(func(r *ConversationRecord) string { return strconv.FormatInt(r.ID, 10) }),
		messages: testsupport.NewFakeRepository(
			testsupport.LoadRecords[*MessageRecord](t, testsupport.FixturePath("messages.json"))...,
		),
	}
}

func (f *fakes) repositories() Repositories {
	return Repositories{
		Projects:      f.projects,
		Diagrams:      f.diagrams,
		Revisions:     f.revisions,
		Conversations: f.conversations,
		Messages:      f.messages,
	}
}

func newHydrator(t *testing.T, opts Options, factory association.Factory) *hydration.Hydrator {
	t.Helper()

	registry := association.NewRegistry()
	if err := Register(registry, opts); err != nil {
		t.Fatalf("Register: %v", err)
	}
	registry.Seal()

	return hydration.NewHydrator(registry, func() association.Factory { return factory })
}

func newCache(t *testing.T, h *hydration.Hydrator) *hydratingcache.Cache {
	t.Helper()

	store, err := cache.NewStore(cache.HydratingConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	c, err := hydratingcache.New("domain", store, h)
	if err != nil {
		t.Fatalf("hydratingcache.New: %v", err)
	}
	return c
}
