package hydratingcache

import (
	"testing"

	"github.com/goliatone/go-entity-cache/association"
	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydration"
)

type item struct {
	id   int
	name string
}

func newItem(id int, name string) *item { return &item{id: id, name: name} }

func (i *item) EntityType() string { return "item" }
func (i *item) Identity() any      { return i.id }
func (i *item) Description() any   { return i.name }

type itemList struct {
	FolderID int64
}

type folderDesc struct {
	Title string
}

type folder struct {
	id    string
	desc  folderDesc
	items *itemList
}

func newFolder(id string, desc folderDesc, items *itemList) (*folder, error) {
	return &folder{id: id, desc: desc, items: items}, nil
}

func (f *folder) EntityType() string { return "folder" }
func (f *folder) Identity() any      { return f.id }
func (f *folder) Description() any   { return f.desc }

func newTestHydrator(t *testing.T) *hydration.Hydrator {
	t.Helper()

	registry := association.NewRegistry()
	registry.MustRegister(
		association.Registration{EntityType: "item", Constructor: newItem},
		association.Registration{
			EntityType:  "folder",
			Constructor: newFolder,
			Associations: []association.Config{{
				FieldName:       "items",
				AssociationType: association.TypeOf[itemList](),
				ParentIDField:   "FolderID",
				ParentIDKind:    association.KindInt64,
			}},
		},
	)
	registry.Seal()

	return hydration.NewHydrator(registry, func() association.Factory { return association.Reflective() })
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	store, err := cache.NewStore(cache.HydratingConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	c, err := New("test", store, newTestHydrator(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}
