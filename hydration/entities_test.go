package hydration

import (
	"errors"

	"github.com/goliatone/go-entity-cache/association"
)

type widgetDesc struct {
	Name  string `msgpack:"name"`
	Count int    `msgpack:"count"`
}

type widget struct {
	id   int
	desc widgetDesc
}

func newWidget(id int, desc widgetDesc) *widget {
	return &widget{id: id, desc: desc}
}

func (w *widget) EntityType() string { return "widget" }
func (w *widget) Identity() any      { return w.id }
func (w *widget) Description() any   { return w.desc }

type message struct {
	id   int64
	body string
}

func newMessage(id int64, body string) *message {
	return &message{id: id, body: body}
}

func (m *message) EntityType() string { return "message" }
func (m *message) Identity() any      { return m.id }
func (m *message) Description() any   { return m.body }

type messageList struct {
	ConversationID int64

	loaded   []Entity
	isLoaded bool
}

func (l *messageList) Snapshot() ([]Entity, bool) { return l.loaded, l.isLoaded }

func (l *messageList) Preload(entities []Entity) {
	l.loaded = entities
	l.isLoaded = true
}

type convDesc struct {
	Title string `msgpack:"title"`
}

type conversation struct {
	id       string
	desc     convDesc
	messages *messageList
}

var errEmptyConversationID = errors.New("conversation id is required")

func newConversation(id string, desc convDesc, messages *messageList) (*conversation, error) {
	if id == "" {
		return nil, errEmptyConversationID
	}
	return &conversation{id: id, desc: desc, messages: messages}, nil
}

func (c *conversation) EntityType() string { return "conversation" }
func (c *conversation) Identity() any      { return c.id }
func (c *conversation) Description() any   { return c.desc }

func (c *conversation) Association(field string) any {
	if field == "messages" {
		return c.messages
	}
	return nil
}

func newTestRegistry(eagerMessages bool) *association.Registry {
	r := association.NewRegistry()
	r.MustRegister(
		association.Registration{EntityType: "widget", Constructor: newWidget},
		association.Registration{EntityType: "message", Constructor: newMessage},
		association.Registration{
			EntityType:  "conversation",
			Constructor: newConversation,
			Associations: []association.Config{{
				FieldName:       "messages",
				AssociationType: association.TypeOf[messageList](),
				ParentIDField:   "ConversationID",
				ParentIDKind:    association.KindInt64,
				Eager:           eagerMessages,
			}},
		},
	)
	r.Seal()
	return r
}

func newTestFactory() func() association.Factory {
	p := association.Provide(association.NewProviders(), func() *messageList { return &messageList{} }).
		WithFallback(association.Reflective())
	return func() association.Factory { return p }
}

func newTestHydrator(eagerMessages bool) *Hydrator {
	return NewHydrator(newTestRegistry(eagerMessages), newTestFactory())
}

// staticRegistry serves registrations without validation so broken shapes
// can reach the metadata cache.
type staticRegistry map[string]association.Registration

func (s staticRegistry) For(entityType string) []association.Config {
	return s[entityType].Associations
}

func (s staticRegistry) Lookup(entityType string) (association.Registration, bool) {
	reg, ok := s[entityType]
	return reg, ok
}
