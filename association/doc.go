// Package association holds the declarative output the hydration layer needs
// to rebuild entities: per entity type, a constructor and the association
// collaborators it takes, plus the Factory that creates those collaborators.
//
//	registry := association.NewRegistry()
//	registry.MustRegister(association.Registration{
//		EntityType:  "conversation",
//		Constructor: NewConversation,
//		Associations: []association.Config{{
//			FieldName:       "messages",
//			AssociationType: association.TypeOf[MessageList](),
//			ParentIDField:   "ConversationID",
//			ParentIDKind:    association.KindInt64,
//		}},
//	})
//	registry.Seal()
//
// A Factory is consulted on every hydration, so associations are never shared
// between entities.
package association
