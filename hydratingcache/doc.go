// Package hydratingcache puts entities into ordinary stores without the
// stores ever holding a live entity.
//
// A Manager hands out named caches. Each Cache extracts entities and entity
// sequences into hydration.CacheEntry values on every write path and hydrates
// fresh entities on every read:
//
//	manager := hydratingcache.NewManager(hydrator, hydratingcache.WithLogger(logger))
//	conversations, err := manager.GetCache("conversations")
//	if err != nil {
//		return err
//	}
//
//	conv, err := hydratingcache.GetOrLoadAs(ctx, conversations, "7", func(ctx context.Context) (*domain.Conversation, error) {
//		return repo.Conversation(ctx, "7")
//	})
//
// Values that are not entities are stored and returned unchanged.
package hydratingcache
