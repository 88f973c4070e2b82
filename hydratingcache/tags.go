package hydratingcache

import (
	"context"
	"strings"
	"sync"
)

type cacheTagsContextKey struct{}

// WithCacheTags attaches tags to the context. Keys written by Put or
// GetOrLoad under that context can later be removed together with EvictTags.
func WithCacheTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(cacheTagsFromContext(ctx), tags...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, cacheTagsContextKey{}, combined)
}

func cacheTagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(cacheTagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// defaultTagIndexFloor is the tracked key count below which the tag index is
// never pruned.
const defaultTagIndexFloor = 1024

// tagIndex maps tags to the store keys written under them. Keys leave the
// index when the cache evicts them. Keys the store drops on its own are found
// by pruning, which runs whenever the index outgrows its limit.
type tagIndex struct {
	mu      sync.Mutex
	byTag   map[string]map[string]struct{}
	byKey   map[string]map[string]struct{}
	floor   int
	limit   int
	pruning bool
}

func newTagIndex(floor int) *tagIndex {
	return &tagIndex{
		byTag: make(map[string]map[string]struct{}),
		byKey: make(map[string]map[string]struct{}),
		floor: floor,
		limit: floor,
	}
}

// track records key under tags. It reports true when the caller should
// prune; only one caller at a time is told to.
func (t *tagIndex) track(key string, tags []string) bool {
	if len(tags) == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	keyTags, ok := t.byKey[key]
	if !ok {
		keyTags = make(map[string]struct{}, len(tags))
		t.byKey[key] = keyTags
	}
	for _, tag := range tags {
		set, ok := t.byTag[tag]
		if !ok {
			set = make(map[string]struct{})
			t.byTag[tag] = set
		}
		set[key] = struct{}{}
		keyTags[tag] = struct{}{}
	}

	if t.pruning || len(t.byKey) <= t.limit {
		return false
	}
	t.pruning = true
	return true
}

// forget drops keys from every tag.
func (t *tagIndex) forget(keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range keys {
		t.drop(key)
	}
}

// forgetPrefix drops every key starting with prefix.
func (t *tagIndex) forgetPrefix(prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.byKey {
		if strings.HasPrefix(key, prefix) {
			t.drop(key)
		}
	}
}

// take removes tags and every key written under them, returning the keys.
func (t *tagIndex) take(tags []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	seen := make(map[string]struct{})
	for _, tag := range tags {
		for key := range t.byTag[tag] {
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				out = append(out, key)
			}
		}
	}
	for _, key := range out {
		t.drop(key)
	}
	return out
}

// snapshot returns the tracked keys.
func (t *tagIndex) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.byKey))
	for key := range t.byKey {
		out = append(out, key)
	}
	return out
}

// finishPrune drops stale keys and sets the next limit to twice what is left.
func (t *tagIndex) finishPrune(stale []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, key := range stale {
		t.drop(key)
	}
	t.limit = max(t.floor, 2*len(t.byKey))
	t.pruning = false
}

func (t *tagIndex) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byTag = make(map[string]map[string]struct{})
	t.byKey = make(map[string]map[string]struct{})
	t.limit = t.floor
}

func (t *tagIndex) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byKey)
}

// drop must be called with mu held.
func (t *tagIndex) drop(key string) {
	for tag := range t.byKey[key] {
		set := t.byTag[tag]
		delete(set, key)
		if len(set) == 0 {
			delete(t.byTag, tag)
		}
	}
	delete(t.byKey, key)
}

// missingKeys returns the entries of tracked absent from live.
func missingKeys(tracked, live []string) []string {
	present := make(map[string]struct{}, len(live))
	for _, key := range live {
		present[key] = struct{}{}
	}
	var out []string
	for _, key := range tracked {
		if _, ok := present[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}
