package hydration

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type envelopeKind uint8

const (
	envelopeScalar envelopeKind = iota
	envelopeEntry
	envelopeEntries
)

// envelope tags stored values so a remote store gives back the same shape it
// was given: a CacheEntry, a []CacheEntry or anything else.
type envelope struct {
	Kind    envelopeKind `msgpack:"k"`
	Entry   *CacheEntry  `msgpack:"e,omitempty"`
	Entries []CacheEntry `msgpack:"l,omitempty"`
	Scalar  any          `msgpack:"s"`
}

// EnvelopeCodec encodes store values with msgpack. It refuses live entities,
// which cannot survive a round trip.
type EnvelopeCodec struct{}

// Encode implements cache.Codec.
func (EnvelopeCodec) Encode(v any) ([]byte, error) {
	var env envelope
	switch t := v.(type) {
	case CacheEntry:
		env = envelope{Kind: envelopeEntry, Entry: &t}
	case *CacheEntry:
		if t == nil {
			break
		}
		env = envelope{Kind: envelopeEntry, Entry: t}
	case []CacheEntry:
		env = envelope{Kind: envelopeEntries, Entries: t}
	case Entity:
		return nil, fmt.Errorf("%w: %T", ErrLiveEntity, v)
	default:
		env = envelope{Kind: envelopeScalar, Scalar: v}
	}
	return msgpack.Marshal(&env)
}

// Decode implements cache.Codec. Integers in scalars and descriptions decode
// as int64, maps as map[string]any.
func (EnvelopeCodec) Decode(b []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}

	switch env.Kind {
	case envelopeEntry:
		if env.Entry == nil {
			return nil, fmt.Errorf("hydration: envelope without entry")
		}
		return *env.Entry, nil
	case envelopeEntries:
		if env.Entries == nil {
			return []CacheEntry{}, nil
		}
		return env.Entries, nil
	case envelopeScalar:
		return env.Scalar, nil
	}
	return nil, fmt.Errorf("hydration: unknown envelope kind %d", env.Kind)
}
