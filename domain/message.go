package domain

import "time"

// MessageDescription is the cached payload of a message.
type MessageDescription struct {
	Author string    `json:"author" msgpack:"author"`
	Body   string    `json:"body" msgpack:"body"`
	SentAt time.Time `json:"sent_at" msgpack:"sent_at"`
}

// Message is a leaf entity with no associations.
type Message struct {
	id   int64
	desc MessageDescription
}

// NewMessage builds a message.
func NewMessage(identity int64, desc MessageDescription) *Message {
	return &Message{id: identity, desc: desc}
}

func (m *Message) EntityType() string { return MessageType }
func (m *Message) Identity() any      { return m.id }
func (m *Message) Description() any   { return m.desc }

func (m *Message) ID() int64                   { return m.id }
func (m *Message) Author() string              { return m.desc.Author }
func (m *Message) Body() string                { return m.desc.Body }
func (m *Message) SentAt() time.Time           { return m.desc.SentAt }
func (m *Message) Content() MessageDescription { return m.desc }

// MessageFromRecord builds a message from its row.
func MessageFromRecord(r *MessageRecord) (*Message, error) {
	if r == nil {
		return nil, ErrNilRecord
	}
	return NewMessage(r.ID, MessageDescription{Author: r.Author, Body: r.Body, SentAt: r.SentAt}), nil
}
