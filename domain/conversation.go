package domain

import (
	"context"
	"fmt"
	"strconv"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ConversationDescription is the cached payload of a conversation.
type ConversationDescription struct {
	Title string `json:"title" msgpack:"title"`
}

// Conversation groups messages. Its identity is the decimal form of the
// bigint row id, while messages are routed by the bigint itself.
type Conversation struct {
	id       string
	desc     ConversationDescription
	messages *ConversationMessages
}

// NewConversation builds a conversation.
func NewConversation(identity string, desc ConversationDescription, messages *ConversationMessages) *Conversation {
	return &Conversation{id: identity, desc: desc, messages: messages}
}

func (c *Conversation) EntityType() string { return ConversationType }
func (c *Conversation) Identity() any      { return c.id }
func (c *Conversation) Description() any   { return c.desc }

func (c *Conversation) Association(field string) any {
	if field == "messages" && c.messages != nil {
		return c.messages
	}
	return nil
}

func (c *Conversation) ID() string    { return c.id }
func (c *Conversation) Title() string { return c.desc.Title }

// Messages returns the conversation's messages ordered by id. When the
// conversation came out of a cache configured for eager messages no query runs.
func (c *Conversation) Messages(ctx context.Context) ([]*Message, error) {
	return c.messages.All(ctx)
}

// ConversationMessages is the conversation's message association.
type ConversationMessages struct {
	ConversationID int64

	collection[*MessageRecord, *Message]
}

// NewConversationMessages returns an empty association reading from messages.
func NewConversationMessages(messages Finder[*MessageRecord]) *ConversationMessages {
	a := &ConversationMessages{}
	a.finder = messages
	a.build = MessageFromRecord
	return a
}

// All returns the messages of ConversationID ordered by id.
func (a *ConversationMessages) All(ctx context.Context) ([]*Message, error) {
	if a == nil {
		return nil, ErrDetached
	}
	id := a.ConversationID
	msgs, err := a.load(ctx, repository.SelectCriteria(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.conversation_id = ?", id).OrderExpr("?TableAlias.id ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("domain: load messages of conversation %d: %w", id, err)
	}
	return msgs, nil
}

// ConversationFromRecord builds a live conversation around messages.
func ConversationFromRecord(r *ConversationRecord, messages *ConversationMessages) (*Conversation, error) {
	if r == nil {
		return nil, ErrNilRecord
	}
	messages.ConversationID = r.ID
	return NewConversation(strconv.FormatInt(r.ID, 10), ConversationDescription{Title: r.Title}, messages), nil
}
