package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProjectRecord is the persisted shape of a project.
type ProjectRecord struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// DiagramRecord is the persisted shape of a diagram.
type DiagramRecord struct {
	bun.BaseModel `bun:"table:diagrams,alias:d"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	ProjectID uuid.UUID `bun:"project_id,type:uuid,notnull" json:"project_id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Notation  string    `bun:"notation" json:"notation"`
}

// DiagramRevision is a stored revision of a diagram. Revisions are plain rows,
// not entities.
type DiagramRevision struct {
	bun.BaseModel `bun:"table:diagram_revisions,alias:dr"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	DiagramID int       `bun:"diagram_id,notnull" json:"diagram_id"`
	Version   int       `bun:"version,notnull" json:"version"`
	Content   string    `bun:"content" json:"content"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ConversationRecord is the persisted shape of a conversation. Conversations
// are keyed by a bigint but exposed with a string identity.
type ConversationRecord struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	ProjectRef string `bun:"project_ref,notnull" json:"project_ref"`
	Title      string `bun:"title" json:"title"`
}

// MessageRecord is the persisted shape of a message.
type MessageRecord struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	ConversationID int64     `bun:"conversation_id,notnull" json:"conversation_id"`
	Author         string    `bun:"author" json:"author"`
	Body           string    `bun:"body" json:"body"`
	SentAt         time.Time `bun:"sent_at,nullzero" json:"sent_at"`
}
