package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage rows are append-only: no updates, no reordering. Seq is the
// ordering key: per-session, monotonic, assigned under the turn lock.
// Wall-clock timestamps are display metadata only.
type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_messages_session_seq,priority:1"`
	Seq           int       `gorm:"not null;uniqueIndex:idx_chat_messages_session_seq,priority:2"`
	Role          string    `gorm:"type:varchar(50);not null"`
	Content       string    `gorm:"type:text;not null"` // empty on gateway failure, never NULL
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
