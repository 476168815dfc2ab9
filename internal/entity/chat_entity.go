package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Messages in strict chronological send order. Append-only.
	Messages []*ChatMessage
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Seq           int
	Role          string
	Content       string
	CreatedAt     time.Time
}
