package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendTurnRequest struct {
	// SessionId is optional: absent means "start a new conversation".
	SessionId *uuid.UUID `json:"session_id"`
	Message   string     `json:"message" validate:"required,min=1,max=8000"`
}

type SendTurnResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Title     string    `json:"title"`
	Response  string    `json:"response"`
}

type SessionSummaryResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionDetailResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Messages  []*ChatMessageResponse `json:"messages"`
}
