package contract

import (
	"context"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	DeleteBySessionUnscoped(ctx context.Context, sessionId uuid.UUID) error
}
