package contract

import (
	"context"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/specification"
)

type RoomMessageRepository interface {
	Create(ctx context.Context, message *entity.RoomMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RoomMessage, error)
}
