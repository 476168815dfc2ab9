package unitofwork

import (
	"context"

	"legal-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	RoomRepository() contract.RoomRepository
	RoomMessageRepository() contract.RoomMessageRepository
}
