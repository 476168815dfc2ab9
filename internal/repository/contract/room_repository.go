package contract

import (
	"context"
	"time"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RoomRepository interface {
	// CreateIdempotent inserts the room unless one already exists for its
	// pair key. When the insert loses a concurrent race (or the room
	// predates the call), the existing row is returned and created is
	// false. Exactly one room per participant set survives either way.
	CreateIdempotent(ctx context.Context, room *entity.Room) (result *entity.Room, created bool, err error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Room, error)
	FindAllForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Room, error)
	// UpdateLastActivity is last-write-wins; lost updates are tolerated.
	UpdateLastActivity(ctx context.Context, roomId uuid.UUID, at time.Time) error
}
