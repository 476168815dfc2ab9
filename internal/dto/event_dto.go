package dto

import (
	"time"

	"github.com/google/uuid"
)

// RoomTouchedMessage rides the in-process activity topic. The consumer
// turns it into a durable last-activity bump plus a cross-instance
// ROOM_CHANGED fan-out.
type RoomTouchedMessage struct {
	RoomId         uuid.UUID   `json:"room_id"`
	ParticipantIds []uuid.UUID `json:"participant_ids"`
	OccurredAt     time.Time   `json:"occurred_at"`
}
