package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ROOM_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic envelope used when replaying events off the
// wire, where only the subject and raw payload are known.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	// TypeRoomChanged is the single notification kind pushed to clients.
	// The payload is a hint only; receivers re-fetch authoritative state
	// and never merge it as a delta.
	TypeRoomChanged = "ROOM_CHANGED"
)

// RoomChangedEvent signals that a room was created or received activity.
// ParticipantIds scopes delivery; RoomId is the re-fetch hint.
type RoomChangedEvent struct {
	RoomId         uuid.UUID
	ParticipantIds []uuid.UUID
	OccurredAt     time.Time
}

func NewRoomChangedEvent(roomId uuid.UUID, participantIds []uuid.UUID) RoomChangedEvent {
	return RoomChangedEvent{
		RoomId:         roomId,
		ParticipantIds: participantIds,
		OccurredAt:     time.Now(),
	}
}

func (e RoomChangedEvent) EventType() string {
	return TypeRoomChanged
}

func (e RoomChangedEvent) Payload() map[string]interface{} {
	ids := make([]string, len(e.ParticipantIds))
	for i, id := range e.ParticipantIds {
		ids[i] = id.String()
	}
	return map[string]interface{}{
		"room_id":         e.RoomId.String(),
		"participant_ids": ids,
	}
}

func (e RoomChangedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
