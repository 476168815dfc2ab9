package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartRoomRequest struct {
	ParticipantId uuid.UUID              `json:"participant_id" validate:"required"`
	CaseMetadata  map[string]interface{} `json:"case_metadata,omitempty"`
}

type RoomResponse struct {
	Id             uuid.UUID              `json:"id"`
	ParticipantIds []uuid.UUID            `json:"participant_ids"`
	CaseMetadata   map[string]interface{} `json:"case_metadata,omitempty"`
	LastActivityAt time.Time              `json:"last_activity_at"`
	CreatedAt      time.Time              `json:"created_at"`
}

type ContactResponse struct {
	RoomId         uuid.UUID `json:"room_id"`
	UserId         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type SendRoomMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=8000"`
}

type RoomMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	RoomId    uuid.UUID `json:"room_id"`
	SenderId  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
