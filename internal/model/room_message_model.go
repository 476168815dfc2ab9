package model

import (
	"time"

	"github.com/google/uuid"
)

type RoomMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoomId    uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderId  uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RoomMessage) TableName() string {
	return "room_messages"
}
