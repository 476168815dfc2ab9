package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Room is a courtroom conversation between a fixed participant set.
// PairKey is the canonical sorted join of the two participant ids for
// 1:1 rooms; its unique index arbitrates concurrent create races.
type Room struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PairKey        string         `gorm:"type:varchar(80);uniqueIndex;not null"`
	CaseMetadata   datatypes.JSON `gorm:"type:jsonb"`
	Archived       bool           `gorm:"default:false"`
	LastActivityAt time.Time      `gorm:"not null;index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`

	Participants []RoomParticipant `gorm:"foreignKey:RoomId"`
}

func (Room) TableName() string {
	return "rooms"
}

type RoomParticipant struct {
	RoomId uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (RoomParticipant) TableName() string {
	return "room_participants"
}
