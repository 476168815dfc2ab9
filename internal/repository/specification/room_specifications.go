package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByPairKey struct {
	PairKey string
}

func (s ByPairKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pair_key = ?", s.PairKey)
}

type ByRoomID struct {
	RoomID uuid.UUID
}

func (s ByRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomID)
}

// HasParticipant narrows rooms to those the given user belongs to.
type HasParticipant struct {
	UserID uuid.UUID
}

func (s HasParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN room_participants rp ON rp.room_id = rooms.id").
		Where("rp.user_id = ?", s.UserID)
}
