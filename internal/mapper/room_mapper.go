package mapper

import (
	"encoding/json"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RoomMapper struct{}

func NewRoomMapper() *RoomMapper {
	return &RoomMapper{}
}

func (m *RoomMapper) RoomToEntity(r *model.Room) *entity.Room {
	if r == nil {
		return nil
	}

	var meta map[string]interface{}
	if len(r.CaseMetadata) > 0 {
		// Malformed metadata is dropped rather than failing the read.
		_ = json.Unmarshal(r.CaseMetadata, &meta)
	}

	participantIds := make([]uuid.UUID, len(r.Participants))
	for i, p := range r.Participants {
		participantIds[i] = p.UserId
	}

	return &entity.Room{
		Id:             r.Id,
		PairKey:        r.PairKey,
		CaseMetadata:   meta,
		Archived:       r.Archived,
		LastActivityAt: r.LastActivityAt,
		CreatedAt:      r.CreatedAt,
		ParticipantIds: participantIds,
	}
}

func (m *RoomMapper) RoomToModel(r *entity.Room) *model.Room {
	if r == nil {
		return nil
	}

	var meta datatypes.JSON
	if r.CaseMetadata != nil {
		raw, err := json.Marshal(r.CaseMetadata)
		if err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	participants := make([]model.RoomParticipant, len(r.ParticipantIds))
	for i, id := range r.ParticipantIds {
		participants[i] = model.RoomParticipant{RoomId: r.Id, UserId: id}
	}

	return &model.Room{
		Id:             r.Id,
		PairKey:        r.PairKey,
		CaseMetadata:   meta,
		Archived:       r.Archived,
		LastActivityAt: r.LastActivityAt,
		CreatedAt:      r.CreatedAt,
		Participants:   participants,
	}
}

func (m *RoomMapper) RoomMessageToEntity(msg *model.RoomMessage) *entity.RoomMessage {
	if msg == nil {
		return nil
	}
	return &entity.RoomMessage{
		Id:        msg.Id,
		RoomId:    msg.RoomId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *RoomMapper) RoomMessageToModel(msg *entity.RoomMessage) *model.RoomMessage {
	if msg == nil {
		return nil
	}
	return &model.RoomMessage{
		Id:        msg.Id,
		RoomId:    msg.RoomId,
		SenderId:  msg.SenderId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
