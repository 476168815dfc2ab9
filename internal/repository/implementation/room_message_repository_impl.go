package implementation

import (
	"context"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/mapper"
	"legal-assistant-be/internal/model"
	"legal-assistant-be/internal/repository/contract"
	"legal-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type RoomMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RoomMapper
}

func NewRoomMessageRepository(db *gorm.DB) contract.RoomMessageRepository {
	return &RoomMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewRoomMapper(),
	}
}

func (r *RoomMessageRepositoryImpl) Create(ctx context.Context, message *entity.RoomMessage) error {
	m := r.mapper.RoomMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.RoomMessageToEntity(m)
	return nil
}

func (r *RoomMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RoomMessage, error) {
	var models []*model.RoomMessage
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.RoomMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.RoomMessageToEntity(m)
	}
	return entities, nil
}
