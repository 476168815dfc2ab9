package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/mapper"
	"legal-assistant-be/internal/model"
	"legal-assistant-be/internal/repository/contract"
	"legal-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type RoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RoomMapper
}

func NewRoomRepository(db *gorm.DB) contract.RoomRepository {
	return &RoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewRoomMapper(),
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *RoomRepositoryImpl) CreateIdempotent(ctx context.Context, room *entity.Room) (*entity.Room, bool, error) {
	m := r.mapper.RoomToModel(room)

	err := r.db.WithContext(ctx).Create(m).Error
	if err == nil {
		return r.mapper.RoomToEntity(m), true, nil
	}
	if !isUniqueViolation(err) {
		return nil, false, err
	}

	// Lost the pair_key race: the winner's room is the room.
	existing, ferr := r.FindOne(ctx, specification.ByPairKey{PairKey: room.PairKey})
	if ferr != nil {
		return nil, false, ferr
	}
	if existing == nil {
		return nil, false, fmt.Errorf("room insert conflicted but winner not found for pair key %s", room.PairKey)
	}
	return existing, false, nil
}

func (r *RoomRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Room, error) {
	var m model.Room
	query := applySpecifications(r.db.WithContext(ctx).Preload("Participants"), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RoomToEntity(&m), nil
}

func (r *RoomRepositoryImpl) FindAllForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Room, error) {
	var models []*model.Room
	query := r.db.WithContext(ctx).Preload("Participants")
	query = specification.HasParticipant{UserID: userId}.Apply(query)
	query = specification.OrderBy{Field: "last_activity_at", Desc: true}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Room, len(models))
	for i, m := range models {
		entities[i] = r.mapper.RoomToEntity(m)
	}
	return entities, nil
}

func (r *RoomRepositoryImpl) UpdateLastActivity(ctx context.Context, roomId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", roomId).
		Update("last_activity_at", at).Error
}
