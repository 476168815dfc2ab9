package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ICourtroomService owns the room registry and the contact projection.
type ICourtroomService interface {
	StartRoom(ctx context.Context, userId uuid.UUID, request *dto.StartRoomRequest) (*dto.RoomResponse, error)
	GetContacts(ctx context.Context, userId uuid.UUID) ([]*dto.ContactResponse, error)
	GetRoomMessages(ctx context.Context, userId uuid.UUID, roomId uuid.UUID, limit, offset int) ([]*dto.RoomMessageResponse, error)
	SendRoomMessage(ctx context.Context, userId uuid.UUID, roomId uuid.UUID, request *dto.SendRoomMessageRequest) (*dto.RoomMessageResponse, error)
}

type courtroomService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	profileCache     *cache.Cache
	logger           logger.ILogger
}

func NewCourtroomService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) ICourtroomService {
	return &courtroomService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		profileCache:     cache.New(5*time.Minute, 10*time.Minute),
		logger:           log,
	}
}

// StartRoom resolves the one room for the caller and the addressed
// participant, creating it if it does not exist yet. Concurrent starts
// for the same pair converge on a single room: the loser of the insert
// race gets the winner's row back.
func (cs *courtroomService) StartRoom(ctx context.Context, userId uuid.UUID, request *dto.StartRoomRequest) (*dto.RoomResponse, error) {
	if request.ParticipantId == userId {
		return nil, serverutils.NewValidation("cannot start a room with yourself")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	other, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: request.ParticipantId})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if other == nil {
		return nil, serverutils.NewNotFound("participant not found")
	}

	participants := []uuid.UUID{userId, request.ParticipantId}
	now := time.Now()
	room := &entity.Room{
		Id:             uuid.New(),
		PairKey:        entity.PairKeyFor(participants),
		CaseMetadata:   request.CaseMetadata,
		LastActivityAt: now,
		CreatedAt:      now,
		ParticipantIds: participants,
	}

	result, created, err := uow.RoomRepository().CreateIdempotent(ctx, room)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	if created {
		cs.publishRoomTouched(ctx, result)
	}

	return &dto.RoomResponse{
		Id:             result.Id,
		ParticipantIds: result.ParticipantIds,
		CaseMetadata:   result.CaseMetadata,
		LastActivityAt: result.LastActivityAt,
		CreatedAt:      result.CreatedAt,
	}, nil
}

// GetContacts recomputes the caller's contact list from their rooms. The
// projection is derived on every call; clients replace their copy
// wholesale rather than patching it.
func (cs *courtroomService) GetContacts(ctx context.Context, userId uuid.UUID) ([]*dto.ContactResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.RoomRepository().FindAllForUser(ctx, userId)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	summaries, err := cs.profileSummaries(ctx, uow, rooms, userId)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	contacts := make([]*dto.ContactResponse, 0, len(rooms))
	for _, room := range rooms {
		for _, pid := range room.ParticipantIds {
			if pid == userId {
				continue
			}
			summary, ok := summaries[pid]
			if !ok {
				// Participant row vanished; skip rather than render a hole.
				continue
			}
			contacts = append(contacts, &dto.ContactResponse{
				RoomId:         room.Id,
				UserId:         summary.Id,
				FullName:       summary.FullName,
				AvatarURL:      summary.AvatarURL,
				LastActivityAt: room.LastActivityAt,
			})
		}
	}
	return contacts, nil
}

// GetRoomMessages returns a room's messages in chronological order.
// Non-participants get the same not-found as a missing room. A limit of
// zero means the whole transcript.
func (cs *courtroomService) GetRoomMessages(ctx context.Context, userId uuid.UUID, roomId uuid.UUID, limit, offset int) ([]*dto.RoomMessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findMemberRoom(ctx, uow, userId, roomId); err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByRoomID{RoomID: roomId},
		specification.OrderBy{Field: "created_at", Desc: false},
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}

	messages, err := uow.RoomMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	response := make([]*dto.RoomMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, roomMessageToResponse(m))
	}
	return response, nil
}

// SendRoomMessage appends to the room and signals activity. The activity
// bump and the client notification ride the touch topic asynchronously;
// the append itself is what the caller waits on.
func (cs *courtroomService) SendRoomMessage(ctx context.Context, userId uuid.UUID, roomId uuid.UUID, request *dto.SendRoomMessageRequest) (*dto.RoomMessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	room, err := cs.findMemberRoom(ctx, uow, userId, roomId)
	if err != nil {
		return nil, err
	}

	msg := &entity.RoomMessage{
		Id:        uuid.New(),
		RoomId:    roomId,
		SenderId:  userId,
		Content:   request.Content,
		CreatedAt: time.Now(),
	}
	if err := uow.RoomMessageRepository().Create(ctx, msg); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	cs.publishRoomTouched(ctx, room)

	return roomMessageToResponse(msg), nil
}

func (cs *courtroomService) findMemberRoom(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, roomId uuid.UUID) (*entity.Room, error) {
	room, err := uow.RoomRepository().FindOne(ctx, specification.ByID{ID: roomId})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if room == nil || !room.HasParticipant(userId) {
		return nil, serverutils.NewNotFound("room not found")
	}
	return room, nil
}

// profileSummaries resolves the counterpart profiles for a room set,
// hitting the DB only for identities not in the short-lived cache.
func (cs *courtroomService) profileSummaries(ctx context.Context, uow unitofwork.UnitOfWork, rooms []*entity.Room, selfId uuid.UUID) (map[uuid.UUID]entity.ProfileSummary, error) {
	result := make(map[uuid.UUID]entity.ProfileSummary)
	var missing []uuid.UUID

	for _, room := range rooms {
		for _, pid := range room.ParticipantIds {
			if pid == selfId {
				continue
			}
			if _, seen := result[pid]; seen {
				continue
			}
			if cached, ok := cs.profileCache.Get(pid.String()); ok {
				result[pid] = cached.(entity.ProfileSummary)
				continue
			}
			missing = append(missing, pid)
		}
	}

	if len(missing) > 0 {
		users, err := uow.UserRepository().FindByIds(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			summary := u.Summary()
			result[u.Id] = summary
			cs.profileCache.Set(u.Id.String(), summary, cache.DefaultExpiration)
		}
	}
	return result, nil
}

// publishRoomTouched is fire-and-forget; a dropped touch costs a stale
// contact ordering, never a lost message.
func (cs *courtroomService) publishRoomTouched(ctx context.Context, room *entity.Room) {
	payload, err := json.Marshal(dto.RoomTouchedMessage{
		RoomId:         room.Id,
		ParticipantIds: room.ParticipantIds,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		cs.logger.Error("CourtroomService", "Failed to marshal room touch", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := cs.publisherService.Publish(ctx, payload); err != nil {
		cs.logger.Warn("CourtroomService", fmt.Sprintf("Failed to publish touch for room %s", room.Id), map[string]interface{}{"error": err.Error()})
	}
}

func roomMessageToResponse(m *entity.RoomMessage) *dto.RoomMessageResponse {
	return &dto.RoomMessageResponse{
		Id:        m.Id,
		RoomId:    m.RoomId,
		SenderId:  m.SenderId,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
