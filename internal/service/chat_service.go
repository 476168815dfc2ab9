package service

import (
	"context"
	"time"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/completion"
	"legal-assistant-be/pkg/llm"

	"github.com/google/uuid"
)

// IChatService is the session manager for AI conversations.
type IChatService interface {
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionDetailResponse, error)
	SendTurn(ctx context.Context, userId uuid.UUID, request *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    *completion.Gateway
	turnLocks  *memory.TurnLockRegistry
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	gateway *completion.Gateway,
	turnLocks *memory.TurnLockRegistry,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		gateway:    gateway,
		turnLocks:  turnLocks,
		logger:     log,
	}
}

// GetAllSessions lists the caller's sessions, most recently active first.
func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	response := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.SessionSummaryResponse{
			Id:        s.Id,
			Title:     s.Title,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return response, nil
}

// GetSession loads one session with its full message sequence. The owner
// filter is part of the query: a session belonging to someone else is
// indistinguishable from a missing one.
func (cs *chatService) GetSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionDetailResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if sess == nil {
		return nil, serverutils.NewNotFound("session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	msgResponses := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		msgResponses = append(msgResponses, &dto.ChatMessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	return &dto.SessionDetailResponse{
		Id:        sess.Id,
		Title:     sess.Title,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Messages:  msgResponses,
	}, nil
}

// SendTurn runs one conversation turn: resolve (or create) the session,
// durably append the user message, ask the completion gateway, append the
// reply. A gateway failure degrades to a fixed fallback reply; it never
// fails the turn. Turns on the same session are serialized.
func (cs *chatService) SendTurn(ctx context.Context, userId uuid.UUID, request *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := cs.resolveSession(ctx, uow, userId, request)
	if err != nil {
		return nil, err
	}

	if err := cs.acquireTurnLock(sess.Id); err != nil {
		return nil, err
	}
	defer cs.turnLocks.Release(sess.Id)

	history, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sess.Id},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	// Seq is assigned under the turn lock, so the pair lands as two
	// consecutive positions no matter how fast the gateway answers.
	nextSeq := len(history) + 1

	// The user message must be durable before the gateway is invoked, so
	// an upstream failure can never lose the user's input.
	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sess.Id,
		Seq:           nextSeq,
		Role:          constant.ChatMessageRoleUser,
		Content:       request.Message,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	botText := cs.generateReply(ctx, history, request.Message, sess.Id)

	botMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sess.Id,
		Seq:           nextSeq + 1,
		Role:          constant.ChatMessageRoleBot,
		Content:       botText,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, botMessage); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	// Bump updated_at so the session list orders by latest activity.
	sess.UpdatedAt = time.Now()
	if err := uow.ChatSessionRepository().Update(ctx, sess); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	return &dto.SendTurnResponse{
		SessionId: sess.Id,
		Title:     sess.Title,
		Response:  botText,
	}, nil
}

// DeleteSession removes the session and all its messages outright. It is
// idempotent: deleting a session that is already gone succeeds, but a
// session owned by someone else stays untouched.
func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if sess == nil {
		return nil // already gone
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionUnscoped(ctx, sessionId); err != nil {
		return serverutils.NewInternal(err)
	}
	if err := uow.ChatSessionRepository().DeleteUnscoped(ctx, sessionId); err != nil {
		return serverutils.NewInternal(err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.NewInternal(err)
	}
	return nil
}

// resolveSession loads the addressed session (owner-checked) or creates a
// fresh one titled from the first message.
func (cs *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, request *dto.SendTurnRequest) (*entity.ChatSession, error) {
	if request.SessionId != nil {
		sess, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *request.SessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, serverutils.NewInternal(err)
		}
		if sess == nil {
			return nil, serverutils.NewNotFound("session not found")
		}
		return sess, nil
	}

	now := time.Now()
	sess := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     sessionTitle(request.Message),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.ChatSessionRepository().Create(ctx, sess); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	return sess, nil
}

// acquireTurnLock serializes turns per session: one immediate retry, then
// the caller gets a transient conflict to retry itself.
func (cs *chatService) acquireTurnLock(sessionId uuid.UUID) error {
	if cs.turnLocks.TryAcquire(sessionId) {
		return nil
	}
	time.Sleep(50 * time.Millisecond)
	if cs.turnLocks.TryAcquire(sessionId) {
		return nil
	}
	return serverutils.NewConflictRetry("another message is being processed for this conversation")
}

// generateReply calls the completion gateway and degrades to the fixed
// fallback text on any upstream failure. The gateway context is detached
// from the request: a client disconnect mid-turn must not cancel the
// in-flight completion, the turn still finishes and is loadable later.
func (cs *chatService) generateReply(ctx context.Context, history []*entity.ChatMessage, userText string, sessionId uuid.UUID) string {
	llmHistory := make([]llm.Message, 0, len(history)+1)
	llmHistory = append(llmHistory, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: constant.LegalAssistantSystemPrompt,
	})
	for _, m := range history {
		llmHistory = append(llmHistory, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := cs.gateway.Complete(context.WithoutCancel(ctx), llmHistory, userText)
	if err != nil {
		cs.logger.Warn("ChatService", "Completion gateway failed, storing fallback reply", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return constant.ChatFallbackReply
	}
	return reply
}

func sessionTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= constant.SessionTitlePrefixLen {
		return firstMessage
	}
	return string(runes[:constant.SessionTitlePrefixLen]) + constant.SessionTitleEllipsis
}
