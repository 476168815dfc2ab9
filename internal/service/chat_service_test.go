package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/pkg/completion"
	"legal-assistant-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// stubProvider answers every chat with a canned reply, or an error.
type stubProvider struct {
	reply string
	err   error
	block bool // wait for ctx cancellation instead of answering
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if p.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func newChatFixture(provider llm.LLMProvider, timeout time.Duration) (IChatService, *fakeStore) {
	factory, store := newFakeFactory()
	gateway := completion.NewGateway(provider, timeout)
	return NewChatService(factory, gateway, memory.NewTurnLockRegistry(), nopLogger{}), store
}

func TestSendTurnCreatesSessionAndAppendsPair(t *testing.T) {
	svc, store := newChatFixture(&stubProvider{reply: "You may be entitled to a refund."}, time.Second)
	userId := uuid.New()

	res, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{
		Message: "My landlord kept my deposit without any explanation at all",
	})
	require.NoError(t, err)
	assert.Equal(t, "You may be entitled to a refund.", res.Response)
	assert.Equal(t, "My landlord kept my deposit wi...", res.Title)

	detail, err := svc.GetSession(context.Background(), userId, res.SessionId)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, detail.Messages[0].Role)
	assert.Equal(t, constant.ChatMessageRoleBot, detail.Messages[1].Role)
	assert.False(t, detail.Messages[1].CreatedAt.Before(detail.Messages[0].CreatedAt))

	store.mu.Lock()
	assert.Len(t, store.sessions, 1)
	store.mu.Unlock()
}

func TestSendTurnShortFirstMessageKeepsFullTitle(t *testing.T) {
	svc, _ := newChatFixture(&stubProvider{reply: "ok"}, time.Second)

	res, err := svc.SendTurn(context.Background(), uuid.New(), &dto.SendTurnRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Title)
}

func TestSendTurnFallbackOnUpstreamFailure(t *testing.T) {
	svc, _ := newChatFixture(&stubProvider{err: errors.New("upstream exploded")}, time.Second)
	userId := uuid.New()

	res, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "Is a verbal contract binding?"})
	require.NoError(t, err)
	assert.Equal(t, constant.ChatFallbackReply, res.Response)

	// The turn is still complete: both sides persisted.
	detail, err := svc.GetSession(context.Background(), userId, res.SessionId)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "Is a verbal contract binding?", detail.Messages[0].Content)
	assert.Equal(t, constant.ChatFallbackReply, detail.Messages[1].Content)
}

func TestSendTurnFallbackOnTimeout(t *testing.T) {
	svc, _ := newChatFixture(&stubProvider{block: true}, 20*time.Millisecond)

	res, err := svc.SendTurn(context.Background(), uuid.New(), &dto.SendTurnRequest{Message: "Can I appeal twice?"})
	require.NoError(t, err)
	assert.Equal(t, constant.ChatFallbackReply, res.Response)
}

func TestSendTurnRejectsForeignSession(t *testing.T) {
	svc, _ := newChatFixture(&stubProvider{reply: "ok"}, time.Second)
	owner := uuid.New()

	res, err := svc.SendTurn(context.Background(), owner, &dto.SendTurnRequest{Message: "first"})
	require.NoError(t, err)

	_, err = svc.SendTurn(context.Background(), uuid.New(), &dto.SendTurnRequest{
		SessionId: &res.SessionId,
		Message:   "hijack attempt",
	})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)
}

func TestSendTurnConflictWhileTurnInFlight(t *testing.T) {
	factory, _ := newFakeFactory()
	locks := memory.NewTurnLockRegistry()
	gateway := completion.NewGateway(&stubProvider{reply: "ok"}, time.Second)
	svc := NewChatService(factory, gateway, locks, nopLogger{})
	userId := uuid.New()

	res, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "first"})
	require.NoError(t, err)

	// Hold the session's lock as if another turn were mid-flight.
	require.True(t, locks.TryAcquire(res.SessionId))
	defer locks.Release(res.SessionId)

	_, err = svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{
		SessionId: &res.SessionId,
		Message:   "second",
	})
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeConflictRetry, appErr.Code)
}

func TestConcurrentTurnsNeverInterleave(t *testing.T) {
	svc, store := newChatFixture(&stubProvider{reply: "ok"}, time.Second)
	userId := uuid.New()

	res, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "opening"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{
				SessionId: &res.SessionId,
				Message:   "concurrent",
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			var appErr *serverutils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, serverutils.CodeConflictRetry, appErr.Code)
		}
	}

	// Whatever the mix of successes and conflicts, the transcript holds
	// complete user/bot pairs in strict alternation with gapless positions.
	store.mu.Lock()
	transcript := make([]*entity.ChatMessage, len(store.messages))
	copy(transcript, store.messages)
	store.mu.Unlock()

	sort.Slice(transcript, func(i, j int) bool { return transcript[i].Seq < transcript[j].Seq })
	assert.Zero(t, len(transcript)%2, "message count must stay even, got %d", len(transcript))
	for i, m := range transcript {
		assert.Equal(t, i+1, m.Seq)
		if i%2 == 0 {
			assert.Equal(t, constant.ChatMessageRoleUser, m.Role, "position %d", i)
		} else {
			assert.Equal(t, constant.ChatMessageRoleBot, m.Role, "position %d", i)
		}
	}
}

func TestBackToBackFastTurnsKeepPairOrder(t *testing.T) {
	// An instantly-failing gateway finishes each turn in well under a
	// millisecond; positions must still read back as complete pairs.
	svc, _ := newChatFixture(&stubProvider{err: errors.New("provider down")}, time.Second)
	userId := uuid.New()

	res, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "first question"})
	require.NoError(t, err)
	_, err = svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{
		SessionId: &res.SessionId,
		Message:   "second question",
	})
	require.NoError(t, err)

	detail, err := svc.GetSession(context.Background(), userId, res.SessionId)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 4)

	roles := make([]string, 0, 4)
	for _, m := range detail.Messages {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{
		constant.ChatMessageRoleUser, constant.ChatMessageRoleBot,
		constant.ChatMessageRoleUser, constant.ChatMessageRoleBot,
	}, roles)
	assert.Equal(t, "first question", detail.Messages[0].Content)
	assert.Equal(t, "second question", detail.Messages[2].Content)
}

func TestGetAllSessionsOrdersByRecency(t *testing.T) {
	svc, store := newChatFixture(&stubProvider{reply: "ok"}, time.Second)
	userId := uuid.New()

	first, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "older"})
	require.NoError(t, err)
	second, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "newer"})
	require.NoError(t, err)

	// Force distinct recency regardless of clock resolution.
	store.mu.Lock()
	store.sessions[first.SessionId].UpdatedAt = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	sessions, err := svc.GetAllSessions(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.SessionId, sessions[0].Id)
	assert.Equal(t, first.SessionId, sessions[1].Id)
}

func TestDeleteSessionIsIdempotentAndComplete(t *testing.T) {
	svc, store := newChatFixture(&stubProvider{reply: "ok"}, time.Second)
	userId := uuid.New()

	res, err := svc.SendTurn(context.Background(), userId, &dto.SendTurnRequest{Message: "to be erased"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(context.Background(), userId, res.SessionId))

	_, err = svc.GetSession(context.Background(), userId, res.SessionId)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.CodeNotFound, appErr.Code)

	store.mu.Lock()
	assert.Empty(t, store.messages)
	store.mu.Unlock()

	// Second delete of the same id is a success, not an error.
	assert.NoError(t, svc.DeleteSession(context.Background(), userId, res.SessionId))
}

func TestDeleteSessionIgnoresForeignOwner(t *testing.T) {
	svc, store := newChatFixture(&stubProvider{reply: "ok"}, time.Second)
	owner := uuid.New()

	res, err := svc.SendTurn(context.Background(), owner, &dto.SendTurnRequest{Message: "keep me"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(context.Background(), uuid.New(), res.SessionId))

	store.mu.Lock()
	_, stillThere := store.sessions[res.SessionId]
	store.mu.Unlock()
	assert.True(t, stillThere)
}

func TestSessionTitleTruncation(t *testing.T) {
	long := strings.Repeat("a", 100)
	assert.Equal(t, strings.Repeat("a", 30)+"...", sessionTitle(long))
	assert.Equal(t, "short", sessionTitle("short"))
	assert.Len(t, []rune(sessionTitle(strings.Repeat("ä", 100))), 33)
}
