package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTouchMessage(t *testing.T, payload dto.RoomTouchedMessage) *message.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), raw)
}

func TestProcessTouchWithoutBusStillBumpsActivity(t *testing.T) {
	factory, store := newFakeFactory()
	alice := seedUser(store, "Alice")
	bob := seedUser(store, "Bob")

	room := &entity.Room{
		Id:             uuid.New(),
		PairKey:        entity.PairKeyFor([]uuid.UUID{alice, bob}),
		ParticipantIds: []uuid.UUID{alice, bob},
	}
	store.mu.Lock()
	store.rooms[room.Id] = room
	store.mu.Unlock()

	// The bus was unreachable at boot, so the publisher is nil. A touch
	// must still bump the room and ack, not crash the drain goroutine.
	cs := NewConsumerService(nil, "room.touched", factory, nil).(*consumerService)

	touchedAt := time.Now().Add(5 * time.Second)
	msg := newTouchMessage(t, dto.RoomTouchedMessage{
		RoomId:         room.Id,
		ParticipantIds: room.ParticipantIds,
		OccurredAt:     touchedAt,
	})
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("touch message was not acked")
	}

	store.mu.Lock()
	got := store.rooms[room.Id].LastActivityAt
	store.mu.Unlock()
	assert.True(t, got.Equal(touchedAt))
}

func TestProcessMalformedTouchIsAcked(t *testing.T) {
	factory, _ := newFakeFactory()
	cs := NewConsumerService(nil, "room.touched", factory, nil).(*consumerService)

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("malformed message must be acked, retrying cannot help")
	}
}
