package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"legal-assistant-be/pkg/events"

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

func newTestClient(h *Hub, userID uuid.UUID) *Client {
	return &Client{Hub: h, UserID: userID, Send: make(chan []byte, 8)}
}

func registerAndWait(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	h.register <- c
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, existing := range h.clients[c.UserID] {
			if existing == c {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestSendReachesOnlyTargetIdentity(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	alice, bob := uuid.New(), uuid.New()
	aliceClient := newTestClient(h, alice)
	bobClient := newTestClient(h, bob)
	registerAndWait(t, h, aliceClient)
	registerAndWait(t, h, bobClient)

	roomId := uuid.New()
	h.Send(alice, events.NewRoomChangedEvent(roomId, []uuid.UUID{alice, bob}))

	select {
	case raw := <-aliceClient.Send:
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, events.TypeRoomChanged, env.Type)
		assert.Equal(t, roomId.String(), env.Data["room_id"])
	case <-time.After(time.Second):
		t.Fatal("alice never received the event")
	}

	select {
	case <-bobClient.Send:
		t.Fatal("bob must not receive alice's scoped event")
	default:
	}
}

func TestSendFansOutToAllConnectionsOfOneUser(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	user := uuid.New()
	tab1 := newTestClient(h, user)
	tab2 := newTestClient(h, user)
	registerAndWait(t, h, tab1)
	registerAndWait(t, h, tab2)

	h.Send(user, events.NewRoomChangedEvent(uuid.New(), []uuid.UUID{user}))

	for _, c := range []*Client{tab1, tab2} {
		select {
		case <-c.Send:
		case <-time.After(time.Second):
			t.Fatal("every open connection of the user must get the event")
		}
	}
}

func TestSendToOfflineUserIsSilent(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	// No connections registered at all: must not panic or block.
	h.Send(uuid.New(), events.NewRoomChangedEvent(uuid.New(), nil))
}

func TestUnregisterRemovesConnection(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	user := uuid.New()
	client := newTestClient(h, user)
	registerAndWait(t, h, client)

	h.unregister <- client
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.clients[user]
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Channel is closed exactly once on unregister.
	_, open := <-client.Send
	assert.False(t, open)
}
