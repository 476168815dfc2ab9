package service

import (
	"context"
	"strings"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/events"
	pktNats "legal-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time hints.
// Implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, event events.Event)
}

// NotificationService bridges the event bus to connected clients. It only
// forwards hints: the payload names the room, and receivers re-fetch the
// contact list instead of patching local state.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer. With no
// subscriber (bus unreachable at boot) it degrades to no live hints;
// clients still reconcile on reconnect.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "Event bus unavailable, real-time hints disabled", nil)
		return
	}
	err := s.subscriber.Subscribe("events."+events.TypeRoomChanged, "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening for room changes", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	roomId, _ := payload["room_id"].(string)
	rawIds, _ := payload["participant_ids"].([]interface{})

	if roomId == "" || len(rawIds) == 0 {
		s.logger.Warn("NotificationService", "Dropping malformed room change event", map[string]interface{}{"payload": payload})
		return nil
	}

	// The NATS subject carries the stream prefix; strip it so clients see
	// the bare event type.
	hint := events.BaseEvent{
		Type:       strings.TrimPrefix(event.EventType(), "events."),
		Data:       map[string]interface{}{"room_id": roomId},
		OccurredAt: event.Timestamp(),
	}

	for _, raw := range rawIds {
		idStr, ok := raw.(string)
		if !ok {
			continue
		}
		userId, err := uuid.Parse(idStr)
		if err != nil {
			s.logger.Warn("NotificationService", "Skipping unparsable participant id", map[string]interface{}{"id": idStr})
			continue
		}
		s.delivery.Send(userId, hint)
	}
	return nil
}
