package service

import (
	"context"
	"encoding/json"
	"log"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/events"
	pktNats "legal-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process touch topic: each touch becomes a
// last-activity bump on the room plus a ROOM_CHANGED event on the bus.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RoomTouchedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal touch message: %v", err)
		msg.Ack() // malformed, retrying won't help
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Last-write-wins on purpose: overlapping touches for the same room
	// may land out of order, and the newest timestamp is all that matters.
	if err := uow.RoomRepository().UpdateLastActivity(ctx, payload.RoomId, payload.OccurredAt); err != nil {
		log.Printf("[ERROR] Failed to update activity for room %s: %v", payload.RoomId, err)
		msg.Nack()
		return
	}

	// The publisher is nil when the bus was unreachable at boot. The DB
	// bump stuck; the hint is best-effort. Ack either way so a bus hiccup
	// cannot wedge the topic.
	if cs.eventPublisher != nil {
		evt := events.NewRoomChangedEvent(payload.RoomId, payload.ParticipantIds)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish ROOM_CHANGED for room %s: %v", payload.RoomId, err)
		}
	}

	msg.Ack()
}
