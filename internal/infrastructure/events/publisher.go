package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/queueline/realtime/internal/infrastructure/contracts"
	"github.com/queueline/realtime/internal/infrastructure/messaging"
)

// Publisher mirrors hub facts onto the message broker for downstream
// services. Publishing is best-effort: the hub never blocks or fails
// an event on a broker error.
type Publisher interface {
	PresenceChanged(ctx context.Context, userID, status string) error
	TokenCompleted(ctx context.Context, institutionID, tokenID string) error
	NotificationCreated(ctx context.Context, notificationID, receiverID string) error
}

type PresenceEventData struct {
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type TokenEventData struct {
	InstitutionID string    `json:"institutionId"`
	TokenID       string    `json:"tokenId"`
	Timestamp     time.Time `json:"timestamp"`
}

type NotificationEventData struct {
	NotificationID string    `json:"notificationId"`
	ReceiverID     string    `json:"receiverId"`
	Timestamp      time.Time `json:"timestamp"`
}

type RealtimePublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRealtimePublisher(rabbitmq *messaging.RabbitMQ) *RealtimePublisher {
	return &RealtimePublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RealtimePublisher) PresenceChanged(ctx context.Context, userID, status string) error {
	payload := PresenceEventData{
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventPresenceChanged, contracts.AmqpMessage{
		UserID: userID,
		Data:   eventJSON,
	})
}

func (p *RealtimePublisher) TokenCompleted(ctx context.Context, institutionID, tokenID string) error {
	payload := TokenEventData{
		InstitutionID: institutionID,
		TokenID:       tokenID,
		Timestamp:     time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventTokenCompleted, contracts.AmqpMessage{
		UserID: institutionID,
		Data:   eventJSON,
	})
}

func (p *RealtimePublisher) NotificationCreated(ctx context.Context, notificationID, receiverID string) error {
	payload := NotificationEventData{
		NotificationID: notificationID,
		ReceiverID:     receiverID,
		Timestamp:      time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventNotificationCreated, contracts.AmqpMessage{
		UserID: receiverID,
		Data:   eventJSON,
	})
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PresenceChanged(context.Context, string, string) error { return nil }

func (NopPublisher) TokenCompleted(context.Context, string, string) error { return nil }

func (NopPublisher) NotificationCreated(context.Context, string, string) error { return nil }
