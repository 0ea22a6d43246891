package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultNotificationType is used when the sender supplies no type tag.
const DefaultNotificationType = "message"

type Notification struct {
	ID         string    `bson:"_id" json:"id"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	ReceiverID string    `bson:"receiver_id" json:"receiverId"`
	Message    string    `bson:"message" json:"message"`
	Type       string    `bson:"type" json:"type"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

func NewNotification(senderID, receiverID, message, notifType string) *Notification {
	if notifType == "" {
		notifType = DefaultNotificationType
	}
	return &Notification{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Type:       notifType,
		CreatedAt:  time.Now(),
	}
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
}
