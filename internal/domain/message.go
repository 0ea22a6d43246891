package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             string     `bson:"_id" json:"id"`
	ConversationID string     `bson:"conversation_id" json:"conversationId"`
	SenderID       string     `bson:"sender_id" json:"senderId"`
	SenderType     Role       `bson:"sender_type" json:"senderType"`
	ReceiverID     string     `bson:"receiver_id" json:"receiverId"`
	Content        string     `bson:"content" json:"content"`
	Timestamp      time.Time  `bson:"timestamp" json:"timestamp"`
	ExpiresAt      *time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
}

func NewMessage(conversationID, senderID string, senderType Role, receiverID, content string, timestamp time.Time, expiresAt *time.Time) *Message {
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		ReceiverID:     receiverID,
		Content:        content,
		Timestamp:      timestamp,
		ExpiresAt:      expiresAt,
	}
}

type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
}
