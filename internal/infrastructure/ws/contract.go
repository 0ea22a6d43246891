package ws

import (
	"encoding/json"
	"time"

	"github.com/queueline/realtime/internal/domain"
)

// Envelope is the inbound frame: an event name, an optional ack id the
// client wants echoed on the reply, and an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	AckID string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is the outbound frame.
type ServerEvent struct {
	Event string `json:"event"`
	AckID string `json:"ackId,omitempty"`
	Data  any    `json:"data"`
}

// Inbound payload structs
type JoinPayload struct {
	UserID string `json:"userId"`
}

type InstitutionPayload struct {
	InstitutionID string `json:"institutionId"`
}

type NewTokenPayload struct {
	InstitutionID string       `json:"institutionId"`
	Token         domain.Token `json:"token"`
}

type TokenActionPayload struct {
	InstitutionID string `json:"institutionId"`
	TokenID       string `json:"tokenId"`
}

type SendMessagePayload struct {
	SenderID       string    `json:"senderId"`
	SenderType     string    `json:"senderType"`
	ReceiverID     string    `json:"receiverId"`
	ConversationID string    `json:"conversationId,omitempty"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp,omitzero"`
	Accepted       bool      `json:"accepted,omitempty"`
}

type SendNotificationPayload struct {
	ToUserID   string `json:"toUserId"`
	FromUserID string `json:"fromUserId"`
	Message    string `json:"message"`
	Status     string `json:"status,omitempty"`
}

// Outbound payload structs
type PresencePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type MessagePayload struct {
	SenderID       string     `json:"senderId"`
	SenderType     string     `json:"senderType"`
	ReceiverID     string     `json:"receiverId"`
	ConversationID string     `json:"conversationId"`
	Content        string     `json:"content"`
	Timestamp      time.Time  `json:"timestamp"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

type NotificationPayload struct {
	Message    string `json:"message"`
	FromUserID string `json:"fromUserId"`
	Status     string `json:"status,omitempty"`
}

func NewPresenceUpdate(userID string, status PresenceStatus) *ServerEvent {
	return &ServerEvent{
		Event: EventPresenceUpdate,
		Data: PresencePayload{
			UserID: userID,
			Status: string(status),
		},
	}
}

// NewTokenUpdated carries the latest token state; a nil token means
// the institution's queue is empty.
func NewTokenUpdated(token *domain.Token) *ServerEvent {
	return &ServerEvent{
		Event: EventTokenUpdated,
		Data:  token,
	}
}

func NewProcessingTokenUpdated(token *domain.Token) *ServerEvent {
	return &ServerEvent{
		Event: EventProcessingTokenUpdated,
		Data:  token,
	}
}

func NewCompletedTokensUpdated(tokens []domain.Token) *ServerEvent {
	return &ServerEvent{
		Event: EventCompletedTokensUpdated,
		Data:  tokens,
	}
}

func NewProcessingTokensAck(ackID string, tokens []domain.Token) *ServerEvent {
	return &ServerEvent{
		Event: EventCurrentProcessingTokens,
		AckID: ackID,
		Data:  tokens,
	}
}

func NewReceiveMessage(message *domain.Message) *ServerEvent {
	return &ServerEvent{
		Event: EventReceiveMessage,
		Data: MessagePayload{
			SenderID:       message.SenderID,
			SenderType:     string(message.SenderType),
			ReceiverID:     message.ReceiverID,
			ConversationID: message.ConversationID,
			Content:        message.Content,
			Timestamp:      message.Timestamp,
			ExpiresAt:      message.ExpiresAt,
		},
	}
}

func NewReceiveNotification(message, fromUserID, status string) *ServerEvent {
	return &ServerEvent{
		Event: EventReceiveNotification,
		Data: NotificationPayload{
			Message:    message,
			FromUserID: fromUserID,
			Status:     status,
		},
	}
}
