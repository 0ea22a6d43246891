package domain

import (
	"context"
	"time"
)

// Conversation is the pairing of two chat parties plus the
// denormalized fields describing its most recent message.
type Conversation struct {
	ID       string `bson:"_id" json:"id"`
	User1ID  string `bson:"user1_id" json:"user1Id"`
	User2ID  string `bson:"user2_id" json:"user2Id"`
	Accepted bool   `bson:"accepted" json:"accepted"`

	LastMessageID        string    `bson:"last_message_id,omitempty" json:"lastMessageId,omitempty"`
	LastMessageContent   string    `bson:"last_message_content,omitempty" json:"lastMessageContent,omitempty"`
	LastMessageSenderID  string    `bson:"last_message_sender_id,omitempty" json:"lastMessageSenderId,omitempty"`
	LastMessageTimestamp time.Time `bson:"last_message_timestamp,omitempty" json:"lastMessageTimestamp,omitempty"`
}

// ConversationSummary is the denormalized last-message patch applied
// after every new message.
type ConversationSummary struct {
	LastMessageID        string
	LastMessageContent   string
	LastMessageSenderID  string
	LastMessageTimestamp time.Time
}

type ConversationRepository interface {
	// FindOrCreate resolves the conversation between the unordered pair
	// {partyA, partyB}, creating it with the given accepted flag when
	// none exists, and returns its id.
	FindOrCreate(ctx context.Context, partyA, partyB string, accepted bool) (string, error)

	UpdateSummary(ctx context.Context, conversationID string, summary ConversationSummary) error
}
