package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversationRepository struct {
	db *mongo.Database
}

func NewConversationRepository(db *mongo.Database) domain.ConversationRepository {
	return &conversationRepository{
		db: db,
	}
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, partyA, partyB string, accepted bool) (string, error) {
	collection := r.db.Collection(db.ConversationsCollection)

	// The pair is unordered: a conversation created for (A,B) must be
	// found again for (B,A).
	filter := bson.M{
		"$or": bson.A{
			bson.M{"user1_id": partyA, "user2_id": partyB},
			bson.M{"user1_id": partyB, "user2_id": partyA},
		},
	}

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	var existing struct {
		ID string `bson:"_id"`
	}

	err := collection.FindOne(ctx, filter, opts).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	conversation := domain.Conversation{
		ID:       uuid.NewString(),
		User1ID:  partyA,
		User2ID:  partyB,
		Accepted: accepted,
	}

	if _, err := collection.InsertOne(ctx, conversation); err != nil {
		return "", err
	}

	return conversation.ID, nil
}

func (r *conversationRepository) UpdateSummary(ctx context.Context, conversationID string, summary domain.ConversationSummary) error {
	collection := r.db.Collection(db.ConversationsCollection)

	update := bson.M{
		"$set": bson.M{
			"last_message_id":        summary.LastMessageID,
			"last_message_content":   summary.LastMessageContent,
			"last_message_sender_id": summary.LastMessageSenderID,
			"last_message_timestamp": summary.LastMessageTimestamp,
		},
	}

	_, err := collection.UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	return err
}
