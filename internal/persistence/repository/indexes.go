package repository

import (
	"context"

	"github.com/queueline/realtime/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the realtime queries depend on.
// Safe to run on every startup.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	tokenIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "institution_id", Value: 1},
				{Key: "completed", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "institution_id", Value: 1},
				{Key: "processing", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}

	if _, err := database.Collection(db.TokensCollection).Indexes().CreateMany(ctx, tokenIndexes); err != nil {
		return err
	}

	conversationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user1_id", Value: 1},
				{Key: "user2_id", Value: 1},
			},
		},
	}

	if _, err := database.Collection(db.ConversationsCollection).Indexes().CreateMany(ctx, conversationIndexes); err != nil {
		return err
	}

	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "conversation_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			// TTL reaper for messages with a 48h expiry policy.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetSparse(true),
		},
	}

	if _, err := database.Collection(db.MessagesCollection).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return err
	}

	return nil
}
