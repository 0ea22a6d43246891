package repository

import (
	"context"

	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/persistence/db"
	"go.mongodb.org/mongo-driver/mongo"
)

type messageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(db *mongo.Database) domain.MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	collection := r.db.Collection(db.MessagesCollection)

	_, err := collection.InsertOne(ctx, message)
	return err
}
