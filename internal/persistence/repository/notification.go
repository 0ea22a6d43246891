package repository

import (
	"context"

	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/persistence/db"
	"go.mongodb.org/mongo-driver/mongo"
)

type notificationRepository struct {
	db *mongo.Database
}

func NewNotificationRepository(db *mongo.Database) domain.NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	collection := r.db.Collection(db.NotificationsCollection)

	_, err := collection.InsertOne(ctx, notification)
	return err
}
