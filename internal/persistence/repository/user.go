package repository

import (
	"context"
	"errors"

	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) domain.UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) FindIdentity(ctx context.Context, userID string) (*domain.UserIdentity, error) {
	collection := r.db.Collection(db.UsersCollection)

	opts := options.FindOne().SetProjection(bson.M{
		"username":      1,
		"mobile_number": 1,
	})

	var identity domain.UserIdentity
	err := collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&identity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *userRepository) FindRole(ctx context.Context, userID string) (domain.Role, error) {
	collection := r.db.Collection(db.UsersCollection)

	opts := options.FindOne().SetProjection(bson.M{"role": 1})

	var result struct {
		Role domain.Role `bson:"role"`
	}

	err := collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	return result.Role, nil
}

func (r *userRepository) FindSubscriptionPlan(ctx context.Context, institutionID string) (string, error) {
	collection := r.db.Collection(db.UsersCollection)

	opts := options.FindOne().SetProjection(bson.M{"subscription_plan": 1})

	var result struct {
		SubscriptionPlan *struct {
			Name string `bson:"name"`
		} `bson:"subscription_plan"`
	}

	err := collection.FindOne(ctx, bson.M{"_id": institutionID}, opts).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	if result.SubscriptionPlan == nil {
		return "", nil
	}

	return result.SubscriptionPlan.Name, nil
}
