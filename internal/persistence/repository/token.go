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

type tokenRepository struct {
	db *mongo.Database
}

func NewTokenRepository(db *mongo.Database) domain.TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) FindActive(ctx context.Context, institutionID string) (*domain.Token, error) {
	collection := r.db.Collection(db.TokensCollection)

	filter := bson.M{
		"institution_id": institutionID,
		"completed":      false,
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var token domain.Token
	err := collection.FindOne(ctx, filter, opts).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// An empty queue is a normal state, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *tokenRepository) ListCompleted(ctx context.Context, institutionID string, limit int) ([]domain.Token, error) {
	filter := bson.M{
		"institution_id": institutionID,
		"completed":      true,
	}

	return r.listEnriched(ctx, filter, bson.D{{Key: "created_at", Value: -1}}, int64(limit))
}

func (r *tokenRepository) ListProcessing(ctx context.Context, institutionID string) ([]domain.Token, error) {
	filter := bson.M{
		"institution_id": institutionID,
		"processing":     true,
		"completed":      false,
	}

	return r.listEnriched(ctx, filter, bson.D{{Key: "created_at", Value: 1}}, 0)
}

func (r *tokenRepository) Update(ctx context.Context, tokenID string, patch domain.TokenPatch) (*domain.Token, error) {
	collection := r.db.Collection(db.TokensCollection)

	set := bson.M{}
	if patch.Processing != nil {
		set["processing"] = *patch.Processing
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var token domain.Token
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": tokenID}, bson.M{"$set": set}, opts).Decode(&token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// listEnriched runs the shared aggregation that joins each token with
// its submitter's username and mobile number. Tokens without an owning
// user keep nil identity fields.
func (r *tokenRepository) listEnriched(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]domain.Token, error) {
	collection := r.db.Collection(db.TokensCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sort}},
	}

	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         db.UsersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "submitter",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$submitter",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"username":      "$submitter.username",
			"mobile_number": "$submitter.mobile_number",
		}}},
		bson.D{{Key: "$project", Value: bson.M{"submitter": 0}}},
	)

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tokens []domain.Token
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}
