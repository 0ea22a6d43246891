package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/queueline/realtime/internal/infrastructure/env"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	TokensCollection        = "tokens"
	UsersCollection         = "users"
	ConversationsCollection = "conversations"
	MessagesCollection      = "messages"
	NotificationsCollection = "notifications"

	DefaultDatabase       = "queueline"
	DefaultConnectTimeout = 20 * time.Second
	DefaultMaxPoolSize    = 50
)

type MongoConfig struct {
	URI               string
	Database          string
	ConnectionTimeout time.Duration
	MaxPoolSize       uint64
}

func NewMongoDefaultConfig() *MongoConfig {
	return &MongoConfig{
		URI:               env.GetString("MONGODB_URI", "mongodb://localhost:27017"),
		Database:          env.GetString("MONGODB_DATABASE", DefaultDatabase),
		ConnectionTimeout: DefaultConnectTimeout,
		MaxPoolSize:       uint64(env.GetInt("MONGODB_MAX_POOL_SIZE", DefaultMaxPoolSize)),
	}
}

func (cfg *MongoConfig) validate() error {
	if cfg == nil {
		return errors.New("mongodb config is required")
	}
	if cfg.URI == "" {
		return errors.New("mongodb URI is required")
	}
	if cfg.Database == "" {
		return errors.New("mongodb database is required")
	}
	return nil
}

// NewMongoClient connects and verifies the primary is reachable before
// handing the client out.
func NewMongoClient(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetServerSelectionTimeout(cfg.ConnectionTimeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	log.Printf("connected to mongodb database %q", cfg.Database)
	return client, nil
}

func GetDatabase(client *mongo.Client, cfg *MongoConfig) *mongo.Database {
	if client == nil || cfg == nil {
		return nil
	}
	return client.Database(cfg.Database)
}

func DisconnectMongo(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb disconnect: %w", err)
	}

	log.Println("disconnected from mongodb")
	return nil
}
