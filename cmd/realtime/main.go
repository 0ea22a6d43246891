package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/queueline/realtime/internal/infrastructure/configs"
	"github.com/queueline/realtime/internal/infrastructure/contracts"
	"github.com/queueline/realtime/internal/infrastructure/events"
	"github.com/queueline/realtime/internal/infrastructure/logging"
	"github.com/queueline/realtime/internal/infrastructure/messaging"
	"github.com/queueline/realtime/internal/infrastructure/metrics"
	"github.com/queueline/realtime/internal/infrastructure/ratelimiter"
	"github.com/queueline/realtime/internal/infrastructure/tracing"
	"github.com/queueline/realtime/internal/infrastructure/ws"
	"github.com/queueline/realtime/internal/persistence/db"
	"github.com/queueline/realtime/internal/persistence/repository"
	"github.com/queueline/realtime/internal/presentation/api"
	"github.com/queueline/realtime/internal/presentation/handler/health"
	"github.com/queueline/realtime/internal/presentation/handler/socket"
)

func main() {
	logger := logging.NewLogger(logging.NewDefaultConfig())

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	shutdownTracer, err := tracing.InitTracer(tracing.NewDefaultConfig("queueline-realtime"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error(logging.Internal, logging.Shutdown, "tracer shutdown failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}()

	mongoCfg := db.NewMongoDefaultConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := db.NewMongoClient(ctx, mongoCfg)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.DisconnectMongo(ctx, mongoClient); err != nil {
			logger.Error(logging.Mongo, logging.Shutdown, "mongo disconnect failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}()

	database := db.GetDatabase(mongoClient, mongoCfg)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = repository.EnsureIndexes(ctx, database)
	cancel()
	if err != nil {
		log.Fatal(err)
	}

	repos := ws.Repositories{
		Tokens:        repository.NewTokenRepository(database),
		Users:         repository.NewUserRepository(database),
		Conversations: repository.NewConversationRepository(database),
		Messages:      repository.NewMessageRepository(database),
		Notifications: repository.NewNotificationRepository(database),
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		routingKeys := []string{
			contracts.EventPresenceChanged,
			contracts.EventTokenCompleted,
			contracts.EventNotificationCreated,
		}
		if err := rabbitmq.DeclareAndBindQueue("realtime.events", routingKeys, messaging.RealtimeExchange); err != nil {
			log.Fatal(err)
		}

		publisher = events.NewRealtimePublisher(rabbitmq)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	core := ws.NewCore(
		ws.NewRegistry(),
		ws.NewRoomManager(),
		repos,
		publisher,
		logger,
		m,
		ws.CoreConfig{
			CompletedHistory: cfg.Socket.CompletedHistory,
			MaxMessageBytes:  cfg.Socket.MaxMessageBytes,
		},
	)

	socketHandler := socket.NewHandler(core, cfg.Socket, logger)
	healthHandler := health.NewHandler()

	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(*cfg, socketHandler, healthHandler, logger, rateLimiter)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	log.Fatal(app.Run(mux))
}
