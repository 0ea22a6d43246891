package ws

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/infrastructure/events"
	"github.com/queueline/realtime/internal/infrastructure/logging"
	"github.com/queueline/realtime/internal/infrastructure/metrics"
)

const defaultCompletedHistory = 10

// Repositories is the persistence collaborator surface the hub
// consumes. The hub holds no authoritative copy of any of it.
type Repositories struct {
	Tokens        domain.TokenRepository
	Users         domain.UserRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository
	Notifications domain.NotificationRepository
}

// Core routes inbound events to handlers. Handlers read or mutate the
// registry, call the repositories, and emit to one connection, a
// user's connections, or an institution room. A failing handler never
// takes down the connection's event stream.
type Core struct {
	registry *Registry
	rooms    *RoomManager
	repos    Repositories

	publisher events.Publisher
	logger    logging.Logger
	metrics   *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*Client // every live connection, bound or not

	completedHistory int
	maxMessageBytes  int
	now              func() time.Time
}

type CoreConfig struct {
	CompletedHistory int
	MaxMessageBytes  int
}

func NewCore(
	registry *Registry,
	rooms *RoomManager,
	repos Repositories,
	publisher events.Publisher,
	logger logging.Logger,
	m *metrics.Metrics,
	cfg CoreConfig,
) *Core {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	if cfg.CompletedHistory <= 0 {
		cfg.CompletedHistory = defaultCompletedHistory
	}

	return &Core{
		registry:         registry,
		rooms:            rooms,
		repos:            repos,
		publisher:        publisher,
		logger:           logger,
		metrics:          m,
		clients:          make(map[string]*Client),
		completedHistory: cfg.CompletedHistory,
		maxMessageBytes:  cfg.MaxMessageBytes,
		now:              time.Now,
	}
}

func (c *Core) Registry() *Registry {
	return c.registry
}

// Dispatch routes one inbound envelope. Panics are contained so a bad
// handler cannot crash the read pump.
func (c *Core) Dispatch(ctx context.Context, cl *Client, envelope *Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error(logging.Socket, logging.Dispatch, "handler panicked", map[logging.ExtraKey]any{
				logging.EventName:    envelope.Event,
				logging.ConnectionID: cl.ID,
				logging.ErrorMessage: rec,
			})
		}
	}()

	c.metrics.EventsTotal.WithLabelValues(envelope.Event).Inc()

	switch envelope.Event {
	case EventJoin:
		c.handleJoin(ctx, cl, envelope)
	case EventRegister:
		c.handleRegister(ctx, cl, envelope)
	case EventJoinInstitutionRoom:
		c.handleJoinInstitutionRoom(ctx, cl, envelope)
	case EventNewToken:
		c.handleNewToken(ctx, cl, envelope)
	case EventStartProcessing:
		c.handleStartProcessing(ctx, cl, envelope)
	case EventCompleteToken:
		c.handleCompleteToken(ctx, cl, envelope)
	case EventGetProcessingTokens:
		c.handleGetProcessingTokens(ctx, cl, envelope)
	case EventSendMessage:
		c.handleSendMessage(ctx, cl, envelope)
	case EventSendNotification:
		c.handleSendNotification(ctx, cl, envelope)
	default:
		c.logger.Debug(logging.Socket, logging.Dispatch, "unknown event dropped", map[logging.ExtraKey]any{
			logging.EventName:    envelope.Event,
			logging.ConnectionID: cl.ID,
		})
	}
}

// HandleConnect makes the connection reachable by hub-wide broadcasts.
// The connection may still be anonymous; presence updates go out to
// every live connection, not only registry-bound ones.
func (c *Core) HandleConnect(cl *Client) {
	c.mu.Lock()
	c.clients[cl.ID] = cl
	c.mu.Unlock()
	c.syncGauges()
}

// HandleDisconnect unbinds the connection and, when the owning user
// has no connections left, fires exactly one offline broadcast.
func (c *Core) HandleDisconnect(ctx context.Context, cl *Client) {
	c.mu.Lock()
	delete(c.clients, cl.ID)
	c.mu.Unlock()

	c.rooms.RemoveClient(cl)

	userID, wentOffline := c.registry.Unbind(cl)
	c.syncGauges()

	if !wentOffline {
		return
	}

	c.logger.Info(logging.Registry, logging.Presence, "user went offline", map[logging.ExtraKey]any{
		logging.UserID:       userID,
		logging.ConnectionID: cl.ID,
	})

	c.broadcastPresence(ctx, userID, StatusOffline)
}

func (c *Core) broadcastPresence(ctx context.Context, userID string, status PresenceStatus) {
	delivered := c.broadcastAll(NewPresenceUpdate(userID, status))
	c.metrics.DeliveriesTotal.WithLabelValues(EventPresenceUpdate).Add(float64(delivered))

	if err := c.publisher.PresenceChanged(ctx, userID, string(status)); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.Presence, "failed to publish presence change", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (c *Core) broadcastToRoom(institutionID string, evt *ServerEvent) {
	delivered := c.rooms.Broadcast(institutionID, evt)
	c.metrics.DeliveriesTotal.WithLabelValues(evt.Event).Add(float64(delivered))
}

// broadcastAll delivers the event to every live connection. Slow
// connections have the event dropped rather than blocking the caller.
func (c *Core) broadcastAll(evt *ServerEvent) int {
	c.mu.RLock()
	targets := make([]*Client, 0, len(c.clients))
	for _, cl := range c.clients {
		targets = append(targets, cl)
	}
	c.mu.RUnlock()

	delivered := 0
	for _, cl := range targets {
		if cl.Send(evt) {
			delivered++
		}
	}
	return delivered
}

func (c *Core) syncGauges() {
	c.mu.RLock()
	live := len(c.clients)
	c.mu.RUnlock()

	c.metrics.ConnectionsActive.Set(float64(live))
	c.metrics.UsersOnline.Set(float64(c.registry.Users()))
}
