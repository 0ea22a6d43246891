package ws

import (
	"context"
	"encoding/json"

	"github.com/queueline/realtime/internal/infrastructure/logging"
)

// join binds the connection without announcing presence; queue-display
// clients use it so they can be addressed without entering chat.
func (c *Core) handleJoin(_ context.Context, cl *Client, envelope *Envelope) {
	var payload JoinPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.UserID == "" {
		c.logger.Debug(logging.Validation, logging.Dispatch, "join without userId dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	c.registry.Bind(payload.UserID, cl, StatusConnected)
	c.syncGauges()

	c.logger.Info(logging.Registry, logging.Presence, "user joined", map[logging.ExtraKey]any{
		logging.UserID:       payload.UserID,
		logging.ConnectionID: cl.ID,
	})
}

// register binds the connection and announces the user online to all
// bound connections.
func (c *Core) handleRegister(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload JoinPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.UserID == "" {
		c.logger.Error(logging.Validation, logging.Dispatch, "register without userId dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	c.registry.Bind(payload.UserID, cl, StatusOnline)
	c.syncGauges()

	c.broadcastPresence(ctx, payload.UserID, StatusOnline)
}
