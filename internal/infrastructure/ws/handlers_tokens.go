package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/infrastructure/logging"
)

// joinInstitutionRoom subscribes the connection to an institution's
// queue updates and replies with a snapshot of the current state:
// the active token plus the recent completed history. The snapshot
// goes to the requesting connection only.
func (c *Core) handleJoinInstitutionRoom(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload InstitutionPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.InstitutionID == "" {
		c.logger.Error(logging.Validation, logging.RoomEvents, "joinInstitutionRoom without institutionId dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	c.rooms.Join(payload.InstitutionID, cl)

	c.logger.Info(logging.Socket, logging.RoomEvents, "connection joined institution room", map[logging.ExtraKey]any{
		logging.InstitutionID: payload.InstitutionID,
		logging.ConnectionID:  cl.ID,
	})

	active, err := c.repos.Tokens.FindActive(ctx, payload.InstitutionID)
	if err != nil {
		c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to load active token", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
		return
	}

	completed, err := c.repos.Tokens.ListCompleted(ctx, payload.InstitutionID, c.completedHistory)
	if err != nil {
		c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to load completed tokens", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
		return
	}

	cl.Send(NewTokenUpdated(active))
	cl.Send(NewCompletedTokensUpdated(completed))
}

// newToken enriches a freshly issued token with its submitter's
// identity and broadcasts it to the institution room.
func (c *Core) handleNewToken(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload NewTokenPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.InstitutionID == "" {
		c.logger.Error(logging.Validation, logging.RoomEvents, "newToken without institutionId dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	token := payload.Token
	if token.UserID != "" {
		identity, err := c.repos.Users.FindIdentity(ctx, token.UserID)
		switch {
		case err == nil:
			token.Username = &identity.Username
			token.MobileNumber = &identity.MobileNumber
		case errors.Is(err, domain.ErrUserNotFound):
			// Unknown submitter: broadcast the token as-is.
		default:
			c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to enrich token", map[logging.ExtraKey]any{
				logging.UserID:       token.UserID,
				logging.ErrorMessage: err.Error(),
			})
			return
		}
	}

	c.broadcastToRoom(payload.InstitutionID, NewTokenUpdated(&token))
}

// startProcessing flags the token as being served and broadcasts the
// updated token, with owner identity, to the institution room.
func (c *Core) handleStartProcessing(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload TokenActionPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.InstitutionID == "" || payload.TokenID == "" {
		c.logger.Error(logging.Validation, logging.RoomEvents, "startProcessing payload invalid", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	processing := true
	token, err := c.repos.Tokens.Update(ctx, payload.TokenID, domain.TokenPatch{Processing: &processing})
	if err != nil {
		c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to mark token as processing", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
		return
	}

	c.enrichToken(ctx, token)
	c.broadcastToRoom(payload.InstitutionID, NewProcessingTokenUpdated(token))
}

// completeToken closes out the token and broadcasts the refreshed
// completed-token history to the institution room.
func (c *Core) handleCompleteToken(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload TokenActionPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.InstitutionID == "" || payload.TokenID == "" {
		c.logger.Error(logging.Validation, logging.RoomEvents, "completeToken payload invalid", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	completed := true
	processing := false
	if _, err := c.repos.Tokens.Update(ctx, payload.TokenID, domain.TokenPatch{Completed: &completed, Processing: &processing}); err != nil {
		c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to complete token", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
		return
	}

	if err := c.publisher.TokenCompleted(ctx, payload.InstitutionID, payload.TokenID); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.RoomEvents, "failed to publish token completion", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
	}

	history, err := c.repos.Tokens.ListCompleted(ctx, payload.InstitutionID, c.completedHistory)
	if err != nil {
		c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to refresh completed tokens", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
		return
	}

	c.broadcastToRoom(payload.InstitutionID, NewCompletedTokensUpdated(history))
}

// getCurrentProcessingTokens is request/acknowledge style: the caller
// always gets a reply, and any failure degrades to an empty list
// rather than an error.
func (c *Core) handleGetProcessingTokens(ctx context.Context, cl *Client, envelope *Envelope) {
	ack := func(tokens []domain.Token) {
		if tokens == nil {
			tokens = []domain.Token{}
		}
		cl.Send(NewProcessingTokensAck(envelope.AckID, tokens))
	}

	var payload InstitutionPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.InstitutionID == "" {
		ack(nil)
		return
	}

	tokens, err := c.repos.Tokens.ListProcessing(ctx, payload.InstitutionID)
	if err != nil {
		c.logger.Error(logging.Mongo, logging.RoomEvents, "failed to fetch processing tokens", map[logging.ExtraKey]any{
			logging.InstitutionID: payload.InstitutionID,
			logging.ErrorMessage:  err.Error(),
		})
		ack(nil)
		return
	}

	ack(tokens)
}

// enrichToken fills in the owner's identity, best effort. A token
// without an owning user, or a failed lookup, keeps nil fields.
func (c *Core) enrichToken(ctx context.Context, token *domain.Token) {
	if token.UserID == "" {
		return
	}

	identity, err := c.repos.Users.FindIdentity(ctx, token.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			c.logger.Warn(logging.Mongo, logging.RoomEvents, "token identity lookup failed", map[logging.ExtraKey]any{
				logging.UserID:       token.UserID,
				logging.ErrorMessage: err.Error(),
			})
		}
		return
	}

	token.Username = &identity.Username
	token.MobileNumber = &identity.MobileNumber
}
