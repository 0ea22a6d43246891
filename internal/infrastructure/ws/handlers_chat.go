package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/infrastructure/logging"
)

// sendMessage persists a chat message and fans it out to every
// connection currently bound to the receiver. The receiver being
// offline is a normal state: the message is persisted either way.
func (c *Core) handleSendMessage(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload SendMessagePayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logger.Debug(logging.Validation, logging.Delivery, "malformed sendMessage dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	if payload.SenderID == "" || payload.ReceiverID == "" || payload.Content == "" || payload.SenderType == "" {
		c.logger.Debug(logging.Validation, logging.Delivery, "incomplete sendMessage dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	expiresAt, err := c.messageExpiry(ctx, payload.SenderID, domain.Role(payload.SenderType), payload.ReceiverID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.logger.Debug(logging.Validation, logging.Delivery, "sendMessage to unknown receiver dropped", map[logging.ExtraKey]any{
				logging.UserID: payload.ReceiverID,
			})
		} else {
			c.logger.Error(logging.Mongo, logging.Delivery, "failed to compute message expiry", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		return
	}

	conversationID := payload.ConversationID
	if conversationID == "" {
		conversationID, err = c.repos.Conversations.FindOrCreate(ctx, payload.SenderID, payload.ReceiverID, payload.Accepted)
		if err != nil {
			c.logger.Error(logging.Mongo, logging.Delivery, "failed to resolve conversation", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return
		}
	}

	timestamp := payload.Timestamp
	if timestamp.IsZero() {
		timestamp = c.now()
	}

	message := domain.NewMessage(conversationID, payload.SenderID, domain.Role(payload.SenderType), payload.ReceiverID, payload.Content, timestamp, expiresAt)

	if err := c.repos.Messages.Create(ctx, message); err != nil {
		c.logger.Error(logging.Mongo, logging.Delivery, "failed to persist message", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	summary := domain.ConversationSummary{
		LastMessageID:        message.ID,
		LastMessageContent:   message.Content,
		LastMessageSenderID:  message.SenderID,
		LastMessageTimestamp: message.Timestamp,
	}
	if err := c.repos.Conversations.UpdateSummary(ctx, conversationID, summary); err != nil {
		// The message itself is durable; a stale summary is not worth
		// dropping the delivery for.
		c.logger.Error(logging.Mongo, logging.Delivery, "failed to update conversation summary", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	// Receiver connections are resolved now, at delivery time, not at
	// validation time.
	evt := NewReceiveMessage(message)
	delivered := 0
	for _, receiver := range c.registry.ConnectionsFor(payload.ReceiverID) {
		if receiver.Send(evt) {
			delivered++
		}
	}
	c.metrics.DeliveriesTotal.WithLabelValues(EventReceiveMessage).Add(float64(delivered))
}

// sendNotification persists the notification, then delivers it to the
// recipient's connections. An offline recipient is logged as a
// delivery failure; there is no retry and no queue.
func (c *Core) handleSendNotification(ctx context.Context, cl *Client, envelope *Envelope) {
	var payload SendNotificationPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil ||
		payload.ToUserID == "" || payload.FromUserID == "" || payload.Message == "" {
		c.logger.Error(logging.Validation, logging.Delivery, "invalid notification payload dropped", map[logging.ExtraKey]any{
			logging.ConnectionID: cl.ID,
		})
		return
	}

	notification := domain.NewNotification(payload.FromUserID, payload.ToUserID, payload.Message, payload.Status)

	if err := c.repos.Notifications.Create(ctx, notification); err != nil {
		c.logger.Error(logging.Mongo, logging.Delivery, "failed to persist notification", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	if err := c.publisher.NotificationCreated(ctx, notification.ID, notification.ReceiverID); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.Delivery, "failed to publish notification event", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	receivers := c.registry.ConnectionsFor(payload.ToUserID)
	if len(receivers) == 0 {
		c.metrics.DeliveryFailures.Inc()
		c.logger.Warn(logging.Socket, logging.Delivery, "notification undeliverable, user offline", map[logging.ExtraKey]any{
			logging.UserID: payload.ToUserID,
		})
		return
	}

	evt := NewReceiveNotification(payload.Message, payload.FromUserID, payload.Status)
	delivered := 0
	for _, receiver := range receivers {
		if receiver.Send(evt) {
			delivered++
		}
	}
	c.metrics.DeliveriesTotal.WithLabelValues(EventReceiveNotification).Add(float64(delivered))
}
