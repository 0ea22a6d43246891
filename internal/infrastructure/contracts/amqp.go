package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	UserID string `json:"userId"`
	Data   []byte `json:"data"`
}

// Routing keys - using consistent event/command patterns
const (
	EventPresenceChanged     = "presence.changed"
	EventTokenCompleted      = "token.completed"
	EventNotificationCreated = "notification.created"
)
