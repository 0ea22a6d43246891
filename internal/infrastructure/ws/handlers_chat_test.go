package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/queueline/realtime/internal/domain"
	"github.com/stretchr/testify/require"
)

func sendMessageEnvelope(t *testing.T, payload SendMessagePayload) *Envelope {
	t.Helper()
	return envelope(t, EventSendMessage, payload)
}

func TestHandleSendMessage_PersistsAndFansOutToReceiver(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser

	phone := newTestClient()
	laptop := newTestClient()
	f.core.registry.Bind("bob", phone, StatusOnline)
	f.core.registry.Bind("bob", laptop, StatusOnline)

	sender := newTestClient()
	f.core.registry.Bind("alice", sender, StatusOnline)

	f.core.Dispatch(context.Background(), sender, sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "alice",
		SenderType: string(domain.RoleUser),
		ReceiverID: "bob",
		Content:    "hello",
	}))

	req.Len(f.messages.created, 1)
	message := f.messages.created[0]
	req.Equal("alice", message.SenderID)
	req.Equal("bob", message.ReceiverID)
	req.Equal("hello", message.Content)
	req.Equal(f.conversations.id, message.ConversationID)
	req.Equal(testNow, message.Timestamp)
	req.NotNil(message.ExpiresAt)
	req.Equal(testNow.Add(messageTTL), *message.ExpiresAt)

	req.Len(f.conversations.summaries, 1)
	req.Equal(message.ID, f.conversations.summaries[0].LastMessageID)
	req.Equal("hello", f.conversations.summaries[0].LastMessageContent)

	// Every connection of the receiver hears it, the sender's does not.
	for _, receiver := range []*Client{phone, laptop} {
		events := drain(receiver)
		req.Len(events, 1)
		req.Equal(EventReceiveMessage, events[0].Event)
		payload := events[0].Data.(MessagePayload)
		req.Equal("hello", payload.Content)
		req.Equal(f.conversations.id, payload.ConversationID)
	}
	req.Empty(drain(sender))
}

func TestHandleSendMessage_OfflineReceiver_StillPersisted(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "alice",
		SenderType: string(domain.RoleUser),
		ReceiverID: "bob",
		Content:    "catch up later",
	}))

	req.Len(f.messages.created, 1)
	req.Len(f.conversations.summaries, 1)
}

func TestHandleSendMessage_ExistingConversation_SkipsLookup(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:       "alice",
		SenderType:     string(domain.RoleUser),
		ReceiverID:     "bob",
		ConversationID: "conv-77",
		Content:        "hello again",
	}))

	req.Empty(f.conversations.created)
	req.Len(f.messages.created, 1)
	req.Equal("conv-77", f.messages.created[0].ConversationID)
}

func TestHandleSendMessage_NewConversation_CarriesAcceptedFlag(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser
	f.users.plans["clinic"] = domain.PlanPremium

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "clinic",
		SenderType: string(domain.RoleInstitution),
		ReceiverID: "bob",
		Content:    "your documents are ready",
		Accepted:   true,
	}))

	req.Len(f.conversations.created, 1)
	req.True(f.conversations.created[0].Accepted)
}

func TestHandleSendMessage_ClientTimestampPreserved(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser
	sent := testNow.Add(-2 * time.Minute)

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "alice",
		SenderType: string(domain.RoleUser),
		ReceiverID: "bob",
		Content:    "hello",
		Timestamp:  sent,
	}))

	req.Len(f.messages.created, 1)
	req.Equal(sent, f.messages.created[0].Timestamp)
}

func TestHandleSendMessage_MissingFields_Dropped(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()

	for _, payload := range []SendMessagePayload{
		{SenderType: string(domain.RoleUser), ReceiverID: "bob", Content: "hi"},
		{SenderID: "alice", ReceiverID: "bob", Content: "hi"},
		{SenderID: "alice", SenderType: string(domain.RoleUser), Content: "hi"},
		{SenderID: "alice", SenderType: string(domain.RoleUser), ReceiverID: "bob"},
	} {
		f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, payload))
	}

	req.Empty(f.messages.created)
	req.Empty(f.conversations.created)
}

func TestHandleSendMessage_UnknownReceiver_Dropped(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "alice",
		SenderType: string(domain.RoleUser),
		ReceiverID: "ghost",
		Content:    "hello?",
	}))

	req.Empty(f.messages.created)
}

func TestHandleSendMessage_SummaryFailure_DeliveryProceeds(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser
	f.conversations.updateErr = errors.New("mongo timeout")

	receiver := newTestClient()
	f.core.registry.Bind("bob", receiver, StatusOnline)

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "alice",
		SenderType: string(domain.RoleUser),
		ReceiverID: "bob",
		Content:    "hello",
	}))

	req.Len(f.messages.created, 1)
	req.Len(drain(receiver), 1)
}

func TestHandleSendMessage_PersistFailure_NothingDelivered(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.users.roles["bob"] = domain.RoleUser
	f.messages.err = errors.New("mongo timeout")

	receiver := newTestClient()
	f.core.registry.Bind("bob", receiver, StatusOnline)

	f.core.Dispatch(context.Background(), newTestClient(), sendMessageEnvelope(t, SendMessagePayload{
		SenderID:   "alice",
		SenderType: string(domain.RoleUser),
		ReceiverID: "bob",
		Content:    "hello",
	}))

	req.Empty(drain(receiver))
}

func TestHandleSendNotification_PersistsAndDelivers(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()

	receiver := newTestClient()
	f.core.registry.Bind("bob", receiver, StatusOnline)

	f.core.Dispatch(context.Background(), newTestClient(), envelope(t, EventSendNotification, SendNotificationPayload{
		ToUserID:   "bob",
		FromUserID: "alice",
		Message:    "your turn is next",
	}))

	req.Len(f.notifications.created, 1)
	notification := f.notifications.created[0]
	req.Equal("alice", notification.SenderID)
	req.Equal("bob", notification.ReceiverID)
	req.Equal(domain.DefaultNotificationType, notification.Type)

	req.Len(f.publisher.notifications, 1)
	req.Equal(notification.ID, f.publisher.notifications[0])

	events := drain(receiver)
	req.Len(events, 1)
	req.Equal(EventReceiveNotification, events[0].Event)
	payload := events[0].Data.(NotificationPayload)
	req.Equal("your turn is next", payload.Message)
	req.Equal("alice", payload.FromUserID)
}

func TestHandleSendNotification_IncompletePayload_Dropped(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()

	for _, payload := range []SendNotificationPayload{
		{FromUserID: "alice", Message: "hi"},
		{ToUserID: "bob", Message: "hi"},
		{ToUserID: "bob", FromUserID: "alice"},
	} {
		f.core.Dispatch(context.Background(), newTestClient(), envelope(t, EventSendNotification, payload))
	}

	req.Empty(f.notifications.created)
	req.Empty(f.publisher.notifications)
}

func TestHandleSendNotification_PersistFailure_NothingDelivered(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	f.notifications.err = errors.New("mongo timeout")

	receiver := newTestClient()
	f.core.registry.Bind("bob", receiver, StatusOnline)

	f.core.Dispatch(context.Background(), newTestClient(), envelope(t, EventSendNotification, SendNotificationPayload{
		ToUserID:   "bob",
		FromUserID: "alice",
		Message:    "your turn is next",
	}))

	req.Empty(drain(receiver))
	req.Empty(f.publisher.notifications)
}

func TestHandleSendNotification_OfflineReceiver_StillPersisted(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()

	f.core.Dispatch(context.Background(), newTestClient(), envelope(t, EventSendNotification, SendNotificationPayload{
		ToUserID:   "bob",
		FromUserID: "alice",
		Message:    "your turn is next",
	}))

	req.Len(f.notifications.created, 1)
	req.Len(f.publisher.notifications, 1)
}
