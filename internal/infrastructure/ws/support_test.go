package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/queueline/realtime/internal/domain"
	"github.com/queueline/realtime/internal/infrastructure/metrics"
)

// Fixed clock for expiry assertions.
var testNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

type fakeUsers struct {
	identities map[string]domain.UserIdentity
	roles      map[string]domain.Role
	plans      map[string]string

	identityErr error
	roleErr     error
	planErr     error
}

func (f *fakeUsers) FindIdentity(_ context.Context, userID string) (*domain.UserIdentity, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	identity, ok := f.identities[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &identity, nil
}

func (f *fakeUsers) FindRole(_ context.Context, userID string) (domain.Role, error) {
	if f.roleErr != nil {
		return "", f.roleErr
	}
	role, ok := f.roles[userID]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return role, nil
}

func (f *fakeUsers) FindSubscriptionPlan(_ context.Context, institutionID string) (string, error) {
	if f.planErr != nil {
		return "", f.planErr
	}
	return f.plans[institutionID], nil
}

type fakeTokens struct {
	active     *domain.Token
	completed  []domain.Token
	processing []domain.Token
	byID       map[string]*domain.Token

	activeErr     error
	completedErr  error
	processingErr error
	updateErr     error

	patches []domain.TokenPatch
}

func (f *fakeTokens) FindActive(_ context.Context, _ string) (*domain.Token, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active, nil
}

func (f *fakeTokens) ListCompleted(_ context.Context, _ string, _ int) ([]domain.Token, error) {
	if f.completedErr != nil {
		return nil, f.completedErr
	}
	return f.completed, nil
}

func (f *fakeTokens) ListProcessing(_ context.Context, _ string) ([]domain.Token, error) {
	if f.processingErr != nil {
		return nil, f.processingErr
	}
	return f.processing, nil
}

func (f *fakeTokens) Update(_ context.Context, tokenID string, patch domain.TokenPatch) (*domain.Token, error) {
	f.patches = append(f.patches, patch)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	token, ok := f.byID[tokenID]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	updated := *token
	if patch.Processing != nil {
		updated.Processing = *patch.Processing
	}
	if patch.Completed != nil {
		updated.Completed = *patch.Completed
	}
	return &updated, nil
}

type conversationPair struct {
	PartyA, PartyB string
	Accepted       bool
}

type fakeConversations struct {
	id        string
	created   []conversationPair
	summaries []domain.ConversationSummary

	findErr   error
	updateErr error
}

func (f *fakeConversations) FindOrCreate(_ context.Context, partyA, partyB string, accepted bool) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	f.created = append(f.created, conversationPair{PartyA: partyA, PartyB: partyB, Accepted: accepted})
	return f.id, nil
}

func (f *fakeConversations) UpdateSummary(_ context.Context, _ string, summary domain.ConversationSummary) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.summaries = append(f.summaries, summary)
	return nil
}

type fakeMessages struct {
	created []*domain.Message
	err     error
}

func (f *fakeMessages) Create(_ context.Context, message *domain.Message) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, message)
	return nil
}

type fakeNotifications struct {
	created []*domain.Notification
	err     error
}

func (f *fakeNotifications) Create(_ context.Context, notification *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notification)
	return nil
}

type publishedPresence struct {
	UserID, Status string
}

type publishedToken struct {
	InstitutionID, TokenID string
}

type fakePublisher struct {
	presence      []publishedPresence
	tokens        []publishedToken
	notifications []string
}

func (f *fakePublisher) PresenceChanged(_ context.Context, userID, status string) error {
	f.presence = append(f.presence, publishedPresence{UserID: userID, Status: status})
	return nil
}

func (f *fakePublisher) TokenCompleted(_ context.Context, institutionID, tokenID string) error {
	f.tokens = append(f.tokens, publishedToken{InstitutionID: institutionID, TokenID: tokenID})
	return nil
}

func (f *fakePublisher) NotificationCreated(_ context.Context, notificationID, _ string) error {
	f.notifications = append(f.notifications, notificationID)
	return nil
}

type coreFixture struct {
	core          *Core
	users         *fakeUsers
	tokens        *fakeTokens
	conversations *fakeConversations
	messages      *fakeMessages
	notifications *fakeNotifications
	publisher     *fakePublisher
}

func newCoreFixture() *coreFixture {
	f := &coreFixture{
		users:         &fakeUsers{identities: map[string]domain.UserIdentity{}, roles: map[string]domain.Role{}, plans: map[string]string{}},
		tokens:        &fakeTokens{byID: map[string]*domain.Token{}},
		conversations: &fakeConversations{id: uuid.NewString()},
		messages:      &fakeMessages{},
		notifications: &fakeNotifications{},
		publisher:     &fakePublisher{},
	}

	f.core = NewCore(
		NewRegistry(),
		NewRoomManager(),
		Repositories{
			Tokens:        f.tokens,
			Users:         f.users,
			Conversations: f.conversations,
			Messages:      f.messages,
			Notifications: f.notifications,
		},
		f.publisher,
		nil,
		metrics.New(prometheus.NewRegistry()),
		CoreConfig{CompletedHistory: 5},
	)
	f.core.now = func() time.Time { return testNow }

	return f
}

func newTestClient() *Client {
	return &Client{
		ID:      uuid.NewString(),
		Message: make(chan *ServerEvent, 16),
		done:    make(chan struct{}),
	}
}

// drain collects everything queued on the client without blocking.
func drain(cl *Client) []*ServerEvent {
	var events []*ServerEvent
	for {
		select {
		case evt := <-cl.Message:
			events = append(events, evt)
		default:
			return events
		}
	}
}

func envelope(t *testing.T, event string, payload any) *Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &Envelope{Event: event, Data: data}
}
