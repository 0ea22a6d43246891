package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCore_NilCollaboratorsDefaulted(t *testing.T) {
	req := require.New(t)
	core := NewCore(NewRegistry(), NewRoomManager(), Repositories{}, nil, nil, nil, CoreConfig{})

	cl := newTestClient()
	req.NotPanics(func() {
		core.Dispatch(context.Background(), cl, envelope(t, EventRegister, JoinPayload{UserID: "alice"}))
	})
	req.Equal(StatusOnline, core.registry.StatusOf("alice"))
}

func TestBroadcastAll_ReachesEveryLiveConnection(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	bound := newTestClient()
	roomOnly := newTestClient()
	anonymous := newTestClient()
	for _, cl := range []*Client{bound, roomOnly, anonymous} {
		f.core.HandleConnect(cl)
	}
	f.core.registry.Bind("user-a", bound, StatusOnline)
	f.core.rooms.Join("inst-1", roomOnly)

	delivered := f.core.broadcastAll(NewPresenceUpdate("user-a", StatusOnline))

	req.Equal(3, delivered)
	req.Len(drain(bound), 1)
	req.Len(drain(roomOnly), 1)
	req.Len(drain(anonymous), 1)
}

func TestBroadcastAll_SlowConnectionDroppedNotBlocked(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	slow := &Client{ID: "slow", Message: make(chan *ServerEvent), done: make(chan struct{})}
	f.core.HandleConnect(slow)

	delivered := f.core.broadcastAll(NewPresenceUpdate("user-1", StatusOnline))

	req.Equal(0, delivered)
}

func TestHandleConnect_DisconnectedClientUnreachable(t *testing.T) {
	req := require.New(t)
	f := newCoreFixture()
	cl := newTestClient()
	f.core.HandleConnect(cl)
	f.core.HandleDisconnect(context.Background(), cl)

	delivered := f.core.broadcastAll(NewPresenceUpdate("user-1", StatusOffline))

	req.Equal(0, delivered)
	req.Empty(drain(cl))
}
