package ws

import (
	"sync"
)

type PresenceStatus string

const (
	StatusOnline    PresenceStatus = "online"
	StatusConnected PresenceStatus = "connected"
	StatusOffline   PresenceStatus = "offline"
	StatusUnknown   PresenceStatus = "unknown"
)

// Registry owns the userID → live-connection mapping and the presence
// status derived from it. Every operation holds the mutex for the
// whole map/set update, so interleaved binds and unbinds from
// different connections are safe. Nothing else may mutate these maps.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]map[string]*Client // userID → clientID → client
	status      map[string]PresenceStatus
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]map[string]*Client),
		status:      make(map[string]PresenceStatus),
	}
}

// Bind associates the client with the user and marks the user present.
// Binding the same client twice is a no-op.
func (r *Registry) Bind(userID string, cl *Client, status PresenceStatus) {
	if userID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		set = make(map[string]*Client)
		r.connections[userID] = set
	}
	set[cl.ID] = cl
	r.status[userID] = status
}

// Unbind removes the client from whichever user owns it, scanning all
// entries to find the owner. When the last connection of a user goes
// away the user's entries are removed entirely and wentOffline is
// true. Unknown clients are a no-op.
func (r *Registry) Unbind(cl *Client) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for uid, set := range r.connections {
		if _, ok := set[cl.ID]; !ok {
			continue
		}

		delete(set, cl.ID)
		if len(set) == 0 {
			delete(r.connections, uid)
			delete(r.status, uid)
			return uid, true
		}
		return uid, false
	}

	return "", false
}

// ConnectionsFor returns the clients currently bound to the user.
// Callers get a copy; the registry may change under them afterwards.
func (r *Registry) ConnectionsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.connections[userID]
	if len(set) == 0 {
		return nil
	}

	clients := make([]*Client, 0, len(set))
	for _, cl := range set {
		clients = append(clients, cl)
	}
	return clients
}

func (r *Registry) StatusOf(userID string) PresenceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.status[userID]
	if !ok {
		return StatusUnknown
	}
	return status
}

// Users reports how many users have at least one bound connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Connections reports the total number of bound connections.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.connections {
		total += len(set)
	}
	return total
}
