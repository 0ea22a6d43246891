package ws

import (
	"sync"
)

// RoomManager groups connections by institution id for queue-state
// broadcasts. Membership is connection-level: a room may hold
// connections of many users, and a connection may sit in many rooms.
// There is no explicit leave; RemoveClient runs on disconnect because
// the transport has no automatic room teardown.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // institutionID → clientID → client
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]map[string]*Client),
	}
}

// Join adds the client to the institution's room. Joining twice is a
// no-op.
func (rm *RoomManager) Join(institutionID string, cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[institutionID]
	if !ok {
		room = make(map[string]*Client)
		rm.rooms[institutionID] = room
	}
	room[cl.ID] = cl
}

// Broadcast sends the event to every connection in the room,
// regardless of which user owns it. Slow clients are skipped.
func (rm *RoomManager) Broadcast(institutionID string, evt *ServerEvent) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, ok := rm.rooms[institutionID]
	if !ok {
		return 0
	}

	delivered := 0
	for _, cl := range room {
		if cl.Send(evt) {
			delivered++
		}
	}
	return delivered
}

// RemoveClient drops the client from every room it joined, deleting
// rooms that become empty.
func (rm *RoomManager) RemoveClient(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for institutionID, room := range rm.rooms {
		if _, ok := room[cl.ID]; !ok {
			continue
		}

		delete(room, cl.ID)
		if len(room) == 0 {
			delete(rm.rooms, institutionID)
		}
	}
}

// Members reports the number of connections in the room.
func (rm *RoomManager) Members(institutionID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms[institutionID])
}
