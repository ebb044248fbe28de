package realtime

import (
	"sync"

	"github.com/taskboard/taskboard/internal/stats"
)

// RoomRegistry maps room keys to the set of sessions currently joined to
// them. Membership is always a subset of live sessions: a session's release
// drops it from every room before the release returns. Empty rooms are
// pruned immediately.
type RoomRegistry struct {
	mu      sync.Mutex
	members map[RoomKey]map[string]struct{}
	joined  map[string]map[RoomKey]struct{}
	stats   stats.StatsProvider
}

func NewRoomRegistry(st stats.StatsProvider) *RoomRegistry {
	return &RoomRegistry{
		members: make(map[RoomKey]map[string]struct{}),
		joined:  make(map[string]map[RoomKey]struct{}),
		stats:   st,
	}
}

// Join adds the session to the room, creating the room entry if absent.
// Joining a room the session is already in is a no-op.
func (r *RoomRegistry) Join(sessionId string, key RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joinLocked(sessionId, key)
}

// JoinIfLive adds the session only if live still reports it registered. The
// check runs under the registry lock: a release racing the join either sweeps
// the new membership afterwards or causes the join to be refused, so a
// released session is never left behind as a member.
func (r *RoomRegistry) JoinIfLive(sessionId string, key RoomKey, live func(sessionId string) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !live(sessionId) {
		return false
	}

	r.joinLocked(sessionId, key)
	return true
}

func (r *RoomRegistry) joinLocked(sessionId string, key RoomKey) {
	if r.members[key] == nil {
		r.members[key] = make(map[string]struct{})
		r.stats.Incr(stats.NumRooms)
	}
	r.members[key][sessionId] = struct{}{}

	if r.joined[sessionId] == nil {
		r.joined[sessionId] = make(map[RoomKey]struct{})
	}
	r.joined[sessionId][key] = struct{}{}
}

// Leave removes the session from the room. Leaving a room never joined is a
// no-op.
func (r *RoomRegistry) Leave(sessionId string, key RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sessionId, key)
}

func (r *RoomRegistry) leaveLocked(sessionId string, key RoomKey) {
	if members, ok := r.members[key]; ok {
		delete(members, sessionId)
		if len(members) == 0 {
			delete(r.members, key)
			r.stats.Decr(stats.NumRooms)
		}
	}

	if keys, ok := r.joined[sessionId]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.joined, sessionId)
		}
	}
}

// DropSession removes the session from every room it joined.
func (r *RoomRegistry) DropSession(sessionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.joined[sessionId] {
		r.leaveLocked(sessionId, key)
	}
}

// MembersOf returns the session ids joined to the room. Unknown rooms yield
// an empty slice, never an error.
func (r *RoomRegistry) MembersOf(key RoomKey) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]string, 0, len(r.members[key]))
	for id := range r.members[key] {
		members = append(members, id)
	}
	return members
}

func (r *RoomRegistry) RoomsOf(sessionId string) []RoomKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]RoomKey, 0, len(r.joined[sessionId]))
	for key := range r.joined[sessionId] {
		keys = append(keys, key)
	}
	return keys
}

func (r *RoomRegistry) NumRooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
