package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskboard/taskboard/internal/stats"
)

func newTestRoomRegistry() (*RoomRegistry, *stats.MockStatsProvider) {
	su := &stats.MockStatsProvider{}
	su.On("Incr", stats.NumRooms).Maybe()
	su.On("Decr", stats.NumRooms).Maybe()
	return NewRoomRegistry(su), su
}

func TestRoomRegistryJoinAndLeave(t *testing.T) {
	t.Run("join creates the room", func(t *testing.T) {
		r, _ := newTestRoomRegistry()

		r.Join("s1", TaskRoom(42))
		assert.Equal(t, []string{"s1"}, r.MembersOf(TaskRoom(42)), "expected s1 to be a member")
		assert.Equal(t, 1, r.NumRooms(), "expected one room")
	})

	t.Run("join is idempotent", func(t *testing.T) {
		r, _ := newTestRoomRegistry()

		r.Join("s1", TaskRoom(42))
		r.Join("s1", TaskRoom(42))
		assert.Len(t, r.MembersOf(TaskRoom(42)), 1, "expected a single membership entry")

		r.Leave("s1", TaskRoom(42))
		assert.Empty(t, r.MembersOf(TaskRoom(42)), "expected s1 gone after one leave")
	})

	t.Run("leave prunes empty rooms", func(t *testing.T) {
		r, su := newTestRoomRegistry()

		r.Join("s1", TaskRoom(42))
		r.Join("s2", TaskRoom(42))
		r.Leave("s1", TaskRoom(42))
		assert.Equal(t, 1, r.NumRooms(), "expected room to survive while s2 is joined")

		r.Leave("s2", TaskRoom(42))
		assert.Equal(t, 0, r.NumRooms(), "expected room to be pruned when empty")
		su.AssertCalled(t, "Decr", stats.NumRooms)
	})

	t.Run("leave of a room never joined is a no-op", func(t *testing.T) {
		r, _ := newTestRoomRegistry()

		r.Leave("s1", TaskRoom(42))
		assert.Equal(t, 0, r.NumRooms(), "expected no rooms")
	})

	t.Run("membersOf unknown room returns empty set", func(t *testing.T) {
		r, _ := newTestRoomRegistry()

		members := r.MembersOf(ProjectRoom(7))
		assert.NotNil(t, members, "expected a non-nil slice")
		assert.Empty(t, members, "expected no members for unknown room")
	})
}

func TestRoomRegistryJoinIfLive(t *testing.T) {
	t.Run("joins a live session", func(t *testing.T) {
		r, _ := newTestRoomRegistry()

		ok := r.JoinIfLive("s1", TaskRoom(42), func(string) bool { return true })
		assert.True(t, ok, "expected the join to be accepted")
		assert.Equal(t, []string{"s1"}, r.MembersOf(TaskRoom(42)), "expected s1 to be a member")
	})

	t.Run("refuses a dead session", func(t *testing.T) {
		r, _ := newTestRoomRegistry()

		ok := r.JoinIfLive("s1", TaskRoom(42), func(string) bool { return false })
		assert.False(t, ok, "expected the join to be refused")
		assert.Empty(t, r.MembersOf(TaskRoom(42)), "expected no membership")
		assert.Equal(t, 0, r.NumRooms(), "expected no room to be created")
	})
}

func TestRoomRegistryDropSession(t *testing.T) {
	r, _ := newTestRoomRegistry()

	r.Join("s1", TaskRoom(42))
	r.Join("s1", ProjectRoom(7))
	r.Join("s2", TaskRoom(42))

	r.DropSession("s1")

	assert.Equal(t, []string{"s2"}, r.MembersOf(TaskRoom(42)), "expected only s2 to remain in task room")
	assert.Empty(t, r.MembersOf(ProjectRoom(7)), "expected project room to be pruned")
	assert.Empty(t, r.RoomsOf("s1"), "expected s1 to have no joined rooms")
	assert.Equal(t, 1, r.NumRooms(), "expected only the task room to remain")
}

func TestRoomRegistryStats(t *testing.T) {
	su := &stats.MockStatsProvider{}
	su.On("Incr", stats.NumRooms).Once()
	su.On("Decr", stats.NumRooms).Once()
	defer su.AssertExpectations(t)

	r := NewRoomRegistry(su)
	r.Join("s1", TaskRoom(1))
	r.Join("s2", TaskRoom(1))

	r.DropSession("s1")
	r.DropSession("s2")

	su.AssertNumberOfCalls(t, "Incr", 1)
	su.AssertNumberOfCalls(t, "Decr", 1)
}
