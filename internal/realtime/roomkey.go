package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

// RoomKey identifies a broadcast topic. A room has no storage of its own; a
// key exists only while at least one session is joined to it.
type RoomKey string

const (
	roomKindProject = "project"
	roomKindTask    = "task"
	roomKindUser    = "user"
)

func ProjectRoom(projectId int) RoomKey {
	return RoomKey(roomKindProject + ":" + strconv.Itoa(projectId))
}

func TaskRoom(taskId int) RoomKey {
	return RoomKey(roomKindTask + ":" + strconv.Itoa(taskId))
}

func UserRoom(userId int) RoomKey {
	return RoomKey(roomKindUser + ":" + strconv.Itoa(userId))
}

// ParseRoomKey validates the colon-delimited grammar: project:<id>,
// task:<id> or user:<id> with a positive numeric id.
func ParseRoomKey(s string) (RoomKey, error) {
	kind, rawId, ok := strings.Cut(s, ":")
	if !ok {
		return "", fmt.Errorf("malformed room key %q", s)
	}

	switch kind {
	case roomKindProject, roomKindTask, roomKindUser:
	default:
		return "", fmt.Errorf("unknown room kind %q", kind)
	}

	id, err := strconv.Atoi(rawId)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid id in room key %q", s)
	}

	return RoomKey(s), nil
}
