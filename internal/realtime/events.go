package realtime

import (
	"github.com/taskboard/taskboard/internal/types"
)

// EventKind is the closed set of domain events the engine can fan out.
type EventKind int

const (
	TaskCreated EventKind = iota + 1
	TaskUpdated
	TaskDeleted
	CommentAdded
	CommentUpdated
	CommentDeleted
	NotificationCountChanged
)

func (k EventKind) String() string {
	switch k {
	case TaskCreated:
		return "task-created"
	case TaskUpdated:
		return "task-updated"
	case TaskDeleted:
		return "task-deleted"
	case CommentAdded:
		return "new-comment"
	case CommentUpdated:
		return "comment-updated"
	case CommentDeleted:
		return "comment-deleted"
	case NotificationCountChanged:
		return "notification-count"
	}
	return "unknown"
}

type TaskRef struct {
	Id        int `json:"id"`
	ProjectId int `json:"project_id"`
}

type CommentRef struct {
	Id     int `json:"id"`
	TaskId int `json:"task_id"`
}

type NotificationCount struct {
	Count int `json:"count"`
}

// DomainEvent is a transient, typed message delivered to every session joined
// to one of its target rooms. Exactly one payload field is set, matching Kind.
// Events are never persisted and never replayed.
type DomainEvent struct {
	Kind              EventKind
	Task              *types.Task
	TaskRef           *TaskRef
	Comment           *types.Comment
	CommentRef        *CommentRef
	NotificationCount *NotificationCount
	Rooms             []RoomKey
}

func NewTaskCreated(task types.Task) DomainEvent {
	return DomainEvent{
		Kind:  TaskCreated,
		Task:  &task,
		Rooms: []RoomKey{ProjectRoom(task.ProjectId)},
	}
}

func NewTaskUpdated(task types.Task) DomainEvent {
	return DomainEvent{
		Kind:  TaskUpdated,
		Task:  &task,
		Rooms: []RoomKey{ProjectRoom(task.ProjectId), TaskRoom(task.Id)},
	}
}

func NewTaskDeleted(taskId, projectId int) DomainEvent {
	return DomainEvent{
		Kind:    TaskDeleted,
		TaskRef: &TaskRef{Id: taskId, ProjectId: projectId},
		Rooms:   []RoomKey{ProjectRoom(projectId), TaskRoom(taskId)},
	}
}

func NewCommentAdded(comment types.Comment) DomainEvent {
	return DomainEvent{
		Kind:    CommentAdded,
		Comment: &comment,
		Rooms:   []RoomKey{TaskRoom(comment.TaskId)},
	}
}

func NewCommentUpdated(comment types.Comment) DomainEvent {
	return DomainEvent{
		Kind:    CommentUpdated,
		Comment: &comment,
		Rooms:   []RoomKey{TaskRoom(comment.TaskId)},
	}
}

func NewCommentDeleted(commentId, taskId int) DomainEvent {
	return DomainEvent{
		Kind:       CommentDeleted,
		CommentRef: &CommentRef{Id: commentId, TaskId: taskId},
		Rooms:      []RoomKey{TaskRoom(taskId)},
	}
}

func NewNotificationCount(userId, count int) DomainEvent {
	return DomainEvent{
		Kind:              NotificationCountChanged,
		NotificationCount: &NotificationCount{Count: count},
		Rooms:             []RoomKey{UserRoom(userId)},
	}
}

func (e DomainEvent) payload() any {
	switch e.Kind {
	case TaskCreated, TaskUpdated:
		return e.Task
	case TaskDeleted:
		return e.TaskRef
	case CommentAdded, CommentUpdated:
		return e.Comment
	case CommentDeleted:
		return e.CommentRef
	case NotificationCountChanged:
		return e.NotificationCount
	}
	return nil
}

func (e DomainEvent) serverMessage() *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Event: &EventMessage{
			Name:    e.Kind.String(),
			Payload: e.payload(),
		},
	}
}
