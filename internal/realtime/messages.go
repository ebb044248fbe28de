package realtime

import (
	"net/http"
	"time"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Join                     *Join                     `json:"join,omitempty"`
	Leave                    *Leave                    `json:"leave,omitempty"`
	AddComment               *AddComment               `json:"add-comment,omitempty"`
	UpdateComment            *UpdateComment            `json:"update-comment,omitempty"`
	DeleteComment            *DeleteComment            `json:"delete-comment,omitempty"`
	MarkNotificationRead     *MarkNotificationRead     `json:"mark-notification-read,omitempty"`
	MarkAllNotificationsRead *MarkAllNotificationsRead `json:"mark-all-notifications-read,omitempty"`
}

type Join struct {
	Room string `json:"room"`
}

type Leave struct {
	Room string `json:"room"`
}

type AddComment struct {
	TaskId  int    `json:"task_id"`
	Content string `json:"content"`
}

type UpdateComment struct {
	CommentId int    `json:"comment_id"`
	Content   string `json:"content"`
}

type DeleteComment struct {
	CommentId int `json:"comment_id"`
}

type MarkNotificationRead struct {
	NotificationId int `json:"notification_id"`
}

type MarkAllNotificationsRead struct{}

type ServerMessage struct {
	BaseMessage
	Response *Response     `json:"response,omitempty"`
	Event    *EventMessage `json:"event,omitempty"`
}

type EventMessage struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

func NoErrOK(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrBadRoomKey(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid room key",
		},
	}
}

func ErrNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "not found",
		},
	}
}

func ErrAuthorizationDenied(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "authorization denied",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
