package realtime

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientMessageUnmarshal(t *testing.T) {
	t.Run("add-comment", func(t *testing.T) {
		raw := `{"id":7,"add-comment":{"task_id":42,"content":"lgtm"}}`

		var msg ClientMessage
		err := json.Unmarshal([]byte(raw), &msg)
		assert.NoError(t, err, "expected message to parse")
		assert.Equal(t, 7, msg.Id, "expected correlation id")
		assert.NotNil(t, msg.AddComment, "expected add-comment to be set")
		assert.Equal(t, 42, msg.AddComment.TaskId, "expected task id")
		assert.Equal(t, "lgtm", msg.AddComment.Content, "expected content")
		assert.Nil(t, msg.Join, "expected join to be unset")
	})

	t.Run("mark-all-notifications-read", func(t *testing.T) {
		raw := `{"id":3,"mark-all-notifications-read":{}}`

		var msg ClientMessage
		err := json.Unmarshal([]byte(raw), &msg)
		assert.NoError(t, err, "expected message to parse")
		assert.NotNil(t, msg.MarkAllNotificationsRead, "expected mark-all-notifications-read to be set")
	})

	t.Run("join", func(t *testing.T) {
		raw := `{"id":1,"join":{"room":"project:12"}}`

		var msg ClientMessage
		err := json.Unmarshal([]byte(raw), &msg)
		assert.NoError(t, err, "expected message to parse")
		assert.NotNil(t, msg.Join, "expected join to be set")
		assert.Equal(t, "project:12", msg.Join.Room, "expected room key")
	})
}

func TestNoErrOk(t *testing.T) {
	result := NoErrOK(1, map[string]any{"testkey": "testvalue"})

	assert.NotNil(t, result, "expected result to be non-nil")
	assert.NotNil(t, result.Response, "expected response to be non-nil")
	assert.Equal(t, 1, result.Id, "expected Id to match")
	assert.WithinDuration(t, Now(), result.Timestamp, time.Second, "expected Timestamp to be recent")
	assert.Equal(t, http.StatusOK, result.Response.ResponseCode, "expected ResponseCode to match")
	assert.Equal(t, map[string]any{"testkey": "testvalue"}, result.Response.Data, "expected Data to match")
}

func TestErrorResponses(t *testing.T) {
	tt := []struct {
		name         string
		msg          *ServerMessage
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "bad room key",
			msg:          ErrBadRoomKey(1),
			expectedCode: http.StatusBadRequest,
			expectedErr:  "invalid room key",
		},
		{
			name:         "not found",
			msg:          ErrNotFound(1),
			expectedCode: http.StatusNotFound,
			expectedErr:  "not found",
		},
		{
			name:         "authorization denied",
			msg:          ErrAuthorizationDenied(1),
			expectedCode: http.StatusForbidden,
			expectedErr:  "authorization denied",
		},
		{
			name:         "internal error",
			msg:          ErrInternalError(1),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "internal server error",
		},
		{
			name:         "invalid message",
			msg:          ErrInvalidMessage(1),
			expectedCode: http.StatusBadRequest,
			expectedErr:  "invalid message format",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotNil(t, tc.msg.Response, "expected response to be non-nil")
			assert.Equal(t, 1, tc.msg.Id, "expected correlation id")
			assert.Equal(t, tc.expectedCode, tc.msg.Response.ResponseCode, "expected ResponseCode to match")
			assert.Equal(t, tc.expectedErr, tc.msg.Response.Error, "expected Error to match")
		})
	}
}

func TestErrInvalidMessageWithoutId(t *testing.T) {
	msg := ErrInvalidMessage(-1)
	assert.Zero(t, msg.Id, "expected no correlation id for unparseable input")
}
