package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/taskboard/taskboard/internal/config"
	"github.com/taskboard/taskboard/internal/database"
	"github.com/taskboard/taskboard/internal/realtime"
	"github.com/taskboard/taskboard/internal/stats"
	"github.com/taskboard/taskboard/internal/testutil"
	"github.com/taskboard/taskboard/internal/types"
)

// newTestApp wires a TaskboardApp over mocks. The realtime broadcaster loop
// is not started, so published events stay queued and cannot block the test.
func newTestApp(t *testing.T, db database.TaskboardRepository, cfg *config.Config) *TaskboardApp {
	t.Helper()

	su := &stats.MockStatsProvider{}
	su.On("RegisterMetric", mock.Anything).Times(4)
	su.On("Incr", mock.Anything).Maybe()
	su.On("Decr", mock.Anything).Maybe()

	rt, err := realtime.NewServer(testutil.TestLogger(t), db, su)
	if err != nil {
		t.Fatalf("failed to create realtime server: %v", err)
	}

	return NewTaskboardApp(http.NewServeMux(), testutil.TestLogger(t), rt, db, cfg)
}

// findCookie returns the named cookie from the recorded response, or nil.
func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func requestWithUser(method, target string, body []byte, userId int) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(WithUserId(req.Context(), userId))
}

func Test_healthCheck(t *testing.T) {
	tcases := []struct {
		name    string
		mockErr error
	}{
		{
			name:    "successful health check",
			mockErr: nil,
		},
		{
			name:    "failed health check",
			mockErr: errors.New("db error"),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockTaskboardRepository{}
			defer mockRepo.AssertExpectations(t)
			mockRepo.On("Ping", mock.Anything).Return(tc.mockErr).Once()

			app := newTestApp(t, mockRepo, &config.Config{})
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			app.healthCheck(rr, req)

			if tc.mockErr != nil {
				assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status code to be 500")
			} else {
				assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
				assert.Equal(t, "OK", rr.Body.String(), "expected response body to be 'OK'")
			}
		})
	}
}

func TestCreateAccountHandler(t *testing.T) {
	expectedAccount := database.Account{
		Id:           1,
		Username:     "newuser",
		EmailAddress: "newuser@example.com",
		PasswordHash: "hashedpassword",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	t.Run("successfully creates a new account", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("CreateAccount", mock.Anything, mock.MatchedBy(func(p database.CreateAccountParams) bool {
			return p.Username == "newuser" && p.EmailAddress == "newuser@example.com" && p.PasswordHash != ""
		})).Return(expectedAccount, nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{})

		body, _ := json.Marshal(RegisterRequest{
			Username: "newuser",
			Email:    "newuser@example.com",
			Password: "password",
		})
		rr := httptest.NewRecorder()
		app.createAccount(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code, "expected status code to be 201")

		var user types.User
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&user), "expected response to decode")
		assert.Equal(t, expectedAccount.Id, user.Id, "expected account id")
		assert.Equal(t, expectedAccount.Username, user.Username, "expected username")
		assert.Empty(t, user.Password, "expected password to be omitted")
	})

	t.Run("fails with invalid json body", func(t *testing.T) {
		app := newTestApp(t, &database.MockTaskboardRepository{}, &config.Config{})

		rr := httptest.NewRecorder()
		app.createAccount(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("invalid json")))

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status code to be 400")
	})

	t.Run("fails with missing fields", func(t *testing.T) {
		app := newTestApp(t, &database.MockTaskboardRepository{}, &config.Config{})

		body, _ := json.Marshal(RegisterRequest{Email: "newuser@example.com"})
		rr := httptest.NewRecorder()
		app.createAccount(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status code to be 400")
	})
}

func TestLoginHandler(t *testing.T) {
	pwdHash, err := hashPassword("password")
	assert.NoError(t, err, "expected no error hashing password")

	account := database.Account{
		Id:           1,
		Username:     "testuser",
		EmailAddress: "testuser@example.com",
		PasswordHash: pwdHash,
	}

	t.Run("successful login sets token cookie", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountByEmail", mock.Anything, account.EmailAddress).Return(account, nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{SigningKey: []byte("secret")})

		body, _ := json.Marshal(LoginRequest{Email: account.EmailAddress, Password: "password"})
		rr := httptest.NewRecorder()
		app.login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")

		cookie := findCookie(rr, tokenCookieKey)
		assert.NotNil(t, cookie, "expected a token cookie to be set")

		userId, err := app.extractUserIdFromToken(cookie.Value)
		assert.NoError(t, err, "expected the cookie to hold a valid token")
		assert.Equal(t, account.Id, userId, "expected token to identify the account")
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountByEmail", mock.Anything, account.EmailAddress).Return(account, nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{SigningKey: []byte("secret")})

		body, _ := json.Marshal(LoginRequest{Email: account.EmailAddress, Password: "wrong"})
		rr := httptest.NewRecorder()
		app.login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected status code to be 401")
		assert.Nil(t, findCookie(rr, tokenCookieKey), "expected no token cookie")
	})

	t.Run("unknown account", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountByEmail", mock.Anything, "nobody@example.com").Return(database.Account{}, sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo, &config.Config{SigningKey: []byte("secret")})

		body, _ := json.Marshal(LoginRequest{Email: "nobody@example.com", Password: "password"})
		rr := httptest.NewRecorder()
		app.login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, rr.Code, "expected status code to be 404")
	})
}

func TestCreateTaskHandler(t *testing.T) {
	t.Run("creates a task", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("CreateTask", mock.Anything, database.CreateTaskParams{
			ProjectId: 12,
			Title:     "write docs",
			Status:    "open",
			CreatorId: 1,
		}).Return(database.Task{
			Id:        42,
			ProjectId: 12,
			Title:     "write docs",
			Status:    "open",
			CreatorId: 1,
		}, nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{})

		body, _ := json.Marshal(CreateTaskRequest{ProjectId: 12, Title: "write docs"})
		rr := httptest.NewRecorder()
		app.createTask(rr, requestWithUser(http.MethodPost, "/api/tasks", body, 1))

		assert.Equal(t, http.StatusCreated, rr.Code, "expected status code to be 201")

		var task types.Task
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&task), "expected response to decode")
		assert.Equal(t, 42, task.Id, "expected the persisted task id")
		assert.Equal(t, "open", task.Status, "expected the default status")
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		app := newTestApp(t, &database.MockTaskboardRepository{}, &config.Config{})

		body, _ := json.Marshal(CreateTaskRequest{ProjectId: 12})
		rr := httptest.NewRecorder()
		app.createTask(rr, requestWithUser(http.MethodPost, "/api/tasks", body, 1))

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status code to be 400")
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	task := database.Task{Id: 42, ProjectId: 12, CreatorId: 1}

	t.Run("creator deletes the task", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetTaskById", mock.Anything, 42).Return(task, nil).Once()
		mockRepo.On("DeleteTask", mock.Anything, 42).Return(nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{})

		rr := httptest.NewRecorder()
		app.deleteTask(rr, requestWithUser(http.MethodDelete, "/api/tasks?id=42", nil, 1))

		assert.Equal(t, http.StatusNoContent, rr.Code, "expected status code to be 204")
	})

	t.Run("non-creator is denied", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetTaskById", mock.Anything, 42).Return(task, nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{})

		rr := httptest.NewRecorder()
		app.deleteTask(rr, requestWithUser(http.MethodDelete, "/api/tasks?id=42", nil, 2))

		assert.Equal(t, http.StatusForbidden, rr.Code, "expected status code to be 403")
	})
}

func TestUnreadCountHandler(t *testing.T) {
	mockRepo := &database.MockTaskboardRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("UnreadNotificationCount", mock.Anything, 1).Return(3, nil).Once()

	app := newTestApp(t, mockRepo, &config.Config{})

	rr := httptest.NewRecorder()
	app.unreadCount(rr, requestWithUser(http.MethodGet, "/api/notifications/unread-count", nil, 1))

	assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")

	var resp map[string]int
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "expected response to decode")
	assert.Equal(t, 3, resp["count"], "expected the ledger count")
}

func TestMarkAllNotificationsReadHandler(t *testing.T) {
	mockRepo := &database.MockTaskboardRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("MarkAllNotificationsRead", mock.Anything, 1).Return(nil).Once()
	mockRepo.On("UnreadNotificationCount", mock.Anything, 1).Return(0, nil).Once()

	app := newTestApp(t, mockRepo, &config.Config{})

	rr := httptest.NewRecorder()
	app.markAllNotificationsRead(rr, requestWithUser(http.MethodPost, "/api/notifications/read-all", nil, 1))

	assert.Equal(t, http.StatusNoContent, rr.Code, "expected status code to be 204")
}

func Test_serveWs(t *testing.T) {
	account := database.Account{
		Id:           1,
		Username:     "testuser",
		EmailAddress: "testuser@example.com",
	}

	t.Run("successful upgrade with credential", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", mock.Anything, account.Id).Return(account, nil).Once()

		app := newTestApp(t, mockRepo, &config.Config{SigningKey: []byte("secret")})

		token, err := app.createJwtForSession(account.Id, time.Hour)
		assert.NoError(t, err, "expected no error creating token")

		srv := httptest.NewServer(http.HandlerFunc(app.serveWs))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		defer func() {
			if conn != nil {
				conn.Close()
			}
		}()
		assert.NoError(t, err, "expected the upgrade to succeed")
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode, "expected protocol switch")
	})

	t.Run("anonymous admission enabled", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)

		app := newTestApp(t, mockRepo, &config.Config{AllowAnonymous: true})

		srv := httptest.NewServer(http.HandlerFunc(app.serveWs))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		defer func() {
			if conn != nil {
				conn.Close()
			}
		}()
		assert.NoError(t, err, "expected the upgrade to succeed without a credential")
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode, "expected protocol switch")
	})

	t.Run("anonymous admission disabled", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)

		app := newTestApp(t, mockRepo, &config.Config{AllowAnonymous: false})

		rr := httptest.NewRecorder()
		app.serveWs(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected status code to be 401")
	})

	t.Run("failed lookup degrades to anonymous", func(t *testing.T) {
		mockRepo := &database.MockTaskboardRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetAccountById", mock.Anything, account.Id).Return(database.Account{}, errors.New("db error")).Once()

		app := newTestApp(t, mockRepo, &config.Config{SigningKey: []byte("secret"), AllowAnonymous: true})

		token, err := app.createJwtForSession(account.Id, time.Hour)
		assert.NoError(t, err, "expected no error creating token")

		srv := httptest.NewServer(http.HandlerFunc(app.serveWs))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		defer func() {
			if conn != nil {
				conn.Close()
			}
		}()
		assert.NoError(t, err, "expected the connection to be admitted anonymously")
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode, "expected protocol switch")
	})
}
