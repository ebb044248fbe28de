package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTaskboardRepository struct {
	mock.Mock
}

func (m *MockTaskboardRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockTaskboardRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockTaskboardRepository) GetAccountById(ctx context.Context, accountId int) (Account, error) {
	args := m.Called(ctx, accountId)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockTaskboardRepository) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockTaskboardRepository) CreateProject(ctx context.Context, params CreateProjectParams) (Project, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) GetProjectById(ctx context.Context, projectId int) (Project, error) {
	args := m.Called(ctx, projectId)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) ListProjects(ctx context.Context, accountId int) ([]Project, error) {
	args := m.Called(ctx, accountId)
	return args.Get(0).([]Project), args.Error(1)
}
func (m *MockTaskboardRepository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Task), args.Error(1)
}
func (m *MockTaskboardRepository) UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Task), args.Error(1)
}
func (m *MockTaskboardRepository) DeleteTask(ctx context.Context, taskId int) error {
	args := m.Called(ctx, taskId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) GetTaskById(ctx context.Context, taskId int) (Task, error) {
	args := m.Called(ctx, taskId)
	return args.Get(0).(Task), args.Error(1)
}
func (m *MockTaskboardRepository) ListTasks(ctx context.Context, projectId int) ([]Task, error) {
	args := m.Called(ctx, projectId)
	return args.Get(0).([]Task), args.Error(1)
}
func (m *MockTaskboardRepository) CreateComment(ctx context.Context, params CreateCommentParams) (Comment, []int, error) {
	args := m.Called(ctx, params)
	var recipients []int
	if args.Get(1) != nil {
		recipients = args.Get(1).([]int)
	}
	return args.Get(0).(Comment), recipients, args.Error(2)
}
func (m *MockTaskboardRepository) UpdateComment(ctx context.Context, params UpdateCommentParams) (Comment, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Comment), args.Error(1)
}
func (m *MockTaskboardRepository) DeleteComment(ctx context.Context, commentId int) error {
	args := m.Called(ctx, commentId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) GetCommentById(ctx context.Context, commentId int) (Comment, error) {
	args := m.Called(ctx, commentId)
	return args.Get(0).(Comment), args.Error(1)
}
func (m *MockTaskboardRepository) ListComments(ctx context.Context, taskId int) ([]Comment, error) {
	args := m.Called(ctx, taskId)
	return args.Get(0).([]Comment), args.Error(1)
}
func (m *MockTaskboardRepository) ListNotifications(ctx context.Context, accountId int) ([]Notification, error) {
	args := m.Called(ctx, accountId)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockTaskboardRepository) UnreadNotificationCount(ctx context.Context, accountId int) (int, error) {
	args := m.Called(ctx, accountId)
	return args.Int(0), args.Error(1)
}
func (m *MockTaskboardRepository) MarkNotificationRead(ctx context.Context, accountId, notificationId int) error {
	args := m.Called(ctx, accountId, notificationId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) MarkAllNotificationsRead(ctx context.Context, accountId int) error {
	args := m.Called(ctx, accountId)
	return args.Error(0)
}
