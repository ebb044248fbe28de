package database

import "context"

// TaskboardRepository is the persistence collaborator. It owns all durable
// state; the realtime engine only reads through it and requests mutations
// through it.
type TaskboardRepository interface {
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error)
	GetAccountById(ctx context.Context, accountId int) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)

	CreateProject(ctx context.Context, params CreateProjectParams) (Project, error)
	GetProjectById(ctx context.Context, projectId int) (Project, error)
	ListProjects(ctx context.Context, accountId int) ([]Project, error)

	CreateTask(ctx context.Context, params CreateTaskParams) (Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error)
	DeleteTask(ctx context.Context, taskId int) error
	GetTaskById(ctx context.Context, taskId int) (Task, error)
	ListTasks(ctx context.Context, projectId int) ([]Task, error)

	// CreateComment inserts the comment and a notification row for every
	// account watching the task (assignee and creator, minus the author).
	// The returned slice holds the account ids whose notification ledger
	// changed.
	CreateComment(ctx context.Context, params CreateCommentParams) (Comment, []int, error)
	UpdateComment(ctx context.Context, params UpdateCommentParams) (Comment, error)
	DeleteComment(ctx context.Context, commentId int) error
	GetCommentById(ctx context.Context, commentId int) (Comment, error)
	ListComments(ctx context.Context, taskId int) ([]Comment, error)

	ListNotifications(ctx context.Context, accountId int) ([]Notification, error)
	UnreadNotificationCount(ctx context.Context, accountId int) (int, error)
	MarkNotificationRead(ctx context.Context, accountId, notificationId int) error
	MarkAllNotificationsRead(ctx context.Context, accountId int) error
}
