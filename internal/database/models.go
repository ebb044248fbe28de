package database

import "time"

type Account struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	Id          int
	Name        string
	Description string
	OwnerId     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Task struct {
	Id          int
	ProjectId   int
	Title       string
	Description string
	Status      string
	AssigneeId  int
	CreatorId   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Comment struct {
	Id        int
	TaskId    int
	AccountId int
	Username  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Notification struct {
	Id        int
	AccountId int
	TaskId    int
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type CreateProjectParams struct {
	Name        string
	Description string
	OwnerId     int
}

type CreateTaskParams struct {
	ProjectId   int
	Title       string
	Description string
	Status      string
	AssigneeId  int
	CreatorId   int
}

type UpdateTaskParams struct {
	TaskId      int
	Title       string
	Description string
	Status      string
	AssigneeId  int
}

type CreateCommentParams struct {
	TaskId    int
	AccountId int
	Content   string
}

type UpdateCommentParams struct {
	CommentId int
	Content   string
}
