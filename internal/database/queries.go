package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (db *PgTaskboardRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	res := db.conn.QueryRowContext(ctx,
		"INSERT INTO accounts (username, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, username, email",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
	)

	return a, err
}

func (db *PgTaskboardRepository) GetAccountById(ctx context.Context, accountId int) (Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var a Account
	err := row.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgTaskboardRepository) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var a Account
	err := row.Scan(
		&a.Id,
		&a.Username,
		&a.EmailAddress,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgTaskboardRepository) CreateProject(ctx context.Context, params CreateProjectParams) (Project, error) {
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO projects (name, description, owner_id, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, name, description, owner_id, created_at",
		params.Name,
		params.Description,
		params.OwnerId,
		time.Now().UTC(),
	)

	var p Project
	err := row.Scan(
		&p.Id,
		&p.Name,
		&p.Description,
		&p.OwnerId,
		&p.CreatedAt,
	)

	return p, err
}

func (db *PgTaskboardRepository) GetProjectById(ctx context.Context, projectId int) (Project, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, name, description, owner_id, created_at, updated_at FROM projects "+
			"WHERE id = $1 LIMIT 1",
		projectId,
	)

	var p Project
	err := row.Scan(
		&p.Id,
		&p.Name,
		&p.Description,
		&p.OwnerId,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func (db *PgTaskboardRepository) ListProjects(ctx context.Context, accountId int) ([]Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, description, owner_id, created_at, updated_at FROM projects "+
			"WHERE owner_id = $1 ORDER BY created_at",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.Id,
			&p.Name,
			&p.Description,
			&p.OwnerId,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (db *PgTaskboardRepository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO tasks (project_id, title, description, status, assignee_id, creator_id, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7) "+
			"RETURNING id, project_id, title, description, status, assignee_id, creator_id, created_at",
		params.ProjectId,
		params.Title,
		params.Description,
		params.Status,
		params.AssigneeId,
		params.CreatorId,
		time.Now().UTC(),
	)

	return scanTask(row)
}

func (db *PgTaskboardRepository) UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error) {
	row := db.conn.QueryRowContext(ctx,
		"UPDATE tasks SET title = $2, description = $3, status = $4, assignee_id = $5, updated_at = $6 "+
			"WHERE id = $1 "+
			"RETURNING id, project_id, title, description, status, assignee_id, creator_id, created_at",
		params.TaskId,
		params.Title,
		params.Description,
		params.Status,
		params.AssigneeId,
		time.Now().UTC(),
	)

	return scanTask(row)
}

func (db *PgTaskboardRepository) DeleteTask(ctx context.Context, taskId int) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", taskId)
	return err
}

func (db *PgTaskboardRepository) GetTaskById(ctx context.Context, taskId int) (Task, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, project_id, title, description, status, assignee_id, creator_id, created_at FROM tasks "+
			"WHERE id = $1 LIMIT 1",
		taskId,
	)

	return scanTask(row)
}

func (db *PgTaskboardRepository) ListTasks(ctx context.Context, projectId int) ([]Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, project_id, title, description, status, assignee_id, creator_id, created_at FROM tasks "+
			"WHERE project_id = $1 ORDER BY created_at",
		projectId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var assignee sql.NullInt64
	err := row.Scan(
		&t.Id,
		&t.ProjectId,
		&t.Title,
		&t.Description,
		&t.Status,
		&assignee,
		&t.CreatorId,
		&t.CreatedAt,
	)
	t.AssigneeId = int(assignee.Int64)

	return t, err
}

func (db *PgTaskboardRepository) CreateComment(ctx context.Context, params CreateCommentParams) (Comment, []int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Comment{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"INSERT INTO comments (task_id, account_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, task_id, account_id, content, created_at",
		params.TaskId,
		params.AccountId,
		params.Content,
		time.Now().UTC(),
	)

	var c Comment
	if err := row.Scan(
		&c.Id,
		&c.TaskId,
		&c.AccountId,
		&c.Content,
		&c.CreatedAt,
	); err != nil {
		return Comment{}, nil, err
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT username FROM accounts WHERE id = $1", c.AccountId,
	).Scan(&c.Username); err != nil {
		return Comment{}, nil, err
	}

	// notify the task's assignee and creator, excluding the comment author
	rows, err := tx.QueryContext(ctx,
		"SELECT DISTINCT watcher FROM ("+
			"SELECT assignee_id AS watcher FROM tasks WHERE id = $1 "+
			"UNION SELECT creator_id FROM tasks WHERE id = $1"+
			") w WHERE watcher IS NOT NULL AND watcher <> 0 AND watcher <> $2",
		c.TaskId,
		c.AccountId,
	)
	if err != nil {
		return Comment{}, nil, err
	}
	defer rows.Close()

	var recipients []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return Comment{}, nil, err
		}
		recipients = append(recipients, id)
	}
	if err := rows.Err(); err != nil {
		return Comment{}, nil, err
	}

	for _, accountId := range recipients {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notifications (account_id, task_id, message, is_read, created_at) "+
				"VALUES ($1, $2, $3, false, $4)",
			accountId,
			c.TaskId,
			fmt.Sprintf("%s commented on a task you watch", c.Username),
			time.Now().UTC(),
		); err != nil {
			return Comment{}, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Comment{}, nil, fmt.Errorf("commit tx: %w", err)
	}

	return c, recipients, nil
}

func (db *PgTaskboardRepository) UpdateComment(ctx context.Context, params UpdateCommentParams) (Comment, error) {
	row := db.conn.QueryRowContext(ctx,
		"UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1 "+
			"RETURNING id, task_id, account_id, content, created_at, updated_at",
		params.CommentId,
		params.Content,
		time.Now().UTC(),
	)

	var c Comment
	err := row.Scan(
		&c.Id,
		&c.TaskId,
		&c.AccountId,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

func (db *PgTaskboardRepository) DeleteComment(ctx context.Context, commentId int) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", commentId)
	return err
}

func (db *PgTaskboardRepository) GetCommentById(ctx context.Context, commentId int) (Comment, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT c.id, c.task_id, c.account_id, a.username, c.content, c.created_at FROM comments c "+
			"JOIN accounts a ON a.id = c.account_id "+
			"WHERE c.id = $1 LIMIT 1",
		commentId,
	)

	var c Comment
	err := row.Scan(
		&c.Id,
		&c.TaskId,
		&c.AccountId,
		&c.Username,
		&c.Content,
		&c.CreatedAt,
	)

	return c, err
}

func (db *PgTaskboardRepository) ListComments(ctx context.Context, taskId int) ([]Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT c.id, c.task_id, c.account_id, a.username, c.content, c.created_at FROM comments c "+
			"JOIN accounts a ON a.id = c.account_id "+
			"WHERE c.task_id = $1 ORDER BY c.created_at",
		taskId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(
			&c.Id,
			&c.TaskId,
			&c.AccountId,
			&c.Username,
			&c.Content,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (db *PgTaskboardRepository) ListNotifications(ctx context.Context, accountId int) ([]Notification, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, account_id, task_id, message, is_read, created_at FROM notifications "+
			"WHERE account_id = $1 ORDER BY created_at DESC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.Id,
			&n.AccountId,
			&n.TaskId,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (db *PgTaskboardRepository) UnreadNotificationCount(ctx context.Context, accountId int) (int, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND is_read = false",
		accountId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

func (db *PgTaskboardRepository) MarkNotificationRead(ctx context.Context, accountId, notificationId int) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE notifications SET is_read = true WHERE id = $1 AND account_id = $2",
		notificationId,
		accountId,
	)
	return err
}

func (db *PgTaskboardRepository) MarkAllNotificationsRead(ctx context.Context, accountId int) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE notifications SET is_read = true WHERE account_id = $1 AND is_read = false",
		accountId,
	)
	return err
}
