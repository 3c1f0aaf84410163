package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/metrics"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int("owner_id", t.OwnerID),
		zap.String("title", t.Title),
		zap.String("status", string(t.Status)),
	)
	query := `
        INSERT INTO tasks (owner_id, project_id, title, description, due_date, status, collaborators)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.OwnerID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.DueDate,
		string(t.Status),
		t.CollaboratorIDs,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("owner_id", t.OwnerID),
		)
		return err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("owner_id", t.OwnerID),
	)
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, owner_id, project_id, title, description, due_date, status, collaborators, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.OwnerID, &t.ProjectID, &t.Title, &t.Description,
		&t.DueDate, &status, &t.CollaboratorIDs, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = model.NormalizeStatus(status)
	return &t, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET title = $2, description = $3, due_date = $4, status = $5, collaborators = $6, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.DueDate, string(t.Status), t.CollaboratorIDs,
	).Scan(&t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}
	r.logger.Info("Task updated successfully", zap.Int("task_id", t.ID))
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return err
	}
	r.logger.Info("Task deleted",
		zap.Int("task_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ListVisible returns tasks owned by or shared with the user, optionally
// restricted to a due-date window [from, to). A zero "to" leaves the window
// open-ended. Dated tasks come back ascending by due date; undated ones
// (only possible without a window) sort last in insertion order.
func (r *TaskRepository) ListVisible(ctx context.Context, userID int, from, to time.Time, windowed bool) ([]model.Task, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("list_visible", "tasks", time.Since(start))
	}()

	r.logger.Debug("Listing tasks for user",
		zap.Int("user_id", userID),
		zap.Bool("windowed", windowed),
	)

	query := `
        SELECT id, owner_id, project_id, title, description, due_date, status, collaborators, created_at, updated_at
        FROM tasks
        WHERE (owner_id = $1 OR $1 = ANY(collaborators))
    `
	args := []any{userID}
	if windowed {
		query += ` AND due_date >= $2`
		args = append(args, from)
		if !to.IsZero() {
			query += ` AND due_date < $3`
			args = append(args, to)
		}
	}
	query += ` ORDER BY due_date ASC NULLS LAST, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListByProject returns a project's tasks, ordered like ListVisible.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("list_by_project", "tasks", time.Since(start))
	}()

	query := `
        SELECT id, owner_id, project_id, title, description, due_date, status, collaborators, created_at, updated_at
        FROM tasks
        WHERE project_id = $1
        ORDER BY due_date ASC NULLS LAST, id ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query project tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]model.Task, error) {
	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var status string
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.ProjectID, &t.Title, &t.Description,
			&t.DueDate, &status, &t.CollaboratorIDs, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		t.Status = model.NormalizeStatus(status)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
