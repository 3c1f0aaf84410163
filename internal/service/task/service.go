// Package task implements task CRUD, date-window filtered listing and the
// grouped board view.
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/taskview"
	"taskboard/pkg/metrics"
)

type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id int) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id int) error
	ListVisible(ctx context.Context, userID int, from, to time.Time, windowed bool) ([]model.Task, error)
	ListByProject(ctx context.Context, projectID int) ([]model.Task, error)
}

type ProjectStore interface {
	FindByID(ctx context.Context, id int) (*model.Project, error)
}

type Service struct {
	tasks    TaskStore
	projects ProjectStore
	logger   *zap.Logger
}

func NewService(tasks TaskStore, projects ProjectStore, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, projects: projects, logger: logger}
}

// CreateInput carries the caller-settable fields of a new task. DueDate is
// optional; a task created without one stays out of the date-window views.
type CreateInput struct {
	Title           string
	Description     string
	ProjectID       *int
	DueDate         *time.Time
	CollaboratorIDs []int
}

// Create stores a new task owned by ownerID. New tasks always start in
// to-do regardless of any status the caller sends.
func (s *Service) Create(ctx context.Context, ownerID int, in CreateInput) (*model.Task, error) {
	if in.Title == "" {
		return nil, apperr.Validation("title is required")
	}

	if in.ProjectID != nil {
		p, err := s.findProject(ctx, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		if !projectVisibleTo(p, ownerID) {
			return nil, apperr.Forbidden("not a member of this project")
		}
	}

	t := &model.Task{
		OwnerID:         ownerID,
		ProjectID:       in.ProjectID,
		Title:           in.Title,
		Description:     in.Description,
		DueDate:         in.DueDate,
		Status:          model.StatusToDo,
		CollaboratorIDs: in.CollaboratorIDs,
	}
	if t.CollaboratorIDs == nil {
		t.CollaboratorIDs = []int{}
	}

	if err := s.tasks.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	scope := "personal"
	if t.ProjectID != nil {
		scope = "project"
	}
	metrics.IncrementTaskCreated(scope)
	return t, nil
}

// UpdateInput carries optional task mutations; nil fields are left alone.
type UpdateInput struct {
	Title           *string
	Description     *string
	DueDate         *time.Time
	ClearDueDate    bool
	Status          *string
	CollaboratorIDs []int
}

// Update applies changes to a task. Only the owner may update; concurrent
// updates are last-writer-wins.
func (s *Service) Update(ctx context.Context, userID, taskID int, in UpdateInput) (*model.Task, error) {
	t, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != userID {
		return nil, apperr.Forbidden("not the owner of this task")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.ClearDueDate {
		t.DueDate = nil
	} else if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Status != nil {
		t.Status = model.NormalizeStatus(*in.Status)
	}
	if in.CollaboratorIDs != nil {
		t.CollaboratorIDs = in.CollaboratorIDs
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// Delete removes a task. Owner only; deletion is immediate and
// irreversible.
func (s *Service) Delete(ctx context.Context, userID, taskID int) error {
	t, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if t.OwnerID != userID {
		return apperr.Forbidden("not the owner of this task")
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListFiltered returns the user's visible tasks restricted to a date
// window. "all" has no date predicate and includes undated and past-due
// tasks; results come back ascending by due date with undated tasks last.
func (s *Service) ListFiltered(ctx context.Context, userID int, filter string, now time.Time) ([]model.Task, error) {
	f, ok := taskview.ParseFilter(filter)
	if !ok {
		return nil, apperr.Validation("unknown filter, expected all, today, tomorrow or upcoming")
	}

	from, to, windowed := taskview.Window(now, f)
	tasks, err := s.tasks.ListVisible(ctx, userID, from, to, windowed)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	metrics.IncrementTaskList(string(f))
	return tasks, nil
}

// ListByProject returns a project's tasks for a user who can see the
// project.
func (s *Service) ListByProject(ctx context.Context, userID, projectID int) ([]model.Task, error) {
	p, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !projectVisibleTo(p, userID) {
		return nil, apperr.Forbidden("not a member of this project")
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}

// Board returns a project's tasks partitioned into the canonical status
// columns.
func (s *Service) Board(ctx context.Context, userID, projectID int) (taskview.Board, error) {
	tasks, err := s.ListByProject(ctx, userID, projectID)
	if err != nil {
		return taskview.Board{}, err
	}
	return taskview.GroupByStatus(tasks), nil
}

func (s *Service) findTask(ctx context.Context, id int) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return t, nil
}

func (s *Service) findProject(ctx context.Context, id int) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return p, nil
}

func projectVisibleTo(p *model.Project, userID int) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.CollaboratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
