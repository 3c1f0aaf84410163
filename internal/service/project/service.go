// Package project implements project CRUD and per-user listing.
package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	FindByID(ctx context.Context, id int) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int) error
	ListVisible(ctx context.Context, userID int) ([]model.Project, error)
}

type Service struct {
	projects ProjectStore
	logger   *zap.Logger
}

func NewService(projects ProjectStore, logger *zap.Logger) *Service {
	return &Service{projects: projects, logger: logger}
}

type CreateInput struct {
	Title           string
	Description     string
	CollaboratorIDs []int
}

func (s *Service) Create(ctx context.Context, ownerID int, in CreateInput) (*model.Project, error) {
	if in.Title == "" {
		return nil, apperr.Validation("title is required")
	}

	p := &model.Project{
		OwnerID:         ownerID,
		Title:           in.Title,
		Description:     in.Description,
		CollaboratorIDs: in.CollaboratorIDs,
	}
	if p.CollaboratorIDs == nil {
		p.CollaboratorIDs = []int{}
	}

	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return p, nil
}

type UpdateInput struct {
	Title           *string
	Description     *string
	CollaboratorIDs []int
}

func (s *Service) Update(ctx context.Context, userID, projectID int, in UpdateInput) (*model.Project, error) {
	p, err := s.find(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, apperr.Forbidden("not the owner of this project")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.CollaboratorIDs != nil {
		p.CollaboratorIDs = in.CollaboratorIDs
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, projectID int) error {
	p, err := s.find(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		return apperr.Forbidden("not the owner of this project")
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListForUser returns projects the user owns or collaborates on.
func (s *Service) ListForUser(ctx context.Context, userID int) ([]model.Project, error) {
	projects, err := s.projects.ListVisible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) find(ctx context.Context, id int) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return p, nil
}
