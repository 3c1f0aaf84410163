package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (owner_id, title, description, collaborators)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		p.OwnerID, p.Title, p.Description, p.CollaboratorIDs,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.Int("owner_id", p.OwnerID),
		)
		return err
	}
	r.logger.Info("Project inserted successfully",
		zap.Int("project_id", p.ID),
		zap.Int("owner_id", p.OwnerID),
	)
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, owner_id, title, description, collaborators, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description,
		&p.CollaboratorIDs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET title = $2, description = $3, collaborators = $4, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		p.ID, p.Title, p.Description, p.CollaboratorIDs,
	).Scan(&p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to update project",
			zap.Error(err),
			zap.Int("project_id", p.ID),
		)
		return err
	}
	r.logger.Info("Project updated successfully", zap.Int("project_id", p.ID))
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete project",
			zap.Error(err),
			zap.Int("project_id", id),
		)
		return err
	}
	r.logger.Info("Project deleted",
		zap.Int("project_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ListVisible returns projects the user owns or collaborates on.
func (r *ProjectRepository) ListVisible(ctx context.Context, userID int) ([]model.Project, error) {
	query := `
        SELECT id, owner_id, title, description, collaborators, created_at, updated_at
        FROM projects
        WHERE owner_id = $1 OR $1 = ANY(collaborators)
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query projects",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Title, &p.Description,
			&p.CollaboratorIDs, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
