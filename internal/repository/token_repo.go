package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type TokenRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTokenRepository(db *pgxpool.Pool, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{db: db, logger: logger}
}

// Replace deletes any live reset token for the user and inserts a fresh
// one, keeping at most one token per user. Prior codes become invalid
// immediately even if unexpired.
func (r *TokenRepository) Replace(ctx context.Context, t *model.ResetToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reset_tokens WHERE user_id = $1`, t.UserID); err != nil {
		r.logger.Error("Failed to delete prior reset tokens",
			zap.Error(err),
			zap.Int("user_id", t.UserID),
		)
		return err
	}

	query := `
        INSERT INTO reset_tokens (user_id, code, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `
	if err := tx.QueryRow(ctx, query, t.UserID, t.Code, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt); err != nil {
		r.logger.Error("Failed to insert reset token",
			zap.Error(err),
			zap.Int("user_id", t.UserID),
		)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Reset token issued",
		zap.Int("user_id", t.UserID),
		zap.Time("expires_at", t.ExpiresAt),
	)
	return nil
}

// Find returns the live reset token for a user, if any.
func (r *TokenRepository) Find(ctx context.Context, userID int) (*model.ResetToken, error) {
	query := `
        SELECT id, user_id, code, expires_at, created_at
        FROM reset_tokens
        WHERE user_id = $1
    `
	var t model.ResetToken
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&t.ID, &t.UserID, &t.Code, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a token by id.
func (r *TokenRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE id = $1`, id)
	return err
}

// DeleteExpired removes every token past its expiry and returns how many
// were swept.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE expires_at < $1`, now)
	if err != nil {
		r.logger.Error("Failed to delete expired reset tokens", zap.Error(err))
		return 0, err
	}
	return result.RowsAffected(), nil
}
