// Package auth implements registration, login, profile updates and the
// password reset flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/contracts/mq"
	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/util"
	"taskboard/pkg/metrics"
)

// UserStore is the persistence surface the service needs for users.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	UpdateUsername(ctx context.Context, id int, username string) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	ListAll(ctx context.Context) ([]model.User, error)
}

// TokenStore holds at most one live reset token per user.
type TokenStore interface {
	Replace(ctx context.Context, t *model.ResetToken) error
	Find(ctx context.Context, userID int) (*model.ResetToken, error)
	Delete(ctx context.Context, id int) error
}

// Notifier delivers reset codes out of band. Publishing is fire-and-forget:
// a delivery failure never fails the issuance.
type Notifier interface {
	Publish(routingKey string, payload any) error
}

// AttemptLimiter counts reset validation attempts per user. Nil means the
// limiter policy is off and guessing is unbounded until the code expires.
type AttemptLimiter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type Service struct {
	users       UserStore
	tokens      TokenStore
	notifier    Notifier
	limiter     AttemptLimiter
	maxAttempts int
	jwtSecret   string
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(users UserStore, tokens TokenStore, notifier Notifier, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		logger:    logger,
		now:       time.Now,
	}
}

// WithAttemptLimit turns on the reset-code attempt limiter. This is an
// explicit opt-in policy, not a default.
func (s *Service) WithAttemptLimit(limiter AttemptLimiter, maxAttempts int) *Service {
	s.limiter = limiter
	s.maxAttempts = maxAttempts
	return s
}

// Register creates a new user.
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("malformed email address")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("email already in use")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int("user_id", u.ID))
	return u, nil
}

// Login checks credentials and returns the user plus a signed JWT. The
// same generic failure covers unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return u, token, nil
}

// UpdateUser renames a user and reissues a token so the client can keep a
// fresh credential alongside the updated profile.
func (s *Service) UpdateUser(ctx context.Context, userID int, username string) (*model.User, string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperr.NotFound("user not found")
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if username != "" {
		if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
			return nil, "", fmt.Errorf("failed to update user: %w", err)
		}
		u.Username = username
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}
	return u, token, nil
}

// ListUsers returns all users, without password material.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

// ForgotPassword issues a fresh reset code for the account, invalidating
// any prior one, and hands the code to the notifier. Delivery failure is
// logged but not surfaced: the code is persisted and valid regardless.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := util.GenerateResetCode()
	if err != nil {
		return err
	}

	t := &model.ResetToken{
		UserID:    u.ID,
		Code:      code,
		ExpiresAt: s.now().Add(model.ResetTokenTTL),
	}
	if err := s.tokens.Replace(ctx, t); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, attemptKey(u.ID)); err != nil {
			s.logger.Warn("Failed to reset attempt counter", zap.Error(err))
		}
	}

	metrics.IncrementResetCode("issued")

	if s.notifier != nil {
		payload := mq.ResetCodePayload{UserID: u.ID, Email: u.Email, Code: code}
		if err := s.notifier.Publish(mq.RoutingKeyResetCode, payload); err != nil {
			metrics.IncrementNotificationPublish("failed")
			s.logger.Error("Failed to publish reset code notification",
				zap.Int("user_id", u.ID),
				zap.Error(err),
			)
		} else {
			metrics.IncrementNotificationPublish("success")
		}
	}

	return nil
}

// errInvalidOrExpired is the single rejection for mismatched and expired
// codes, so callers cannot tell a valid-but-expired code from a never-valid
// one.
func errInvalidOrExpired() error {
	return apperr.Validation("invalid or expired reset code")
}

// ResetPassword consumes a reset code: on a live matching code the password
// is replaced and the token deleted in the same operation. An expired token
// is deleted on sight, whether or not the code matched.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("new password is required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.Validation("invalid request")
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if s.limiter != nil && s.maxAttempts > 0 {
		count, err := s.limiter.IncrementAndGet(ctx, attemptKey(u.ID))
		if err != nil {
			s.logger.Warn("Attempt limiter unavailable", zap.Error(err))
		} else if count > int64(s.maxAttempts) {
			metrics.IncrementResetCode("rejected")
			return apperr.Validation("too many attempts, request a new code")
		}
	}

	t, err := s.tokens.Find(ctx, u.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.IncrementResetCode("rejected")
			return errInvalidOrExpired()
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if t.Expired(s.now()) {
		if err := s.tokens.Delete(ctx, t.ID); err != nil {
			s.logger.Error("Failed to delete expired reset token", zap.Error(err))
		}
		metrics.IncrementResetCode("rejected")
		return errInvalidOrExpired()
	}

	if t.Code != code {
		metrics.IncrementResetCode("rejected")
		return errInvalidOrExpired()
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.tokens.Delete(ctx, t.ID); err != nil {
		s.logger.Error("Failed to delete consumed reset token", zap.Error(err))
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, attemptKey(u.ID)); err != nil {
			s.logger.Warn("Failed to reset attempt counter", zap.Error(err))
		}
	}

	metrics.IncrementResetCode("consumed")
	s.logger.Info("Password reset", zap.Int("user_id", u.ID))
	return nil
}

func attemptKey(userID int) string {
	return fmt.Sprintf("reset:attempts:%d", userID)
}
