package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "taskboard/contracts/mq"
	"taskboard/internal/mailer"
)

// ResetCodeHandler consumes reset-code events and delivers the code by email.
type ResetCodeHandler struct {
	mailer *mailer.Mailer
	logger *zap.Logger
}

func NewResetCodeHandler(m *mailer.Mailer, logger *zap.Logger) *ResetCodeHandler {
	return &ResetCodeHandler{mailer: m, logger: logger}
}

func (h *ResetCodeHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.ResetCodePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		// A malformed payload will never parse; requeueing it loops forever.
		h.logger.Error("Dropping malformed reset code payload", zap.Error(err))
		return nil
	}

	h.logger.Info("Handling reset code event",
		zap.Int("user_id", payload.UserID),
		zap.String("email", payload.Email),
	)

	if err := h.mailer.SendResetCode(payload.Email, payload.Code); err != nil {
		return fmt.Errorf("failed to deliver reset code for user %d: %w", payload.UserID, err)
	}
	return nil
}
