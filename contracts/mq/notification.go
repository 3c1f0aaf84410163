package mq

// Routing keys for notification events.
const (
	RoutingKeyResetCode = "notification.reset_code"
)

// ResetCodePayload is published when a password reset code is issued. The
// notifier delivers the code to the user out of band; delivery is
// fire-and-forget and the code stays valid even if delivery fails.
type ResetCodePayload struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Code   string `json:"code"`
}
