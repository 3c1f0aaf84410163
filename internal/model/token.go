package model

import "time"

// ResetTokenTTL is how long a password reset code stays valid.
const ResetTokenTTL = 15 * time.Minute

// ResetToken is a single-use password reset code. At most one live token
// exists per user: issuing a new one deletes any prior token first.
type ResetToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token has passed its expiry at the given moment.
func (t *ResetToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
