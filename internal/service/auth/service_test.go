package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/util"
)

type fakeUserStore struct {
	byEmail map[string]*model.User
	byID    map[int]*model.User
	nextID  int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: map[string]*model.User{},
		byID:    map[int]*model.User{},
		nextID:  1,
	}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id int) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) UpdateUsername(_ context.Context, id int, username string) error {
	f.byID[id].Username = username
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id int, hash string) error {
	f.byID[id].PasswordHash = hash
	return nil
}

func (f *fakeUserStore) ListAll(_ context.Context) ([]model.User, error) {
	users := []model.User{}
	for _, u := range f.byID {
		users = append(users, *u)
	}
	return users, nil
}

type fakeTokenStore struct {
	byUser map[int]*model.ResetToken
	nextID int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byUser: map[int]*model.ResetToken{}, nextID: 1}
}

func (f *fakeTokenStore) Replace(_ context.Context, t *model.ResetToken) error {
	t.ID = f.nextID
	f.nextID++
	f.byUser[t.UserID] = t
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, userID int) (*model.ResetToken, error) {
	t, ok := f.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, id int) error {
	for userID, t := range f.byUser {
		if t.ID == id {
			delete(f.byUser, userID)
		}
	}
	return nil
}

type fakeNotifier struct {
	published []string
	fail      bool
}

func (f *fakeNotifier) Publish(routingKey string, payload any) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	f.published = append(f.published, routingKey)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeTokenStore, *fakeNotifier) {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	notifier := &fakeNotifier{}
	svc := NewService(users, tokens, notifier, "test-secret", zap.NewNop())
	return svc, users, tokens, notifier
}

func registerUser(t *testing.T, svc *Service) *model.User {
	t.Helper()
	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return u
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	registerUser(t, svc)

	_, err := svc.Register(context.Background(), "bob", "alice@example.com", "pw123456")
	if err == nil {
		t.Fatal("Register() with duplicate email: expected error, got nil")
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("Register() error kind = %v, want Conflict", apperr.KindOf(err))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"missing username", "", "a@example.com", "pw"},
		{"missing email", "alice", "", "pw"},
		{"missing password", "alice", "a@example.com", ""},
		{"malformed email", "alice", "not-an-email", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("Register() error kind = %v, want Validation", apperr.KindOf(err))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	u := registerUser(t, svc)

	got, token, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Login() user ID = %d, want %d", got.ID, u.ID)
	}

	userID, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if userID != u.ID {
		t.Errorf("token user ID = %d, want %d", userID, u.ID)
	}
}

func TestLoginGenericFailure(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	registerUser(t, svc)

	cases := []struct{ email, password string }{
		{"alice@example.com", "wrong-password"},
		{"nobody@example.com", "hunter22"},
	}
	var messages []string
	for _, c := range cases {
		_, _, err := svc.Login(context.Background(), c.email, c.password)
		if err == nil {
			t.Fatalf("Login(%q) error = nil, want failure", c.email)
		}
		if apperr.KindOf(err) != apperr.KindUnauthorized {
			t.Errorf("Login(%q) error kind = %v, want Unauthorized", c.email, apperr.KindOf(err))
		}
		messages = append(messages, apperr.PublicMessage(err))
	}
	// Wrong password and unknown email must be indistinguishable.
	if messages[0] != messages[1] {
		t.Errorf("login failures differ: %q vs %q", messages[0], messages[1])
	}
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	svc, _, tokens, notifier := newTestService(t)
	u := registerUser(t, svc)

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}

	tok, err := tokens.Find(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("expected live token, got %v", err)
	}
	if len(tok.Code) != 6 {
		t.Errorf("code = %q, want 6 digits", tok.Code)
	}
	wantExpiry := time.Now().Add(model.ResetTokenTTL)
	if d := wantExpiry.Sub(tok.ExpiresAt); d < -time.Minute || d > time.Minute {
		t.Errorf("ExpiresAt = %v, want ~%v", tok.ExpiresAt, wantExpiry)
	}
	if len(notifier.published) != 1 {
		t.Errorf("published %d notifications, want 1", len(notifier.published))
	}
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("ForgotPassword() error kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestForgotPasswordDeliveryFailureIsNonFatal(t *testing.T) {
	svc, _, tokens, notifier := newTestService(t)
	u := registerUser(t, svc)
	notifier.fail = true

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() with failing notifier error = %v, want nil", err)
	}
	if _, err := tokens.Find(context.Background(), u.ID); err != nil {
		t.Error("token should be persisted and valid despite delivery failure")
	}
}

func TestResetPasswordConsumesToken(t *testing.T) {
	svc, users, tokens, _ := newTestService(t)
	u := registerUser(t, svc)

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	tok, _ := tokens.Find(context.Background(), u.ID)

	if err := svc.ResetPassword(context.Background(), u.Email, tok.Code, "new-password"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	// Token is consumed in the same operation.
	if _, err := tokens.Find(context.Background(), u.ID); err == nil {
		t.Error("token still present after successful reset")
	}

	// New password works, old one does not.
	fresh, _ := users.FindByID(context.Background(), u.ID)
	if !util.CheckPassword("new-password", fresh.PasswordHash) {
		t.Error("new password does not verify")
	}
	if util.CheckPassword("hunter22", fresh.PasswordHash) {
		t.Error("old password still verifies")
	}
}

func TestResetPasswordSecondIssueInvalidatesFirst(t *testing.T) {
	svc, _, tokens, _ := newTestService(t)
	u := registerUser(t, svc)

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	first, _ := tokens.Find(context.Background(), u.ID)
	firstCode := first.Code

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("second ForgotPassword() error = %v", err)
	}
	second, _ := tokens.Find(context.Background(), u.ID)

	if firstCode == second.Code {
		t.Skip("codes collided; cannot distinguish first from second")
	}

	// The first code has not chronologically expired but must now fail.
	err := svc.ResetPassword(context.Background(), u.Email, firstCode, "new-password")
	if err == nil {
		t.Fatal("first code accepted after second was issued")
	}
	if apperr.PublicMessage(err) != "invalid or expired reset code" {
		t.Errorf("message = %q, want the generic invalid-or-expired message", apperr.PublicMessage(err))
	}

	// The second code still works.
	if err := svc.ResetPassword(context.Background(), u.Email, second.Code, "new-password"); err != nil {
		t.Errorf("second code rejected: %v", err)
	}
}

func TestResetPasswordExpiredTokenDeleted(t *testing.T) {
	svc, _, tokens, _ := newTestService(t)
	u := registerUser(t, svc)

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	tok, _ := tokens.Find(context.Background(), u.ID)

	// Advance the clock to 15 minutes + 1 second after issuance.
	svc.now = func() time.Time { return tok.ExpiresAt.Add(time.Second) }

	err := svc.ResetPassword(context.Background(), u.Email, tok.Code, "new-password")
	if err == nil {
		t.Fatal("expired code accepted")
	}
	if apperr.PublicMessage(err) != "invalid or expired reset code" {
		t.Errorf("message = %q, want the generic invalid-or-expired message", apperr.PublicMessage(err))
	}
	if _, err := tokens.Find(context.Background(), u.ID); err == nil {
		t.Error("expired token not deleted on lookup")
	}
}

func TestResetPasswordMismatchSameMessageAsExpired(t *testing.T) {
	svc, _, tokens, _ := newTestService(t)
	u := registerUser(t, svc)

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	tok, _ := tokens.Find(context.Background(), u.ID)

	wrong := "000000"
	if wrong == tok.Code {
		wrong = "000001"
	}
	err := svc.ResetPassword(context.Background(), u.Email, wrong, "new-password")
	if err == nil {
		t.Fatal("wrong code accepted")
	}
	if apperr.PublicMessage(err) != "invalid or expired reset code" {
		t.Errorf("message = %q, want the generic invalid-or-expired message", apperr.PublicMessage(err))
	}

	// A mismatch does not consume the live token.
	if _, err := tokens.Find(context.Background(), u.ID); err != nil {
		t.Error("live token deleted on mismatch")
	}
}

type fakeLimiter struct {
	counts map[string]int64
}

func (f *fakeLimiter) IncrementAndGet(_ context.Context, key string) (int64, error) {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	delete(f.counts, key)
	return nil
}

func TestResetPasswordAttemptLimit(t *testing.T) {
	svc, _, tokens, _ := newTestService(t)
	svc.WithAttemptLimit(&fakeLimiter{}, 3)
	u := registerUser(t, svc)

	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	tok, _ := tokens.Find(context.Background(), u.ID)

	wrong := "000000"
	if wrong == tok.Code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		if err := svc.ResetPassword(context.Background(), u.Email, wrong, "pw"); err == nil {
			t.Fatal("wrong code accepted")
		}
	}

	// Attempt four is blocked even with the correct code.
	err := svc.ResetPassword(context.Background(), u.Email, tok.Code, "pw")
	if err == nil {
		t.Fatal("limiter did not block fourth attempt")
	}

	// A fresh issuance resets the counter.
	if err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	tok, _ = tokens.Find(context.Background(), u.ID)
	if err := svc.ResetPassword(context.Background(), u.Email, tok.Code, "pw123456"); err != nil {
		t.Errorf("reset after fresh issuance failed: %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	u := registerUser(t, svc)

	got, token, err := svc.UpdateUser(context.Background(), u.ID, "alice2")
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if got.Username != "alice2" {
		t.Errorf("Username = %q, want %q", got.Username, "alice2")
	}
	if token == "" {
		t.Error("UpdateUser() returned empty token")
	}

	_, _, err = svc.UpdateUser(context.Background(), 999, "ghost")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("UpdateUser(unknown) error kind = %v, want NotFound", apperr.KindOf(err))
	}
}
