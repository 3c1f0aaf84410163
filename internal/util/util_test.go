package util

import (
	"net/http"
	"strconv"
	"testing"
)

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateJWT(42, secret)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateJWT() returned empty token")
	}

	userID, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("ParseJWT() userID = %d, want 42", userID)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(7, "secret-a")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	if _, err := ParseJWT(token, "secret-b"); err == nil {
		t.Error("ParseJWT() with wrong secret: expected error, got nil")
	}
}

func TestParseJWTMalformed(t *testing.T) {
	if _, err := ParseJWT("not.a.token", "secret"); err == nil {
		t.Error("ParseJWT() with malformed token: expected error, got nil")
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token part", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := ExtractToken(r); got != tt.want {
				t.Errorf("ExtractToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter22" {
		t.Error("HashPassword() returned plaintext")
	}

	if !CheckPassword("hunter22", hash) {
		t.Error("CheckPassword() with correct password = false, want true")
	}
	if CheckPassword("hunter23", hash) {
		t.Error("CheckPassword() with wrong password = true, want false")
	}
}

func TestGenerateResetCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateResetCode()
		if err != nil {
			t.Fatalf("GenerateResetCode() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("GenerateResetCode() = %q, want 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("GenerateResetCode() = %q, not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Errorf("GenerateResetCode() = %d, out of range [100000, 999999]", n)
		}
	}
}
