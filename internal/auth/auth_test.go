package auth

import (
	"errors"
	"testing"

	"github.com/deepthink-labs/deepthink-engine/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		Email:    "user@deepthink.com",
		Password: "password",
		Token:    "dummy.jwt.token",
	}
}

func TestLogin(t *testing.T) {
	svc := NewService(testConfig())

	resp, err := svc.Login("user@deepthink.com", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token != "dummy.jwt.token" {
		t.Errorf("unexpected token: %s", resp.Token)
	}
	if resp.User == nil || resp.User.Email != "user@deepthink.com" {
		t.Errorf("unexpected user: %+v", resp.User)
	}
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	svc := NewService(testConfig())

	cases := []struct{ email, password string }{
		{"user@deepthink.com", "wrong"},
		{"other@deepthink.com", "password"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q): expected ErrInvalidCredentials, got %v", tc.email, tc.password, err)
		}
	}
	if svc.Token() != "" {
		t.Error("token must be empty before a successful login")
	}
}

func TestTokenLifecycle(t *testing.T) {
	svc := NewService(testConfig())

	if _, err := svc.Login("user@deepthink.com", "password"); err != nil {
		t.Fatal(err)
	}
	if svc.Token() != "dummy.jwt.token" {
		t.Error("token missing while authenticated")
	}

	svc.Logout()
	if svc.Token() != "" {
		t.Error("token must be empty after logout")
	}

	// The fixed token still validates bearer headers regardless of the
	// in-process login flag.
	if !svc.ValidToken("dummy.jwt.token") {
		t.Error("fixed token should validate")
	}
	if svc.ValidToken("forged") || svc.ValidToken("") {
		t.Error("foreign tokens must not validate")
	}
}
