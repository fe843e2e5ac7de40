package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConnectRequiresLogin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BACKEND_BASE_URL", "")

	_, err := connect()
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("connect() error = %v, want not-logged-in message", err)
	}
}

func TestConnectExpiredToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Given token is not valid for any token type"}`))
	}))
	defer backend.Close()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BACKEND_BASE_URL", "")
	if err := SaveCredentials(Credentials{
		BaseURL:     backend.URL,
		UserID:      1,
		AccessToken: "stale-token",
	}); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}

	_, err := connect()
	if err == nil || !strings.Contains(err.Error(), "stored token expired") {
		t.Errorf("connect() error = %v, want expired-token message", err)
	}
}
