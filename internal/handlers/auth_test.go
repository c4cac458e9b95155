package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexusapp/nexus/internal/ledger"
)

func TestLogin_RedirectsToDiscord(t *testing.T) {
	t.Parallel()

	h, _, _ := testHandlers(t, ledger.DefaultStartingBalance)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Login status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	location := rec.Header().Get("Location")
	if !strings.Contains(location, "discord.com") {
		t.Errorf("Location = %q, want a discord.com URL", location)
	}
	if !strings.Contains(location, "client_id=client-id") {
		t.Errorf("Location = %q, want client_id present", location)
	}
	if !strings.Contains(location, "state=") {
		t.Errorf("Location = %q, want state present", location)
	}
}

func TestCallback_MissingCode(t *testing.T) {
	t.Parallel()

	h, _, _ := testHandlers(t, ledger.DefaultStartingBalance)

	rec := httptest.NewRecorder()
	h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Callback status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if got, want := rec.Header().Get("Location"), "http://localhost:5500?error=no_code"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestCallback_UnknownState(t *testing.T) {
	t.Parallel()

	h, _, _ := testHandlers(t, ledger.DefaultStartingBalance)

	rec := httptest.NewRecorder()
	h.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=forged", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Callback status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if got, want := rec.Header().Get("Location"), "http://localhost:5500?error=oauth_failed"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestFrontendRedirectURL(t *testing.T) {
	t.Parallel()

	h, _, _ := testHandlers(t, ledger.DefaultStartingBalance)

	tests := []struct {
		marker string
		want   string
	}{
		{marker: "login=success", want: "http://localhost:5500?login=success"},
		{marker: "error=no_code", want: "http://localhost:5500?error=no_code"},
		{marker: "error=oauth_failed", want: "http://localhost:5500?error=oauth_failed"},
	}
	for _, tt := range tests {
		if got := h.frontendRedirectURL(tt.marker); got != tt.want {
			t.Errorf("frontendRedirectURL(%q) = %q, want %q", tt.marker, got, tt.want)
		}
	}
}
