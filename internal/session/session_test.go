package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	codec, err := NewTokenCodec(strings.Repeat("s", 32))
	if err != nil {
		t.Fatalf("failed to create token codec: %v", err)
	}
	return NewManager(NewMemoryStore(), codec, false)
}

func requestWithCookies(t *testing.T, recorder *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestManager_CreateAndGetSession(t *testing.T) {
	t.Parallel()

	manager := testManager(t)
	recorder := httptest.NewRecorder()

	data := &Data{UserID: "1462605560", Username: "nexusfan", AvatarURL: "https://cdn.discordapp.com/embed/avatars/0.png"}
	if _, err := manager.CreateSession(context.Background(), recorder, data); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	req := requestWithCookies(t, recorder)
	got, err := manager.GetSession(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.UserID != data.UserID || got.Username != data.Username {
		t.Fatalf("unexpected session data: %+v", got)
	}
	if got.CreatedAt == 0 {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestManager_RejectsForgedCookie(t *testing.T) {
	t.Parallel()

	manager := testManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "not-a-signed-token"})

	if _, err := manager.GetSession(context.Background(), req); err == nil {
		t.Fatal("expected error for forged cookie, got nil")
	}
}

func TestManager_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	t.Parallel()

	manager := testManager(t)

	otherCodec, err := NewTokenCodec(strings.Repeat("x", 32))
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	token, err := otherCodec.Sign("some-session-id", time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})

	if _, err := manager.GetSession(context.Background(), req); err == nil {
		t.Fatal("expected error for token signed with another secret, got nil")
	}
}

func TestManager_DestroySession(t *testing.T) {
	t.Parallel()

	manager := testManager(t)
	recorder := httptest.NewRecorder()

	if _, err := manager.CreateSession(context.Background(), recorder, &Data{UserID: "u1"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	req := requestWithCookies(t, recorder)
	destroyRecorder := httptest.NewRecorder()
	if err := manager.DestroySession(context.Background(), destroyRecorder, req); err != nil {
		t.Fatalf("failed to destroy session: %v", err)
	}

	if _, err := manager.GetSession(context.Background(), req); err == nil {
		t.Fatal("expected error after destroy, got nil")
	}

	cookies := destroyRecorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected clearing cookie, got %+v", cookies)
	}
}

func TestManager_Middleware(t *testing.T) {
	t.Parallel()

	manager := testManager(t)
	recorder := httptest.NewRecorder()
	if _, err := manager.CreateSession(context.Background(), recorder, &Data{UserID: "u1"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	var seen *Data
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithCookies(t, recorder))
	if seen == nil || seen.UserID != "u1" {
		t.Fatalf("expected session in context, got %+v", seen)
	}

	seen = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != nil {
		t.Fatalf("expected no session without cookie, got %+v", seen)
	}
}

func TestNewTokenCodec_ShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenCodec("short"); err == nil {
		t.Fatal("expected error for short secret, got nil")
	}
}
