package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"milty-server/internal/auth"
	"milty-server/internal/shared/cookies"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testOptions() cookies.Options {
	return cookies.Options{FrontendURL: "https://draft.example.com", SameSite: "strict", MaxAge: 24 * time.Hour}
}

func TestSessionLogin(t *testing.T) {
	token, err := auth.GenerateJWT(testSecret, "ops", auth.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	h := NewSessionHandler(testSecret, testOptions())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	res := rec.Result()
	defer res.Body.Close()

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == cookies.AuthCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("auth cookie not set")
	}
	if cookie.Value != token || !cookie.HttpOnly || cookie.Domain != "draft.example.com" {
		t.Errorf("cookie = %+v", cookie)
	}
	if cookie.MaxAge <= 0 || cookie.MaxAge > int(time.Hour.Seconds()) {
		t.Errorf("MaxAge = %d, want at most the token lifetime", cookie.MaxAge)
	}
}

func TestSessionLoginRejects(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
	}{
		{name: "no header", secret: testSecret},
		{name: "not bearer", secret: testSecret, header: "Basic abc"},
		{name: "invalid token", secret: testSecret, header: "Bearer junk"},
		{name: "not configured", secret: "", header: "Bearer junk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewSessionHandler(tt.secret, testOptions()).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestSessionLogout(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSessionHandler(testSecret, testOptions()).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/session", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookies.AuthCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("auth cookie not cleared")
	}
}

func TestSessionMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSessionHandler(testSecret, testOptions()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/session", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
