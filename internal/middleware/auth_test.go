package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"milty-server/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mustToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateJWT(testSecret, "tester", role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	return token
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		setup      func(t *testing.T, r *http.Request)
		wantStatus int
	}{
		{
			name:       "admin bearer token",
			secret:     testSecret,
			setup:      func(t *testing.T, r *http.Request) { r.Header.Set("Authorization", "Bearer "+mustToken(t, auth.RoleAdmin)) },
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "admin cookie",
			secret: testSecret,
			setup: func(t *testing.T, r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "auth_token", Value: mustToken(t, auth.RoleAdmin)})
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "viewer token",
			secret:     testSecret,
			setup:      func(t *testing.T, r *http.Request) { r.Header.Set("Authorization", "Bearer "+mustToken(t, auth.RoleViewer)) },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no token",
			secret:     testSecret,
			setup:      func(t *testing.T, r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad token",
			secret:     testSecret,
			setup:      func(t *testing.T, r *http.Request) { r.Header.Set("Authorization", "Bearer junk") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "auth not configured",
			secret:     "",
			setup:      func(t *testing.T, r *http.Request) { r.Header.Set("Authorization", "Bearer "+mustToken(t, auth.RoleAdmin)) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if GetUserFromContext(r) == nil {
					t.Error("claims missing from context")
				}
				w.WriteHeader(http.StatusNoContent)
			})
			handler := NewAuthenticator(tt.secret).RequireAdmin(next)

			req := httptest.NewRequest(http.MethodDelete, "/api/milty/drafts/x", nil)
			tt.setup(t, req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAdminMiddlewareWithoutClaims(t *testing.T) {
	handler := AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without claims")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
