package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"milty-server/internal/milty"
	"milty-server/internal/shared/config"
	"milty-server/internal/shared/response"
	"milty-server/internal/tile"
)

func newTestHandler(t *testing.T) *MiltyHandler {
	t.Helper()

	catalog, err := tile.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	presets, err := milty.NewPresets()
	if err != nil {
		t.Fatalf("NewPresets() error = %v", err)
	}
	cfg := config.MiltyConfig{MaxAttempts: 500, MaxBalancingAttempts: 100, RecentDraftsLimit: 10}
	svc := milty.NewService(tile.NewService(catalog, slog.Default()), presets, nil, nil, cfg, slog.Default())
	return NewMiltyHandler(svc)
}

func TestGenerate(t *testing.T) {
	h := newTestHandler(t)

	body := `{
		"seed": 99,
		"settings": {
			"slice_count": 4,
			"wormholes": {"max_per_slice": 1},
			"legendaries": {"min": 0},
			"planet_systems": {"min": 2, "max": 4},
			"optimal": {"max_total": 30},
			"sources": ["base", "pok"],
			"balance": {"enabled": true, "target_ratio": 0.5}
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/milty/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var draft struct {
		ID     string `json:"id"`
		Seed   int64  `json:"seed"`
		Slices []struct {
			SystemIDs []string `json:"system_ids"`
			Score     float64  `json:"score"`
		} `json:"slices"`
		Board struct {
			Slots [][]string `json:"slots"`
		} `json:"board"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&draft); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if draft.Seed != 99 || len(draft.Slices) != 4 || len(draft.Board.Slots) != 4 {
		t.Errorf("draft = %+v", draft)
	}
	for i, s := range draft.Slices {
		if len(s.SystemIDs) != milty.SliceSize {
			t.Errorf("slice %d has %d systems", i, len(s.SystemIDs))
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantType   string
	}{
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed, wantType: "method_not_allowed"},
		{name: "malformed body", method: http.MethodPost, body: `{"preset":`, wantStatus: http.StatusBadRequest, wantType: "validation"},
		{name: "unknown preset", method: http.MethodPost, body: `{"preset":"mystery"}`, wantStatus: http.StatusBadRequest, wantType: "validation"},
		{
			name:       "unsatisfiable bounds",
			method:     http.MethodPost,
			body:       `{"seed":1,"settings":{"slice_count":3,"wormholes":{"max_per_slice":2},"planet_systems":{"min":3,"max":4},"optimal":{"min_total":40,"max_total":50},"sources":["base"],"max_attempts":2,"max_slice_attempts":2}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "generation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			req := httptest.NewRequest(tt.method, "/api/milty/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Generate(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp response.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Error != tt.wantType {
				t.Errorf("error type = %q, want %q", resp.Error, tt.wantType)
			}
		})
	}
}

func TestGetDraftValidatesID(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/milty/drafts/{id}", h.GetDraft)

	tests := []struct {
		id         string
		wantStatus int
	}{
		{id: "not-a-uuid", wantStatus: http.StatusBadRequest},
		{id: "7f1b7a52-3d3e-4b5c-9d0e-2f1a2b3c4d5e", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/milty/drafts/"+tt.id, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestListEndpoints(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, body []byte)
	}{
		{
			name:    "presets",
			handler: h.Presets,
			check: func(t *testing.T, body []byte) {
				var presets []milty.Preset
				if err := json.Unmarshal(body, &presets); err != nil {
					t.Fatal(err)
				}
				if len(presets) != 3 || presets[0].Name != milty.PresetStandard {
					t.Errorf("presets = %+v", presets)
				}
			},
		},
		{
			name:    "defaults",
			handler: h.Defaults,
			check: func(t *testing.T, body []byte) {
				var d milty.Defaults
				if err := json.Unmarshal(body, &d); err != nil {
					t.Fatal(err)
				}
				if d.Settings.SliceCount != 6 || d.Settings.MaxAttempts != 500 {
					t.Errorf("defaults = %+v", d.Settings)
				}
			},
		},
		{
			name:    "drafts",
			handler: h.ListDrafts,
			check: func(t *testing.T, body []byte) {
				if strings.TrimSpace(string(body)) != "[]" {
					t.Errorf("drafts = %s, want []", body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			tt.check(t, rec.Body.Bytes())

			rec = httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("POST status = %d, want 405", rec.Code)
			}
		})
	}
}
