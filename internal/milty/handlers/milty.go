package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"milty-server/internal/milty"
	"milty-server/internal/shared/errors"
	"milty-server/internal/shared/response"
)

type MiltyHandler struct {
	service *milty.Service
}

func NewMiltyHandler(service *milty.Service) *MiltyHandler {
	return &MiltyHandler{service: service}
}

func (h *MiltyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "generate_draft")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req milty.GenerateRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	// An empty body means the standard preset.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	draft, err := h.service.Generate(ctx, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, draft)
}

func (h *MiltyHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_draft")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("draft ID is required"))
		return
	}

	draft, err := h.service.GetDraft(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, draft)
}

func (h *MiltyHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_drafts")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	drafts, err := h.service.ListDrafts(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, drafts)
}

func (h *MiltyHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_draft")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	if err := h.service.DeleteDraft(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusNoContent, nil)
}

func (h *MiltyHandler) Presets(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_presets")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.service.Presets())
}

func (h *MiltyHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_defaults")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.service.Defaults())
}
