package handlers

import (
	"log/slog"
	"net/http"

	"milty-server/internal/shared/errors"
	"milty-server/internal/shared/response"
	"milty-server/internal/tile"
)

type TileHandler struct {
	service *tile.Service
}

func NewTileHandler(service *tile.Service) *TileHandler {
	return &TileHandler{service: service}
}

func (h *TileHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_tiles")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	systems, err := h.service.ListSystems(r.URL.Query().Get("source"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if systems == nil {
		systems = []*tile.System{}
	}

	response.Success(w, http.StatusOK, systems)
}

func (h *TileHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_tile")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		response.Error(w, r, logger, errors.Validation("tile ID is required"))
		return
	}

	sys, err := h.service.GetSystem(id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, sys)
}
