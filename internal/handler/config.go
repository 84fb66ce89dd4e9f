// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/middleware"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

// ConfigHandler serves user configuration lookups.
type ConfigHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(st store.Store, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{
		store:  st,
		logger: log,
	}
}

// Get handles GET /api/v1/config/{user_id}. Unknown users get the default
// configuration; lookup never answers not-found.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// A resolved token identity wins over the path parameter.
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		userID = chi.URLParam(r, "user_id")
	}

	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.store.Get(ctx, userID)
	if err != nil {
		h.logger.Error("config lookup failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load settings, try again")
		return
	}

	writeJSON(w, http.StatusOK, model.ConfigResponse{Success: true, Config: cfg})
}
