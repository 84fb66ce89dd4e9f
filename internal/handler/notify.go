package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/middleware"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/notify"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

// NotifyHandler serves notification dispatch requests.
type NotifyHandler struct {
	service *notify.Service
	logger  *logger.Logger
}

// NewNotifyHandler creates a notify handler.
func NewNotifyHandler(svc *notify.Service, log *logger.Logger) *NotifyHandler {
	return &NotifyHandler{
		service: svc,
		logger:  log,
	}
}

// Send handles POST /api/v1/notify.
func (h *NotifyHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if userID := middleware.GetUserID(ctx); userID != "" {
		req.UserID = userID
	}

	if err := middleware.ValidateUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateDestinationID(req.DestinationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateVideoTitle(req.VideoTitle); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateVideoURL(req.VideoURL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Notify(ctx, req)
	if err != nil {
		h.writePipelineError(w, req.UserID, err)
		return
	}

	if result.Delivered {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}

	switch result.Outcome {
	case model.OutcomeRejected:
		// Actionable for the caller: fix the destination or bot permissions.
		if rej, ok := model.AsRejection(result.Err); ok {
			writeError(w, http.StatusBadGateway, "channel rejected the message: "+rej.Reason)
			return
		}
		writeError(w, http.StatusBadGateway, "channel rejected the message")
	case model.OutcomeInvalid:
		writeError(w, http.StatusBadRequest, result.Err.Error())
	default:
		// Transient; detail stays in the logs.
		writeError(w, http.StatusServiceUnavailable, "could not reach delivery service, retry later")
	}
}

func (h *NotifyHandler) writePipelineError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidVideoMetadata), errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrStorageIO):
		h.logger.Error("notify pipeline storage failure", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load settings, try again")
	default:
		h.logger.Error("notify pipeline failure", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
