package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications?unread=&limit=
func (h *NotificationHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	var filter models.NotificationFilter
	q := r.URL.Query()
	if v := q.Get("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, apperr.Validation("unread must be true or false"))
			return
		}
		filter.UnreadOnly = unread
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, r, apperr.Validation("limit must be a positive number"))
			return
		}
		filter.Limit = int64(limit)
	}

	list, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// PUT /notifications {notificationId}
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotificationID string `json:"notificationId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := services.ParseObjectID(req.NotificationID, "notification")
	if err != nil {
		writeError(w, r, err)
		return
	}

	notif, err := h.Service.MarkRead(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notification": notif})
}
