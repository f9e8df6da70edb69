package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /activities?taxonomy=&limit=
func (h *ActivityHandler) GetActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var taxonomy models.Taxonomy
	if v := q.Get("taxonomy"); v != "" {
		t, err := models.ParseTaxonomy(v)
		if err != nil {
			writeError(w, r, apperr.Wrap(apperr.KindValidation, err, "unknown taxonomy %q", v))
			return
		}
		taxonomy = t
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, apperr.Validation("limit must be a number"))
			return
		}
		limit = n
	}

	activities, err := h.Service.GetRecentActivities(r.Context(), taxonomy, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}
