package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/Dias221467/Message_Catalog/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

// writeError renders err and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.HTTPStatus(apperr.KindOf(err)) >= http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	}
	middleware.WriteError(w, err)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "Invalid request payload")
	}
	return nil
}

// actorFrom turns the session claims into the services' view of the caller.
func actorFrom(r *http.Request) (services.Actor, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return services.Actor{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return services.Actor{}, apperr.New(apperr.KindUnauthorized, "invalid session")
	}
	return services.Actor{UserID: &id, Role: models.Role(claims.Role)}, nil
}

func pathID(r *http.Request, name, what string) (primitive.ObjectID, error) {
	return services.ParseObjectID(mux.Vars(r)[name], what)
}
