package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Recoverer turns a handler panic into a 500 response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  rec,
					"method": r.Method,
					"path":   r.URL.Path,
					"stack":  string(debug.Stack()),
				}).Error("Panic recovered")
				WriteError(w, apperr.New(apperr.KindInternal, "Internal server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
