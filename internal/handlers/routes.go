package handlers

import (
	"net/http"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/middleware"
	"github.com/gorilla/mux"
)

// TaxonomyPrefix is the URL prefix a taxonomy is served under.
func TaxonomyPrefix(t models.Taxonomy) string {
	if t == models.TaxonomyEnglish {
		return "/english-categories"
	}
	return "/categories"
}

// Routes collects everything NewRouter mounts.
type Routes struct {
	JWTSecret     string
	Categories    []*CategoryHandler
	Notifications *NotificationHandler
	Hub           *NotificationHub
	Activities    *ActivityHandler
	Users         *UserHandler
	AuthLimiter   *middleware.RateLimiter
}

// NewRouter builds the HTTP surface.
func NewRouter(rt Routes) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.LoggingMiddleware)

	authenticate := middleware.AuthMiddleware(rt.JWTSecret)
	refresh := middleware.RefreshRole(rt.Users.CurrentRole)
	auth := func(next http.Handler) http.Handler { return authenticate(refresh(next)) }
	admin := middleware.RequireRole(string(models.RoleAdmin))
	adminOnly := func(f http.HandlerFunc) http.Handler { return admin(f) }

	router.HandleFunc("/health", HealthHandler).Methods("GET")

	// Category routes, one subrouter per taxonomy. Literal segments are
	// registered before /{id} so they are not taken for ids.
	for _, h := range rt.Categories {
		routes := router.PathPrefix(TaxonomyPrefix(h.Categories.Taxonomy())).Subrouter()
		routes.Use(auth)

		routes.HandleFunc("", h.ListCategoriesHandler).Methods("GET")
		routes.HandleFunc("", h.CreateCategoryHandler).Methods("POST")
		routes.Handle("", adminOnly(h.DeleteAllCategoriesHandler)).Methods("DELETE")
		routes.Handle("/clear", adminOnly(h.DeleteAllCategoriesHandler)).Methods("DELETE")
		routes.Handle("/review", adminOnly(h.ReviewQueueHandler)).Methods("GET")
		routes.Handle("/review/count", adminOnly(h.ReviewCountHandler)).Methods("GET")
		routes.Handle("/approve", adminOnly(h.SetStatusByBodyHandler)).Methods("PUT")
		routes.Handle("/import", adminOnly(h.ImportCategoriesHandler)).Methods("POST")
		routes.Handle("/import/analyze", adminOnly(h.AnalyzeImportHandler)).Methods("POST")

		routes.HandleFunc("/{id}", h.GetCategoryHandler).Methods("GET")
		routes.Handle("/{id}", adminOnly(h.UpdateCategoryHandler)).Methods("PUT")
		routes.Handle("/{id}", adminOnly(h.DeleteCategoryHandler)).Methods("DELETE")
		routes.Handle("/{id}/approve", adminOnly(h.ApproveCategoryHandler)).Methods("PUT")
		routes.Handle("/{id}/reject", adminOnly(h.RejectCategoryHandler)).Methods("PUT")
		routes.Handle("/{id}/subcategories", adminOnly(h.AddSubcategoryHandler)).Methods("POST")
		routes.Handle("/{id}/subcategories/{subId}", adminOnly(h.UpdateSubcategoryHandler)).Methods("PUT")
		routes.Handle("/{id}/subcategories/{subId}", adminOnly(h.DeleteSubcategoryHandler)).Methods("DELETE")
		routes.Handle("/{id}/subcategories/{subId}/messages", adminOnly(h.AddMessageHandler)).Methods("POST")
	}

	// The websocket authenticates itself so browsers can pass ?token=
	if rt.Hub != nil {
		rt.Hub.Roles = rt.Users.CurrentRole
		router.HandleFunc("/notifications/ws", rt.Hub.NotificationWebSocketHandler).Methods("GET")
	}

	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(auth, admin)
	notificationRoutes.HandleFunc("", rt.Notifications.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("", rt.Notifications.MarkAsReadHandler).Methods("PUT")

	// Admin routes
	router.Handle("/activities", auth(adminOnly(rt.Activities.GetActivitiesHandler))).Methods("GET")
	router.Handle("/users", auth(adminOnly(rt.Users.AdminGetAllUsersHandler))).Methods("GET")

	// Auth routes
	authRoutes := router.PathPrefix("/auth").Subrouter()
	if rt.AuthLimiter != nil {
		authRoutes.Use(rt.AuthLimiter.Middleware)
	}
	authRoutes.HandleFunc("/register", rt.Users.RegisterUserHandler).Methods("POST")
	authRoutes.HandleFunc("/login", rt.Users.LoginUserHandler).Methods("POST")
	authRoutes.HandleFunc("/logout", rt.Users.LogoutUserHandler).Methods("POST")
	authRoutes.HandleFunc("/forgot-password", rt.Users.ForgotPasswordHandler).Methods("POST")
	authRoutes.HandleFunc("/reset-password", rt.Users.ResetPasswordHandler).Methods("POST")
	authRoutes.Handle("/me", auth(http.HandlerFunc(rt.Users.MeHandler))).Methods("GET")

	return router
}

// HealthHandler reports that the process is serving.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
