package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	jwtutil "github.com/Dias221467/Message_Catalog/pkg/jwt"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/Dias221467/Message_Catalog/pkg/middleware"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// WSEvent is the frame pushed to connected admins.
type WSEvent struct {
	Type         string               `json:"type"` // "notification"
	Notification *models.Notification `json:"notification,omitempty"`
}

// NotificationHub fans new ledger entries out to admin websocket clients.
type NotificationHub struct {
	JWTSecret string
	// Roles, when set, replaces the token's role with the stored one.
	Roles middleware.RoleLookup

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]string
}

// NewNotificationHub accepts upgrades from the allowed origins only; an
// empty list accepts any origin.
func NewNotificationHub(jwtSecret string, allowedOrigins []string) *NotificationHub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &NotificationHub{
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
		clients: make(map[*websocket.Conn]string),
	}
}

// Publish sends notif to every connected client. Clients that cannot be
// written to are dropped.
func (h *NotificationHub) Publish(notif models.Notification) {
	event := WSEvent{Type: "notification", Notification: &notif}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, userID := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(event); err != nil {
			logger.Log.WithError(err).WithField("userID", userID).Warn("Dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Clients is the number of connected sockets.
func (h *NotificationHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// claims reads the session from the cookie or, for clients that cannot
// send one, the token query parameter.
func (h *NotificationHub) claims(r *http.Request) (*jwtutil.Claims, error) {
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		return claims, nil
	}
	token := r.URL.Query().Get("token")
	if cookie, err := r.Cookie(middleware.TokenCookieName); err == nil && cookie.Value != "" {
		token = cookie.Value
	}
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired session")
	}
	if h.Roles != nil {
		role, err := h.Roles(r.Context(), claims.UserID)
		if err != nil {
			return nil, err
		}
		claims.Role = role
	}
	return claims, nil
}

// GET /notifications/ws
func (h *NotificationHub) NotificationWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims.Role != string(models.RoleAdmin) {
		writeError(w, r, apperr.Permission("insufficient permissions"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = claims.UserID
	h.mu.Unlock()
	logger.Log.WithField("userID", claims.UserID).Info("WebSocket connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		logger.Log.WithField("userID", claims.UserID).Info("WebSocket disconnected")
	}()

	// the feed is push-only; reading just detects the client going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
