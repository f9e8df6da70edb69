package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/config"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	jwtutil "github.com/Dias221467/Message_Catalog/pkg/jwt"
	"github.com/Dias221467/Message_Catalog/pkg/middleware"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles authentication and account requests.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		log.WithError(err).Warn("Failed to decode user registration request")
		writeError(w, r, err)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// LoginUserHandler verifies credentials and sets the session cookie.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		writeError(w, r, err)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, string(user.Role), h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, r, apperr.Wrap(apperr.KindInternal, err, "failed to generate token"))
		return
	}
	h.setSessionCookie(w, token, h.Config.TokenExpiry)

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// LogoutUserHandler expires the session cookie.
func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -time.Second)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// MeHandler returns the account behind the session.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.GetUser(r.Context(), *actor.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		// the token outlived its account
		writeError(w, r, apperr.New(apperr.KindUnauthorized, "account no longer exists"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// CurrentRole reports the stored role of a session's user. Sessions whose
// account is gone are unauthorized.
func (h *UserHandler) CurrentRole(ctx context.Context, userID string) (string, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", apperr.New(apperr.KindUnauthorized, "invalid session")
	}
	user, err := h.Service.GetUser(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return "", apperr.New(apperr.KindUnauthorized, "account no longer exists")
	}
	if err != nil {
		return "", err
	}
	return string(user.Role), nil
}

// ForgotPasswordHandler always answers with the same message so callers
// cannot learn which emails are registered.
func (h *UserHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent",
	})
}

// ResetPasswordHandler sets a new password from a reset token.
func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var input services.ResetPasswordInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), input); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}

// AdminGetAllUsersHandler lists every account.
func (h *UserHandler) AdminGetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
