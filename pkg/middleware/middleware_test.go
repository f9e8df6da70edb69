package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtutil "github.com/Dias221467/Message_Catalog/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims != nil {
		w.Header().Set("X-User", claims.UserID)
	}
	w.WriteHeader(http.StatusOK)
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := jwtutil.GenerateToken("64b7f0c2a1b2c3d4e5f60718", "u@example.com", role, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func decodeKind(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	return body["kind"].(string)
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(okHandler))

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", decodeKind(t, rr))
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "not-a-jwt"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tokenFor(t, "member")})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", rr.Header().Get("X-User"))
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, "member"))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRequireRole(t *testing.T) {
	handler := AuthMiddleware(testSecret)(RequireRole("admin")(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodDelete, "/categories", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tokenFor(t, "member")})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "permission", decodeKind(t, rr))

	req = httptest.NewRequest(http.MethodDelete, "/categories", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tokenFor(t, "admin")})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal", decodeKind(t, rr))
}
