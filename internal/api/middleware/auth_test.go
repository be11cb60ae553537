package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
)

const testSecret = "admin-secret"

func adminRouter(cfg config.AdminConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin/ping", AdminAuth(cfg, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("admin_email")})
	})
	return router
}

func mintToken(t *testing.T, secret, email string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func getWithToken(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuthAcceptsAllowedDomain(t *testing.T) {
	router := adminRouter(config.AdminConfig{
		JWTSecret:           testSecret,
		AllowedEmailDomains: []string{"geekcreations.io"},
	})

	w := getWithToken(router, mintToken(t, testSecret, "ops@geekcreations.io", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ops@geekcreations.io")
}

func TestAdminAuthRejectsDisallowedDomain(t *testing.T) {
	router := adminRouter(config.AdminConfig{
		JWTSecret:           testSecret,
		AllowedEmailDomains: []string{"geekcreations.io"},
	})

	w := getWithToken(router, mintToken(t, testSecret, "eve@attacker.example", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminAuthEmptyAllowListRejectsEveryone(t *testing.T) {
	router := adminRouter(config.AdminConfig{JWTSecret: testSecret})

	w := getWithToken(router, mintToken(t, testSecret, "ops@geekcreations.io", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminAuthRejectsWrongSignature(t *testing.T) {
	router := adminRouter(config.AdminConfig{
		JWTSecret:           testSecret,
		AllowedEmailDomains: []string{"geekcreations.io"},
	})

	w := getWithToken(router, mintToken(t, "other-secret", "ops@geekcreations.io", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthRejectsExpiredToken(t *testing.T) {
	router := adminRouter(config.AdminConfig{
		JWTSecret:           testSecret,
		AllowedEmailDomains: []string{"geekcreations.io"},
	})

	w := getWithToken(router, mintToken(t, testSecret, "ops@geekcreations.io", -time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthMissingToken(t *testing.T) {
	router := adminRouter(config.AdminConfig{
		JWTSecret:           testSecret,
		AllowedEmailDomains: []string{"geekcreations.io"},
	})

	w := getWithToken(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthNoSecretConfigured(t *testing.T) {
	router := adminRouter(config.AdminConfig{AllowedEmailDomains: []string{"geekcreations.io"}})

	w := getWithToken(router, mintToken(t, testSecret, "ops@geekcreations.io", time.Hour))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminAuthAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("gck_service"), bcrypt.MinCost)
	require.NoError(t, err)
	router := adminRouter(config.AdminConfig{
		JWTSecret:  testSecret,
		APIKeyHash: string(hash),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("X-API-Key", "gck_service")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// key auth bypasses the email allow-list
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "service-account")
}

func TestAdminAuthWrongAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("gck_service"), bcrypt.MinCost)
	require.NoError(t, err)
	router := adminRouter(config.AdminConfig{JWTSecret: testSecret, APIKeyHash: string(hash)})

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("X-API-Key", "gck_guess")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthAPIKeyIgnoredWhenUnconfigured(t *testing.T) {
	router := adminRouter(config.AdminConfig{
		JWTSecret:           testSecret,
		AllowedEmailDomains: []string{"geekcreations.io"},
	})

	// no hash configured: the header is ignored and bearer auth still applies
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("X-API-Key", "gck_anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEmailAllowed(t *testing.T) {
	allowed := []string{"geekcreations.io"}
	assert.True(t, emailAllowed("a@geekcreations.io", allowed))
	assert.True(t, emailAllowed("a@GEEKCREATIONS.IO", allowed))
	assert.False(t, emailAllowed("a@other.io", allowed))
	assert.False(t, emailAllowed("no-at-sign", allowed))
	assert.False(t, emailAllowed("trailing@", allowed))
}
