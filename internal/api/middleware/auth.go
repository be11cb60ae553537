package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
)

// adminClaims is the token payload for back-office access
type adminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminAuth guards back-office routes: a Bearer JWT signed with the admin
// secret whose email claim lands in an allow-listed domain. The domain check
// runs on every request, so removing a domain from the allow-list revokes
// access immediately even for unexpired tokens.
//
// Automation that cannot hold a JWT may instead present X-API-Key, verified
// against the configured bcrypt hash.
func AdminAuth(cfg config.AdminConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" && cfg.APIKeyHash != "" {
			if bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(apiKey)) == nil {
				c.Set("admin_email", "service-account")
				c.Next()
				return
			}
			logger.Warn("Admin API key rejected", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		if cfg.JWTSecret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin access is not configured"})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &adminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Admin token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if !emailAllowed(claims.Email, cfg.AllowedEmailDomains) {
			logger.Warn("Admin email not in allow-list", zap.String("email", claims.Email))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "email domain not allowed"})
			return
		}

		c.Set("admin_email", claims.Email)
		c.Next()
	}
}

// emailAllowed checks the email's domain against the allow-list. An empty
// allow-list means no admin may pass; auth cannot silently open up.
func emailAllowed(email string, allowedDomains []string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range allowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}
