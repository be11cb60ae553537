package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys set by Idempotency for the handler to consume
const (
	ContextIdempotencyKey  = "idempotency_key"
	ContextIdempotencyHash = "idempotency_hash"
)

// Idempotency reads the Idempotency-Key header and hashes the raw request
// body so the checkout service can detect replays. The body is restored for
// downstream binding.
func Idempotency() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 128 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "idempotency key too long"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		sum := sha256.Sum256(body)
		c.Set(ContextIdempotencyKey, key)
		c.Set(ContextIdempotencyHash, hex.EncodeToString(sum[:]))
		c.Next()
	}
}
