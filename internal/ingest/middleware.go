package ingest

import (
	"crypto/subtle"
	"net/http"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Webhook-Secret"

// SharedSecretAuth validates the webhook shared secret with a constant-time
// compare. An unconfigured secret accepts all callers; that permissive
// default exists for local development and is logged loudly at startup.
func SharedSecretAuth(cfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := cfg.GetWebhookSharedSecret()
		if secret == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			httpkit.Error(c, http.StatusUnauthorized, "invalid webhook secret", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
