package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"
)

// AdminConfig guards the administrative routes. Either an API key, a
// username with a bcrypt password hash, or both may be configured.
type AdminConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

func (c AdminConfig) Enabled() bool {
	return c.APIKey != "" || (c.Username != "" && c.PasswordHash != "")
}

// AdminAuth accepts a request carrying the configured X-API-Key header or
// matching HTTP Basic credentials. With nothing configured every request is
// let through; the server warns about this at startup.
func AdminAuth(cfg AdminConfig) gin.HandlerFunc {
	basicEnabled := cfg.Username != "" && cfg.PasswordHash != ""

	return func(c *gin.Context) {
		if !cfg.Enabled() {
			c.Next()
			return
		}

		if providedKey := c.GetHeader(apiKeyHeader); providedKey != "" && cfg.APIKey != "" {
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(cfg.APIKey)) == 1 {
				c.Next()
				return
			}
			slog.Warn("Invalid API key attempt",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		if username, password, ok := c.Request.BasicAuth(); ok && basicEnabled {
			userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
			if CheckPassword(password, cfg.PasswordHash) && userMatch {
				c.Next()
				return
			}
			slog.Warn("Invalid admin credentials",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if basicEnabled {
			c.Header("WWW-Authenticate", `Basic realm="silo-license admin"`)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing credentials"})
	}
}
