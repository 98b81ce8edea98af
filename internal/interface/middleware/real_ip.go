package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TrustedPlatformHeader maps a TRUSTED_PLATFORM value to the header gin
// should read the client IP from. Known CDNs are accepted by name; anything
// else is taken as a raw header name.
func TrustedPlatformHeader(platform string) string {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "":
		return ""
	case "cloudflare":
		return gin.PlatformCloudflare
	case "google", "appengine":
		return gin.PlatformGoogleAppEngine
	}
	return strings.TrimSpace(platform)
}

// RealIP sets the client IP into the Gin context (key: "real_ip").
// It relies on c.ClientIP, so X-Forwarded-For and X-Real-IP only count when
// the peer is one of the engine's trusted proxies, and a platform header only
// counts when engine.TrustedPlatform names it.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
