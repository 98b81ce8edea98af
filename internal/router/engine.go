package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-directory/internal/container"
	"github.com/oksasatya/go-user-directory/internal/interface/middleware"
	"github.com/oksasatya/go-user-directory/pkg/response"
	"github.com/oksasatya/go-user-directory/pkg/validation"
)

// NewEngine builds the Gin engine with global middleware and every module
// registered.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	if err := r.SetTrustedProxies(c.Config.TrustedProxyList()); err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).Warn("invalid TRUSTED_PROXIES, trusting no proxy")
		}
		_ = r.SetTrustedProxies(nil)
	}
	r.TrustedPlatform = middleware.TrustedPlatformHeader(c.Config.TrustedPlatform)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := c.Config.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	if c.Config.HTTPLogEnabled && c.Logger != nil {
		r.Use(middleware.AccessLog(c.Logger))
	}
	r.Use(middleware.Metrics(c.Metrics))

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "Not Found", nil)
	})

	reg := NewRegistry(r, c.Config.APIPrefix)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
