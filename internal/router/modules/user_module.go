package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-directory/internal/interface/http"
	"github.com/oksasatya/go-user-directory/internal/interface/middleware"
)

// UserModule wires the user directory routes:
// POST /users, GET /users, GET /users/search,
// GET /users/:id, PUT /users/:id, DELETE /users/:id
type UserModule struct {
	Handler   *handlers.UserHandler
	Redis     *redis.Client
	PerMinute int
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, perMinute int) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, PerMinute: perMinute}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.RateLimit(m.Redis, m.PerMinute, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
	}
}
