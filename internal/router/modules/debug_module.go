package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-directory/internal/interface/middleware"
	"github.com/oksasatya/go-user-directory/pkg/metrics"
)

type DebugModule struct {
	redis   *redis.Client
	expvar  bool
	metrics *metrics.Manager
}

type DebugOption func(*DebugModule)

// WithExpvar exposes /debug/vars.
func WithExpvar() DebugOption {
	return func(m *DebugModule) { m.expvar = true }
}

// WithPrometheus exposes /metrics.
func WithPrometheus(mm *metrics.Manager) DebugOption {
	return func(m *DebugModule) { m.metrics = mm }
}

func NewDebugModule(rdb *redis.Client, opts ...DebugOption) *DebugModule {
	m := &DebugModule{redis: rdb}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	if m.expvar {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
	if m.metrics != nil {
		rg.GET("/metrics", rl, gin.WrapH(m.metrics.Handler()))
	}
}
