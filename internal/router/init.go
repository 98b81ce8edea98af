package router

import (
	"github.com/oksasatya/go-user-directory/internal/container"
	handlers "github.com/oksasatya/go-user-directory/internal/interface/http"
	"github.com/oksasatya/go-user-directory/internal/router/modules"
)

// InitModules builds handlers from the container and adds every module to
// the registry. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	svc := c.UserService()

	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc, c.Logger), c.Redis, c.Config.RateLimitPerMinute))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(svc, c.Logger)))

	var debug []modules.DebugOption
	if c.Config.DebugMetricsEnabled {
		debug = append(debug, modules.WithExpvar())
	}
	if c.Config.MetricsEnabled && c.Metrics != nil {
		debug = append(debug, modules.WithPrometheus(c.Metrics))
	}
	r.Add(modules.NewDebugModule(c.Redis, debug...))
}
