package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-directory/config"
	"github.com/oksasatya/go-user-directory/internal/application"
	"github.com/oksasatya/go-user-directory/internal/domain/repository"
	"github.com/oksasatya/go-user-directory/pkg/metrics"
)

// Container carries the process-wide components built once in main and
// handed to the router. Optional integrations are nil when not configured.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Metrics *metrics.Manager

	// Users is the store handle shared by every request.
	Users repository.UserRepository

	Redis     *redis.Client
	Publisher application.EventPublisher
	Index     application.UserIndexer
}

// UserService builds the application service over the container's store
// and integrations.
func (c *Container) UserService() *application.Service {
	return application.NewService(c.Users, c.Publisher, c.Index, c.Metrics, c.Logger)
}
