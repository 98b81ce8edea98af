package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-directory/config"
	"github.com/oksasatya/go-user-directory/internal/domain/repository"
	"github.com/oksasatya/go-user-directory/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-directory/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-user-directory/internal/infrastructure/postgres"
)

// OpenUserStore connects the backend selected by STORE_DRIVER. The returned
// close func releases the store handle and is never nil.
func OpenUserStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.WithFields(logrus.Fields{"database": cfg.MongoDatabase, "collection": cfg.MongoCollection}).Info("mongo connected")
		return mongodb.NewUserRepository(client, cfg.MongoDatabase, cfg.MongoCollection), func() {
			_ = client.Disconnect(context.Background())
		}, nil

	case config.DriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil

	case config.DriverMemory:
		logger.Warn("using the in-memory store; records are lost on exit")
		return memory.NewUserRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
