package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-directory/config"
	"github.com/oksasatya/go-user-directory/internal/container"
	"github.com/oksasatya/go-user-directory/internal/domain/entity"
	"github.com/oksasatya/go-user-directory/pkg/helpers"
)

// demo users inserted into the configured store
var seedUsers = []entity.UserFields{
	{Name: "Ann", Email: "ann@example.com", Age: 30},
	{Name: "Budi", Email: "budi@example.com", Age: 27},
	{Name: "Citra", Email: "citra@example.com", Age: 41},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	users, closeStore, err := container.OpenUserStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open user store: %v", err)
	}
	defer closeStore()

	svc := (&container.Container{Config: cfg, Logger: logger, Users: users}).UserService()
	for _, f := range seedUsers {
		u, err := svc.Create(ctx, f)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", f.Email, err)
		}
		fmt.Printf("seeded user: id=%s name=%s email=%s age=%d\n", u.ID, u.Name, u.Email, u.Age)
	}
}
