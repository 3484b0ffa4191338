package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"assetdesk.com/internal/api"
	"assetdesk.com/internal/config"
	"assetdesk.com/internal/infra"
)

func main() {
	cfg := config.LoadConfig()

	pg, err := infra.NewPostgresClient(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Redis only backs token revocation; run without it if unreachable.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = infra.NewRedisClient(cfg.Redis)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("Warning: Redis unreachable, logout revocation disabled: %v", err)
			rdb = nil
		}
	}

	app := api.NewServer(cfg)

	router := api.NewRouter(app, cfg, pg.DB, rdb)
	router.RegisterRoutes()

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
