// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"

	"github.com/launchcast/stealgame/internal/auth"
	"github.com/launchcast/stealgame/internal/cache"
	"github.com/launchcast/stealgame/internal/config"
	"github.com/launchcast/stealgame/internal/database"
	"github.com/launchcast/stealgame/internal/handlers"
	"github.com/launchcast/stealgame/internal/identity"
	"github.com/launchcast/stealgame/internal/publish"
	"github.com/launchcast/stealgame/internal/round"
	"github.com/launchcast/stealgame/internal/steal"
	"github.com/launchcast/stealgame/internal/webhook"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if cfg.JWTPublicKeyPath != "" {
		if err := auth.InitFromPath(cfg.JWTPublicKeyPath); err != nil {
			log.Fatalf("auth init error: %v", err)
		}
	} else {
		auth.Init()
	}

	ctx := context.Background()
	store, err := database.Connect(ctx, cfg.PostgresURL())
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer store.Close()
	database.SetStartingPoints(cfg.StartingPoints)

	queue, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB, "")
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}

	loc, err := cfg.CutoffLocation()
	if err != nil {
		log.Fatalf("timezone error: %v", err)
	}
	cutoff := round.Cutoff{Hour: cfg.CutoffHour, Minute: cfg.CutoffMinute, Location: loc}
	rounds := round.NewManager(store, cutoff)

	resolver := identity.NewNeynar(cfg.NeynarAPIKey, store, logger)
	publisher := publish.NewNeynar(cfg.NeynarAPIKey, cfg.NeynarSignerUUID)

	stealResolver := steal.NewResolver(store, store, store, queue, logger)
	selector := steal.NewSelector(rounds, store, store, store, resolver, logger)
	processor := webhook.NewProcessor(cfg.WebhookSecret, store, store, rounds, stealResolver, resolver, publisher, logger)

	srv := handlers.NewServer(store, rounds, selector, processor, logger)

	addr := ":" + cfg.Port
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, srv.Routes()); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
