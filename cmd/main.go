package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/silkiy/storefront/cache"
	"github.com/silkiy/storefront/config"
	"github.com/silkiy/storefront/database"
	"github.com/silkiy/storefront/middleware"
	"github.com/silkiy/storefront/routes"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	db, err := database.Connect(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("mongo unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	c := cache.New(cfg.RedisAddr)
	defer c.Close()

	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
	)
	routes.Register(r, routes.Deps{Mongo: db, Cache: c, Logger: logger, Cfg: cfg})

	logger.Info("listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
