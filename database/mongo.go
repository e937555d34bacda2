package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/silkiy/storefront/config"
)

// Mongo holds the client and the collections the handlers work with.
// It is created once at startup and passed into the controllers.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database

	Users             *mongo.Collection
	Products          *mongo.Collection
	Orders            *mongo.Collection
	Carts             *mongo.Collection
	Addresses         *mongo.Collection
	Contacts          *mongo.Collection
	BlacklistedTokens *mongo.Collection
}

// Connect dials MongoDB with exponential backoff between attempts.
// Pool sizing and the per-attempt timeout come from the config.
func Connect(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(cfg.MongoMaxPoolSize).
		SetMinPoolSize(1).
		SetServerSelectionTimeout(cfg.MongoConnectTimeout)

	var (
		client  *mongo.Client
		err     error
		backoff = time.Second
	)
	for attempt := 1; attempt <= cfg.MongoConnectAttempts; attempt++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				break
			}
			_ = client.Disconnect(ctx)
		}
		logger.Warn("mongo connect failed", "attempt", attempt, "error", err)
		if attempt == cfg.MongoConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	db := client.Database(cfg.DBName)
	return &Mongo{
		Client: client,
		DB:     db,

		Users:             db.Collection("users"),
		Products:          db.Collection("products"),
		Orders:            db.Collection("orders"),
		Carts:             db.Collection("carts"),
		Addresses:         db.Collection("addresses"),
		Contacts:          db.Collection("contacts"),
		BlacklistedTokens: db.Collection("blacklist_tokens"),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
