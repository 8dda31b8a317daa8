package storage

import (
	"context"
	"fmt"

	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/config"
)

// NewDocumentStore opens the backend selected by cfg.StoreBackend.
func NewDocumentStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (DocumentStore, error) {
	switch cfg.StoreBackend {
	case "none":
		return NopStore{}, nil
	case "file":
		return NewFileStore(cfg.StoreFile, logger)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	case "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	case "firestore":
		return NewFirestoreStore(ctx, cfg.FirebaseProject, cfg.FirebaseKeyPath, logger)
	case "amqp":
		return NewAMQPStore(cfg.AMQPURL, cfg.AMQPQueue, logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.StoreBackend)
}
