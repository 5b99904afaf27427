package storage

import (
	"fmt"
	"log/slog"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/types"
)

// Storage is the interface for all article storage backends.
type Storage interface {
	// Store persists a batch of article records.
	Store(records []types.ArticleRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the storage backend selected by configuration.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "json":
		return NewJSONStorage(cfg.OutputPath, logger)
	case "jsonl":
		return NewJSONLStorage(cfg.OutputPath, logger)
	case "files":
		return NewFileStorage(cfg.OutputPath, logger)
	case "mongo":
		return NewMongoStorage(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, logger)
	default:
		return nil, &types.StorageError{
			Backend: cfg.Type,
			Err:     fmt.Errorf("unknown storage type"),
		}
	}
}
