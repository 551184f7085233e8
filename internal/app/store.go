// Package app holds the wiring shared by the API server and vastuctl.
package app

import (
	"log"

	"vastustructural/internal/config"
	"vastustructural/internal/database"
	"vastustructural/internal/repository"
	"vastustructural/internal/repository/memstore"
)

// OpenStore returns the storage backend cfg selects. For postgres the schema is migrated
// before the store is returned.
func OpenStore(cfg *config.Config) (*repository.Store, error) {
	if cfg.Storage == config.StorageMemory {
		log.Println("Using in-memory storage, data is lost on restart")
		return memstore.New()
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to PostgreSQL successfully.")
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}
