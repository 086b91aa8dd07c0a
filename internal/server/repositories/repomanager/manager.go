// Package repomanager opens the configured storage backend and vends the
// account and item repositories bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/items"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Accounts() accounts.Repository
	Items() items.Repository
	Close(context.Context) error
}

// Store types accepted by New.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreBolt     = "bolt"
)

// New connects to the store selected by cfg.StoreType. Schema setup is left
// to RunMigrations.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StoreType {
	case StorePostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db)
	case StoreMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoRepositoryManager(client, cfg.MongoDatabase), nil
	case StoreBolt:
		db, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return NewBoltRepositoryManager(db), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}
}
