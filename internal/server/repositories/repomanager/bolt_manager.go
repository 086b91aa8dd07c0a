package repomanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/items"
	"go.etcd.io/bbolt"
)

// BoltRepositoryManager vends repositories over a single bbolt file.
type BoltRepositoryManager struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if needed) the database file at path.
func OpenBolt(path string) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open error: %w", err)
	}
	return db, nil
}

func NewBoltRepositoryManager(db *bbolt.DB) *BoltRepositoryManager {
	return &BoltRepositoryManager{db: db}
}

func (m *BoltRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewBoltRepository(m.db)
}

func (m *BoltRepositoryManager) Items() items.Repository {
	return items.NewBoltRepository(m.db)
}

// RunMigrations creates the buckets.
func (m *BoltRepositoryManager) RunMigrations(context.Context) error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{accounts.AccountsBucket, accounts.UserNamesBucket, items.ItemsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (m *BoltRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
