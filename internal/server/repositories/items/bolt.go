package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"go.etcd.io/bbolt"
)

var ItemsBucket = []byte("items")

// BoltRepository keeps items as JSON values keyed by id. The envelope is
// stored in its text form.
type BoltRepository struct {
	db *bbolt.DB
}

func NewBoltRepository(db *bbolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prepare(item)

	value, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(ItemsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(item.ID), value)
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *BoltRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var item *models.Item
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		item, err = getItem(tx, []byte(id))
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *BoltRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []*models.Item
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(ItemsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var item models.Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("decode item %s: %w", k, err)
			}
			if item.OwnerID != ownerID {
				return nil
			}
			item.Envelope = cryptox.Envelope{}
			result = append(result, &item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *BoltRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deleted := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		item, err := getItem(tx, []byte(id))
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if item.OwnerID != ownerID {
			return nil
		}
		if err := tx.Bucket(ItemsBucket).Delete([]byte(id)); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return deleted, nil
}

func getItem(tx *bbolt.Tx, id []byte) (*models.Item, error) {
	b := tx.Bucket(ItemsBucket)
	if b == nil {
		return nil, common.ErrorNotFound
	}
	v := b.Get(id)
	if v == nil {
		return nil, common.ErrorNotFound
	}
	var item models.Item
	if err := json.Unmarshal(v, &item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", id, err)
	}
	return &item, nil
}
