package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"go.etcd.io/bbolt"
)

// Bucket names used by the bolt backend.
var (
	AccountsBucket  = []byte("accounts")
	UserNamesBucket = []byte("account_usernames")
)

// BoltRepository keeps accounts as JSON values keyed by id, plus a
// username -> id index bucket that enforces uniqueness.
type BoltRepository struct {
	db *bbolt.DB
}

func NewBoltRepository(db *bbolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prepare(account)

	value, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("marshal account: %w", err)
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		names, err := tx.CreateBucketIfNotExists(UserNamesBucket)
		if err != nil {
			return err
		}
		accounts, err := tx.CreateBucketIfNotExists(AccountsBucket)
		if err != nil {
			return err
		}
		if names.Get([]byte(account.UserName)) != nil {
			return common.ErrDuplicateUsername
		}
		if err := names.Put([]byte(account.UserName), []byte(account.ID)); err != nil {
			return err
		}
		return accounts.Put([]byte(account.ID), value)
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *BoltRepository) FindByUserName(ctx context.Context, userName string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var account *models.Account
	err := r.db.View(func(tx *bbolt.Tx) error {
		names := tx.Bucket(UserNamesBucket)
		if names == nil {
			return common.ErrorNotFound
		}
		id := names.Get([]byte(userName))
		if id == nil {
			return common.ErrorNotFound
		}
		var err error
		account, err = getAccount(tx, id)
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return account, nil
}

func (r *BoltRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var account *models.Account
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		account, err = getAccount(tx, []byte(id))
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return account, nil
}

func getAccount(tx *bbolt.Tx, id []byte) (*models.Account, error) {
	b := tx.Bucket(AccountsBucket)
	if b == nil {
		return nil, common.ErrorNotFound
	}
	v := b.Get(id)
	if v == nil {
		return nil, common.ErrorNotFound
	}
	var a models.Account
	if err := json.Unmarshal(v, &a); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", id, err)
	}
	return &a, nil
}

func wrap(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return fmt.Errorf("db error: %w", err)
}
