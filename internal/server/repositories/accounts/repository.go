// Package accounts stores registered accounts. Every backend reports a
// missing account as common.ErrorNotFound and a taken username as
// common.ErrDuplicateUsername.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new account and fills in ID and CreatedAt when unset.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByUserName(ctx context.Context, userName string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

func prepare(a *models.Account) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
}
