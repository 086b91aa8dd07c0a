// Package items stores vault items. Lookups that find nothing report
// common.ErrorNotFound; ownership is enforced by DeleteByIDAndOwner and by
// the caller for reads.
package items

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	// Create persists item and fills in ID and CreatedAt when unset.
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	FindByID(ctx context.Context, id string) (*models.Item, error)
	// ListByOwner returns ownerID's items newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error)
	// DeleteByIDAndOwner reports whether a row matching both id and owner was removed.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error)
}

func prepare(i *models.Item) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
}
