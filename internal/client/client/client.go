package client

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/client/models"
	"github.com/dmitrijs2005/passvault/internal/common"
)

// Client is the vault API used by the CLI.
type Client interface {
	Close() error
	SetToken(token string)
	Register(ctx context.Context, userName, password string, answers [common.SecurityAnswerCount]string) (*models.Account, string, error)
	Login(ctx context.Context, userName, password string) (*models.Account, string, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.Account, error)
	CreateItem(ctx context.Context, topicName, secret string, isFavorite bool) (*models.Item, error)
	ListItems(ctx context.Context) ([]*models.Item, error)
	DeleteItem(ctx context.Context, id string) error
	RetrieveSecret(ctx context.Context, id string, answers [common.SecurityAnswerCount]string) (*models.Secret, error)
	Ping(ctx context.Context) error
}

var _ Client = (*GRPCClient)(nil)
