package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/items"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestNewPostgresRepositoryManager(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, err := NewPostgresRepositoryManager(db)
	require.NoError(t, err)

	var _ accounts.Repository = m.Accounts()
	var _ items.Repository = m.Items()
	assert.IsType(t, &accounts.PostgresRepository{}, m.Accounts())
	assert.IsType(t, &items.PostgresRepository{}, m.Items())

	_, err = NewPostgresRepositoryManager(nil)
	assert.Error(t, err)
}

func TestPostgresRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m, err := NewPostgresRepositoryManager(db)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background()))
}

func TestPostgresRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m, err := NewPostgresRepositoryManager(db)
	require.NoError(t, err)
	assert.EqualError(t, m.RunMigrations(context.Background()), "boom")
}

func TestPostgresClose(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectClose()

	m, err := NewPostgresRepositoryManager(db)
	require.NoError(t, err)
	require.NoError(t, m.Close(context.Background()))
}
