package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/audit"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_BobScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.register(t, "bob", "pw123", [3]string{"Sam", "Math", "Paris"})
	eve := f.register(t, "eve", "pw", [3]string{"x", "y", "z"})

	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)
	assert.Equal(t, "email", meta.TopicName)

	got, err := f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"sam", " MATH", "paris "})
	require.NoError(t, err)
	assert.Equal(t, &models.RevealedSecret{Secret: "s3cr3t", TopicName: "email"}, got)

	_, err = f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"sam", "math", "london"})
	assert.ErrorIs(t, err, common.ErrSecurityAnswerMismatch)

	err = f.vault.DeleteItem(ctx, eve.ID, meta.ID)
	assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden)

	require.NoError(t, f.vault.DeleteItem(ctx, bob.ID, meta.ID))

	_, err = f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"sam", "math", "paris"})
	assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden)

	err = f.vault.DeleteItem(ctx, bob.ID, meta.ID)
	assert.ErrorIs(t, err, common.ErrNotFoundOrForbidden)
}

func TestRetrieveSecret_EveryWrongCombinationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	right := [3]string{"Sam", "Math", "Paris"}
	bob := f.register(t, "bob", "pw", right)
	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)

	for mask := 1; mask < 8; mask++ {
		answers := right
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				answers[i] = "wrong"
			}
		}
		t.Run(fmt.Sprintf("mask=%03b", mask), func(t *testing.T) {
			got, err := f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, answers)
			assert.ErrorIs(t, err, common.ErrSecurityAnswerMismatch)
			assert.Nil(t, got)
		})
	}

	events := f.sink.Events()
	require.Len(t, events, 7)
	for _, e := range events {
		assert.Equal(t, audit.KindSecurityAnswerMismatch, e.Kind)
		assert.Equal(t, "bob", e.UserName)
		assert.Equal(t, meta.ID, e.ItemID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestRetrieveSecret_ForeignItemLooksMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.register(t, "bob", "pw", [3]string{"a", "b", "c"})
	eve := f.register(t, "eve", "pw", [3]string{"a", "b", "c"})
	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)

	_, errForeign := f.vault.RetrieveSecret(ctx, eve.ID, meta.ID, [3]string{"a", "b", "c"})
	_, errMissing := f.vault.RetrieveSecret(ctx, eve.ID, "no-such-item", [3]string{"a", "b", "c"})
	assert.ErrorIs(t, errForeign, common.ErrNotFoundOrForbidden)
	assert.Equal(t, errMissing, errForeign)
	assert.Empty(t, f.sink.Events())
}

func TestRetrieveSecret_DecryptFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.register(t, "bob", "pw", [3]string{"a", "b", "c"})
	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)

	other, err := cryptox.NewCipher(make([]byte, cryptox.KeySize))
	require.NoError(t, err)
	foreign, err := other.Encrypt("s3cr3t")
	require.NoError(t, err)
	f.rm.i.corrupt(meta.ID, foreign)

	_, err = f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"a", "b", "c"})
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrSecurityAnswerMismatch)
}

func TestRetrieveSecret_MissingOwnerAccountIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.register(t, "bob", "pw", [3]string{"a", "b", "c"})
	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)

	f.rm.a.findFn = func(string) (*models.Account, error) { return nil, common.ErrorNotFound }

	_, err = f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"a", "b", "c"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRetrieveSecret_AuditFailureStillMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sink.err = errors.New("sink down")

	bob := f.register(t, "bob", "pw", [3]string{"a", "b", "c"})
	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)

	_, err = f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"a", "b", "x"})
	assert.ErrorIs(t, err, common.ErrSecurityAnswerMismatch)
}

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.vault.CreateItem(ctx, "u1", "   ", "s", false)
	assert.ErrorIs(t, err, common.ErrorValidation)

	meta, err := f.vault.CreateItem(ctx, "u1", "  bank ", "s", true)
	require.NoError(t, err)
	assert.Equal(t, "bank", meta.TopicName)
	assert.True(t, meta.IsFavorite)

	stored := f.rm.i.byID[meta.ID]
	assert.Len(t, stored.Envelope.Nonce, cryptox.NonceSize)

	f.rm.i.err = errors.New("db down")
	_, err = f.vault.CreateItem(ctx, "u1", "bank", "s", false)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestListItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.vault.ListItems(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first, err := f.vault.CreateItem(ctx, "u1", "first", "a", false)
	require.NoError(t, err)
	second, err := f.vault.CreateItem(ctx, "u1", "second", "b", false)
	require.NoError(t, err)
	_, err = f.vault.CreateItem(ctx, "u2", "other", "c", false)
	require.NoError(t, err)

	list, err := f.vault.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	f.rm.i.err = errors.New("db down")
	_, err = f.vault.ListItems(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestDeleteItem_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.rm.i.err = errors.New("db down")
	assert.ErrorIs(t, f.vault.DeleteItem(context.Background(), "u1", "i1"), common.ErrorInternal)
}

func TestRetrieveSecret_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.register(t, "bob", "pw", [3]string{"a", "b", "c"})
	meta, err := f.vault.CreateItem(ctx, bob.ID, "email", "s3cr3t", false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.vault.RetrieveSecret(ctx, bob.ID, meta.ID, [3]string{"A", "B", "C"})
			if assert.NoError(t, err) {
				assert.Equal(t, "s3cr3t", got.Secret)
			}
		}()
	}
	wg.Wait()
}
