package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/audit"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/items"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// --- in-memory repositories ---

type fakeAccounts struct {
	mu     sync.Mutex
	byID   map[string]*models.Account
	err    error
	findFn func(id string) (*models.Account, error)
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.UserName == a.UserName {
			return nil, common.ErrDuplicateUsername
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	cp := *a
	f.byID[a.ID] = &cp
	return a, nil
}

func (f *fakeAccounts) FindByUserName(_ context.Context, name string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if a.UserName == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findFn != nil {
		return f.findFn(id)
	}
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeItems struct {
	mu   sync.Mutex
	byID map[string]*models.Item
	seq  int
	err  error
}

func (f *fakeItems) Create(_ context.Context, i *models.Item) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	i.ID = uuid.NewString()
	i.CreatedAt = time.Date(2025, 1, 1, 0, 0, f.seq, 0, time.UTC)
	cp := *i
	f.byID[i.ID] = &cp
	return i, nil
}

func (f *fakeItems) FindByID(_ context.Context, id string) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeItems) ListByOwner(_ context.Context, owner string) ([]*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Item
	for _, i := range f.byID {
		if i.OwnerID == owner {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (f *fakeItems) DeleteByIDAndOwner(_ context.Context, id, owner string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	i, ok := f.byID[id]
	if !ok || i.OwnerID != owner {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

// corrupt overwrites an item's envelope in place.
func (f *fakeItems) corrupt(id string, env cryptox.Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Envelope = env
}

type fakeRepoManager struct {
	a *fakeAccounts
	i *fakeItems
}

func (m *fakeRepoManager) RunMigrations(context.Context) error { return nil }
func (m *fakeRepoManager) Accounts() accounts.Repository      { return m.a }
func (m *fakeRepoManager) Items() items.Repository            { return m.i }
func (m *fakeRepoManager) Close(context.Context) error         { return nil }

// --- audit ---

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (s *recordingSink) Record(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.events...)
}

// --- fixture ---

type fixture struct {
	rm       *fakeRepoManager
	sink     *recordingSink
	sessions *auth.SessionIssuer
	accounts *AccountService
	vault    *VaultService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := cryptox.NewHasher(cryptox.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	cipher, err := cryptox.NewCipherFromHex(testKeyHex)
	require.NoError(t, err)
	sessions, err := auth.NewSessionIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	rm := &fakeRepoManager{
		a: &fakeAccounts{byID: map[string]*models.Account{}},
		i: &fakeItems{byID: map[string]*models.Item{}},
	}
	sink := &recordingSink{}
	logger := logging.Nop{}

	return &fixture{
		rm:       rm,
		sink:     sink,
		sessions: sessions,
		accounts: NewAccountService(rm, hasher, sessions, logger),
		vault:    NewVaultService(rm, cipher, hasher, sink, logger),
	}
}

func (f *fixture) register(t *testing.T, name, password string, answers [3]string) *models.AccountView {
	t.Helper()
	view, _, err := f.accounts.Register(context.Background(), name, password, answers)
	require.NoError(t, err)
	return view
}
