package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkhouse/storyapi/internal/data"
	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// fakeAccountRepo is an in-memory AccountRepository for unit tests.
type fakeAccountRepo struct {
	accounts  map[string]*model.AllowedAccount
	lookupErr error
	countErr  error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*model.AllowedAccount{}}
}

func (f *fakeAccountRepo) add(email string, role domainauth.Role) {
	f.accounts[email] = &model.AllowedAccount{ID: "id-" + email, Email: email, Role: role}
}

func (f *fakeAccountRepo) Lookup(_ context.Context, email string) (*model.AllowedAccount, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	// case-insensitive like the real repo
	for k, v := range f.accounts {
		if strings.EqualFold(k, email) {
			return v, nil
		}
	}
	return nil, data.ErrAccountNotFound
}

func (f *fakeAccountRepo) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.accounts), nil
}

func (f *fakeAccountRepo) Create(_ context.Context, req *model.CreateAccountRequest) (*model.AllowedAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, exists := f.accounts[req.Email]; exists {
		return nil, data.ErrAccountExists
	}
	f.add(req.Email, req.Role)
	return f.accounts[req.Email], nil
}

func (f *fakeAccountRepo) List(context.Context) ([]*model.AllowedAccount, error) {
	out := make([]*model.AllowedAccount, 0, len(f.accounts))
	for _, v := range f.accounts {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id string) (bool, error) {
	for k, v := range f.accounts {
		if v.ID == id {
			delete(f.accounts, k)
			return true, nil
		}
	}
	return false, nil
}

func TestAccountService_ResolveRole_Listed(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.add("alice@example.com", domainauth.RoleEditor)
	repo.add("bob@example.com", domainauth.RoleReader)
	svc := NewAccountService(AccountServiceOptions{Repo: repo})

	role, err := svc.ResolveRole(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleEditor, role)

	role, err = svc.ResolveRole(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleReader, role)

	// case-insensitive
	role, err = svc.ResolveRole(context.Background(), "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleEditor, role)
}

func TestAccountService_ResolveRole_NormalizesStoredRole(t *testing.T) {
	repo := newFakeAccountRepo()
	// rows written out of band can carry any role string
	repo.add("admin@example.com", domainauth.Role("admin"))
	repo.add("casey@example.com", domainauth.Role("Reader"))
	svc := NewAccountService(AccountServiceOptions{Repo: repo})

	role, err := svc.ResolveRole(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleEditor, role)

	role, err = svc.ResolveRole(context.Background(), "casey@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleReader, role)
}

func TestAccountService_ResolveRole_EmptyListBootstrap(t *testing.T) {
	svc := NewAccountService(AccountServiceOptions{Repo: newFakeAccountRepo()})

	role, err := svc.ResolveRole(context.Background(), "anyone@example.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleEditor, role)
}

func TestAccountService_ResolveRole_UnlistedDenied(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.add("alice@example.com", domainauth.RoleEditor)
	svc := NewAccountService(AccountServiceOptions{Repo: repo})

	_, err := svc.ResolveRole(context.Background(), "mallory@example.com")
	assert.ErrorIs(t, err, ErrNoRole)
}

func TestAccountService_ResolveRole_StoreFailureIsDenied(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.lookupErr = errors.New("connection refused")
	svc := NewAccountService(AccountServiceOptions{Repo: repo})

	_, err := svc.ResolveRole(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrNoRole)

	// count failing after a miss also denies
	repo2 := newFakeAccountRepo()
	repo2.countErr = errors.New("connection refused")
	svc2 := NewAccountService(AccountServiceOptions{Repo: repo2})

	_, err = svc2.ResolveRole(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrNoRole)
}
