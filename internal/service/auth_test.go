package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	mocks "github.com/inkhouse/storyapi/internal/mocks/auth"
	"github.com/inkhouse/storyapi/internal/token"
)

func newTestAuthService(t *testing.T, provider *mocks.MockIdentityProvider, repo *fakeAccountRepo) *AuthService {
	t.Helper()
	codec, err := token.NewCodec(token.Config{Secret: "test-secret"})
	require.NoError(t, err)
	return NewAuthService(AuthServiceOptions{
		Codec:    codec,
		Provider: provider,
		Accounts: NewAccountService(AccountServiceOptions{Repo: repo}),
	})
}

func TestAuthService_BeginLogin_EmbedsState(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc := newTestAuthService(t, provider, newFakeAccountRepo())

	authURL, err := svc.BeginLogin("https://stories.example.com")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)

	// the state round-trips back to the origin
	returnTo, err := svc.ConsumeState(state)
	require.NoError(t, err)
	assert.Equal(t, "https://stories.example.com", returnTo)
}

func TestAuthService_ConsumeState_RejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t, mocks.NewMockIdentityProvider(), newFakeAccountRepo())

	_, err := svc.ConsumeState("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidState)

	// a session token is not a state token
	sessionToken, _, err2 := svc.CompleteLogin(context.Background(), "nope")
	assert.Error(t, err2)
	assert.Empty(t, sessionToken)
}

func TestAuthService_CompleteLogin_Success(t *testing.T) {
	provider := mocks.NewMockIdentityProvider().Accept("abc123", "alice@example.com")
	repo := newFakeAccountRepo()
	repo.add("alice@example.com", domainauth.RoleEditor)
	svc := newTestAuthService(t, provider, repo)

	sessionToken, identity, err := svc.CompleteLogin(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, domainauth.RoleEditor, identity.Role)

	// the minted token verifies as a session
	got, present, err := svc.VerifySession(context.Background(), sessionToken)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, identity, got)
}

func TestAuthService_CompleteLogin_ExchangeFailure(t *testing.T) {
	svc := newTestAuthService(t, mocks.NewMockIdentityProvider(), newFakeAccountRepo())

	_, _, err := svc.CompleteLogin(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrExchangeFailed)
}

func TestAuthService_CompleteLogin_NoRole(t *testing.T) {
	provider := mocks.NewMockIdentityProvider().Accept("abc123", "mallory@example.com")
	repo := newFakeAccountRepo()
	repo.add("alice@example.com", domainauth.RoleEditor)
	svc := newTestAuthService(t, provider, repo)

	_, _, err := svc.CompleteLogin(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrNoRole)
}

func TestAuthService_UpgradeRawToken(t *testing.T) {
	provider := mocks.NewMockIdentityProvider().AcceptRaw("legacy-token", "bob@example.com")
	repo := newFakeAccountRepo()
	repo.add("bob@example.com", domainauth.RoleReader)
	svc := newTestAuthService(t, provider, repo)

	sessionToken, identity, err := svc.UpgradeRawToken(context.Background(), "legacy-token")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleReader, identity.Role)

	_, present, err := svc.VerifySession(context.Background(), sessionToken)
	require.NoError(t, err)
	assert.True(t, present)

	// an unknown raw token does not upgrade
	_, _, err = svc.UpgradeRawToken(context.Background(), "junk")
	assert.ErrorIs(t, err, ErrExchangeFailed)
}

func TestAuthService_VerifySession_InvalidToken(t *testing.T) {
	svc := newTestAuthService(t, mocks.NewMockIdentityProvider(), newFakeAccountRepo())

	_, present, err := svc.VerifySession(context.Background(), "garbage")
	require.NoError(t, err)
	assert.False(t, present)
}
