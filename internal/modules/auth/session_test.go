package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/olambola-backend/internal/modules/admin"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

type fakeAccounts struct {
	configured bool
	byEmail    map[string]admin.Account
	findErr    error
	updated    map[uuid.UUID]string
}

func newFakeAccounts(accounts ...admin.Account) *fakeAccounts {
	f := &fakeAccounts{configured: true, byEmail: map[string]admin.Account{}, updated: map[uuid.UUID]string{}}
	for _, a := range accounts {
		f.byEmail[a.Email] = a
	}
	return f
}

func (f *fakeAccounts) Configured() bool { return f.configured }

func (f *fakeAccounts) List(context.Context) ([]admin.Account, error) { return nil, nil }

func (f *fakeAccounts) Insert(_ context.Context, a admin.Account) (admin.Account, error) {
	return a, nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (admin.Account, error) {
	if f.findErr != nil {
		return admin.Account{}, f.findErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return admin.Account{}, admin.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) UpdateCredential(_ context.Context, id uuid.UUID, credential string) error {
	f.updated[id] = credential
	return nil
}

func (f *fakeAccounts) Delete(context.Context, uuid.UUID) error { return nil }

func bcryptAccount(t *testing.T, email, password string, role admin.Role) admin.Account {
	t.Helper()
	cred, err := admin.HashPassword(password)
	require.NoError(t, err)
	return admin.Account{ID: uuid.New(), Email: email, Credential: cred, Role: role, CreatedAt: time.Now()}
}

func restore(t *testing.T, store kv.Store, accounts admin.Repository, shared, sid string) *Session {
	t.Helper()
	s, err := Restore(context.Background(), store, accounts, shared, sid)
	require.NoError(t, err)
	return s
}

func TestLogin_PersistsIdentity(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	boss := bcryptAccount(t, "a@x.com", "secret", admin.RoleMainAdmin)
	accounts := newFakeAccounts(boss)

	s := restore(t, store, accounts, "", "sid-1")
	require.NoError(t, s.Login(ctx, " A@x.com ", "secret"))
	assert.True(t, s.IsMainAdmin())

	again := restore(t, store, accounts, "", "sid-1")
	id, ok := again.Identity()
	require.True(t, ok)
	assert.Equal(t, boss.ID, id.ID)
	assert.Equal(t, admin.RoleMainAdmin, id.Role)
	assert.True(t, again.Authenticated())
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeAccounts(bcryptAccount(t, "a@x.com", "secret", admin.RoleAdmin))
	s := restore(t, kv.NewMemory(), accounts, "", "sid-1")

	wrongPassword := s.Login(ctx, "a@x.com", "wrong")
	unknownEmail := s.Login(ctx, "nobody@x.com", "wrong")

	assert.Equal(t, ErrInvalidCredentials, wrongPassword)
	assert.Equal(t, ErrInvalidCredentials, unknownEmail)

	accounts.findErr = &remote.OpError{Op: "admins.select", Err: errors.New("connection refused")}
	assert.Equal(t, ErrInvalidCredentials, s.Login(ctx, "a@x.com", "secret"))
	assert.False(t, s.Authenticated())
}

func TestLogin_NotConfigured(t *testing.T) {
	accounts := newFakeAccounts()
	accounts.configured = false
	s := restore(t, kv.NewMemory(), accounts, "", "sid-1")

	assert.ErrorIs(t, s.Login(context.Background(), "a@x.com", "secret"), remote.ErrNotConfigured)
}

func TestLogin_UpgradesLegacyCredential(t *testing.T) {
	legacy := admin.Account{
		ID:         uuid.New(),
		Email:      "a@x.com",
		Credential: base64.StdEncoding.EncodeToString([]byte("secret")),
		Role:       admin.RoleAdmin,
	}
	accounts := newFakeAccounts(legacy)
	s := restore(t, kv.NewMemory(), accounts, "", "sid-1")

	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret"))

	upgraded, ok := accounts.updated[legacy.ID]
	require.True(t, ok)
	matched, stillLegacy := admin.CheckPassword(upgraded, "secret")
	assert.True(t, matched)
	assert.False(t, stillLegacy)
}

func TestLoginShared_NeverGrantsMainAdmin(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	disabled := restore(t, store, newFakeAccounts(), "", "sid-1")
	assert.ErrorIs(t, disabled.LoginShared(ctx, "anything"), ErrSharedLoginDisabled)

	s := restore(t, store, newFakeAccounts(), "gate-pass", "sid-2")
	assert.ErrorIs(t, s.LoginShared(ctx, "nope"), ErrInvalidCredentials)
	require.NoError(t, s.LoginShared(ctx, "gate-pass"))

	again := restore(t, store, newFakeAccounts(), "gate-pass", "sid-2")
	assert.True(t, again.Authenticated())
	assert.False(t, again.IsMainAdmin())
	_, ok := again.Identity()
	assert.False(t, ok)
}

func TestLogout_ClearsBothKeys(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	accounts := newFakeAccounts(bcryptAccount(t, "a@x.com", "secret", admin.RoleAdmin))

	s := restore(t, store, accounts, "gate-pass", "sid-1")
	require.NoError(t, s.Login(ctx, "a@x.com", "secret"))
	require.NoError(t, s.LoginShared(ctx, "gate-pass"))

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.Authenticated())

	_, err := store.Get(ctx, identityKey("sid-1"))
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, sharedKey("sid-1"))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRestore_CorruptPayloadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, identityKey("sid-1"), []byte("{broken")))

	s := restore(t, store, newFakeAccounts(), "", "sid-1")

	assert.False(t, s.Authenticated())
	_, err := store.Get(ctx, identityKey("sid-1"))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRevoke_DropsSessionsOfRemovedAdmin(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ada := bcryptAccount(t, "ada@x.com", "secret", admin.RoleAdmin)
	bob := bcryptAccount(t, "bob@x.com", "secret", admin.RoleAdmin)
	accounts := newFakeAccounts(ada, bob)

	require.NoError(t, restore(t, store, accounts, "", "sid-ada").Login(ctx, "ada@x.com", "secret"))
	require.NoError(t, restore(t, store, accounts, "", "sid-bob").Login(ctx, "bob@x.com", "secret"))

	require.NoError(t, Revoke(ctx, store, ada.ID))

	s := restore(t, store, accounts, "", "sid-ada")
	assert.False(t, s.Authenticated())
	_, err := store.Get(ctx, identityKey("sid-ada"))
	assert.ErrorIs(t, err, kv.ErrNotFound)

	other := restore(t, store, accounts, "", "sid-bob")
	id, ok := other.Identity()
	require.True(t, ok)
	assert.Equal(t, bob.ID, id.ID)
}
