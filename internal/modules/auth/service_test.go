package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/olambola-backend/internal/modules/admin"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
)

func newTestService(t *testing.T, accounts admin.Repository) Service {
	t.Helper()
	return NewService(kv.NewMemory(), accounts, Options{
		Secret:         []byte("test-secret"),
		TTL:            time.Hour,
		SharedPassword: "gate-pass",
	})
}

func TestService_TokenRoundTripAndLogout(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeAccounts(bcryptAccount(t, "a@x.com", "secret", admin.RoleAdmin)))

	token, sess, err := svc.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	resolved, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), resolved.ID())

	require.NoError(t, resolved.Logout(ctx))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_RemovedAdminTokenStopsWorking(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ada := bcryptAccount(t, "ada@x.com", "secret", admin.RoleAdmin)
	svc := NewService(store, newFakeAccounts(ada), Options{Secret: []byte("test-secret"), TTL: time.Hour})

	token, _, err := svc.Login(ctx, "ada@x.com", "secret")
	require.NoError(t, err)

	require.NoError(t, Revoke(ctx, store, ada.ID))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestService_RejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeAccounts())
	other := NewService(kv.NewMemory(), newFakeAccounts(), Options{Secret: []byte("other"), SharedPassword: "gate-pass"})

	token, _, err := other.LoginShared(ctx, "gate-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Authenticate(ctx, "not.a.token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func newAuthRouter(svc Service) *chi.Mux {
	mw := NewMiddleware(svc)
	r := chi.NewRouter()
	NewHandler(svc, mw).RegisterRoutes(r)
	r.With(mw.RequireMainAdmin).Get("/main-only", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func call(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_Tiers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeAccounts(
		bcryptAccount(t, "boss@x.com", "secret", admin.RoleMainAdmin),
		bcryptAccount(t, "ada@x.com", "secret", admin.RoleAdmin),
	))
	r := newAuthRouter(svc)

	bossToken, _, err := svc.Login(ctx, "boss@x.com", "secret")
	require.NoError(t, err)
	adaToken, _, err := svc.Login(ctx, "ada@x.com", "secret")
	require.NoError(t, err)
	sharedToken, _, err := svc.LoginShared(ctx, "gate-pass")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/main-only", "", "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/main-only", adaToken, "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/main-only", sharedToken, "").Code)
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodGet, "/main-only", bossToken, "").Code)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/auth/me", sharedToken, "").Code)
}

func TestHandler_LoginAndLogout(t *testing.T) {
	svc := newTestService(t, newFakeAccounts(bcryptAccount(t, "a@x.com", "secret", admin.RoleAdmin)))
	r := newAuthRouter(svc)

	rec := call(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrInvalidCredentials.Error())

	rec = call(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@x.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var v sessionView
	require.NoError(t, jsonDecode(rec, &v))
	require.NotEmpty(t, v.Token)
	assert.False(t, v.MainAdmin)

	assert.Equal(t, http.StatusNoContent, call(r, http.MethodPost, "/api/v1/auth/logout", v.Token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/auth/me", v.Token, "").Code)
}

func jsonDecode(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
