package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(next http.Handler) http.Handler { return next }

func forbidden(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusForbidden, map[string]string{"error": "main admin only"})
	})
}

func newRouter(t *testing.T, repo *fakeRepo, mw func(http.Handler) http.Handler) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(newTestStore(t, repo), mw).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandler_CreateAndListHidesCredential(t *testing.T) {
	r := newRouter(t, newFakeRepo(), passThrough)

	rec := do(r, http.MethodPost, "/api/v1/admins", `{"email":"ada@olambola.ng","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/admins", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	var list []Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, RoleAdmin, list[0].Role)
}

func TestHandler_Statuses(t *testing.T) {
	boss := account("boss@olambola.ng", RoleMainAdmin, t0)
	r := newRouter(t, newFakeRepo(boss), passThrough)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/admins", `{"email":"nope","password":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/api/v1/admins/"+unknownID+"/password", `{"password":"x"}`).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodDelete, "/api/v1/admins/"+boss.ID.String(), "").Code)
}

func TestHandler_RequiresMainAdmin(t *testing.T) {
	repo := newFakeRepo()
	r := newRouter(t, repo, forbidden)

	rec := do(r, http.MethodPost, "/api/v1/admins", `{"email":"ada@olambola.ng","password":"secret"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.rows)
}

const unknownID = "6f1c2b0e-0000-4000-8000-000000000000"
