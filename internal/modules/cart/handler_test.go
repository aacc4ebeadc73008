package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/olambola-backend/internal/modules/catalog"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
)

type stubCatalog map[uuid.UUID]catalog.Product

func (s stubCatalog) Get(id uuid.UUID) (catalog.Product, bool) {
	p, ok := s[id]
	return p, ok
}

type client struct {
	t      *testing.T
	router *chi.Mux
	cookie *http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == VisitorCookie {
			c.cookie = ck
		}
	}
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) cartView {
	t.Helper()
	var v cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func newClient(t *testing.T, products ...catalog.Product) *client {
	t.Helper()
	stub := stubCatalog{}
	for _, p := range products {
		stub[p.ID] = p
	}
	r := chi.NewRouter()
	NewHandler(kv.NewMemory(), stub, "2348180129670", 24*time.Hour).RegisterRoutes(r)
	return &client{t: t, router: r}
}

func TestHandler_AddSetQuantityCheckout(t *testing.T) {
	chicken := catalog.Product{ID: uuid.New(), Name: "Chicken", Price: decimal.NewFromInt(2000)}
	c := newClient(t, chicken)
	itemPath := "/api/v1/cart/items/" + chicken.ID.String()

	rec := c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie)

	rec = c.do(http.MethodPut, itemPath, `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, "6000", v.Total)

	rec = c.do(http.MethodPost, "/api/v1/cart/checkout", `{"full_name":"Ada","phone":"0803","address":"Lagos"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var h Handoff
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Contains(t, h.Message, "Chicken x3 = ₦6,000")

	v = decodeView(t, c.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Empty(t, v.Lines)
}

func TestHandler_RejectsFractionalQuantity(t *testing.T) {
	chicken := catalog.Product{ID: uuid.New(), Name: "Chicken", Price: decimal.NewFromInt(2000)}
	c := newClient(t, chicken)
	c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)

	rec := c.do(http.MethodPut, "/api/v1/cart/items/"+chicken.ID.String(), `{"quantity":2.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	v := decodeView(t, c.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, 1, v.Count)
}

func TestHandler_QuantityLimit(t *testing.T) {
	chicken := catalog.Product{ID: uuid.New(), Name: "Chicken", Price: decimal.NewFromInt(2000)}
	c := newClient(t, chicken)
	itemPath := "/api/v1/cart/items/" + chicken.ID.String()
	c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)

	for _, body := range []string{`{"quantity":9223372036854775807}`, `{"quantity":1000}`, `{"quantity":99999999999999999999}`} {
		rec := c.do(http.MethodPut, itemPath, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := c.do(http.MethodPut, itemPath, `{"quantity":999}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	v := decodeView(t, c.do(http.MethodGet, "/api/v1/cart", ""))
	require.Len(t, v.Lines, 1)
	assert.Equal(t, MaxQuantity, v.Count)
	assert.Equal(t, "1998000", v.Total)
}

func TestHandler_OversizedBodyIsRejected(t *testing.T) {
	chicken := catalog.Product{ID: uuid.New(), Name: "Chicken", Price: decimal.NewFromInt(2000)}
	c := newClient(t, chicken)
	c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)

	body := `{"full_name":"` + strings.Repeat("a", maxBodyBytes) + `","phone":"08012345678","address":"12 Marina Road"}`
	rec := c.do(http.MethodPost, "/api/v1/cart/checkout", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")

	v := decodeView(t, c.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, 1, v.Count)
}

func TestHandler_UnknownProduct(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CheckoutValidation(t *testing.T) {
	chicken := catalog.Product{ID: uuid.New(), Name: "Chicken", Price: decimal.NewFromInt(2000)}
	c := newClient(t, chicken)

	rec := c.do(http.MethodPost, "/api/v1/cart/checkout", `{"full_name":"Ada","phone":"0803","address":"Lagos"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")

	c.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)
	rec = c.do(http.MethodPost, "/api/v1/cart/checkout", `{"full_name":"Ada","phone":"","address":"Lagos"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	v := decodeView(t, c.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Equal(t, 1, v.Count)
}

func TestHandler_VisitorsAreIsolated(t *testing.T) {
	chicken := catalog.Product{ID: uuid.New(), Name: "Chicken", Price: decimal.NewFromInt(2000)}
	first := newClient(t, chicken)
	first.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+chicken.ID.String()+`"}`)

	second := &client{t: t, router: first.router}
	v := decodeView(t, second.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Empty(t, v.Lines)

	v = decodeView(t, first.do(http.MethodGet, "/api/v1/cart", ""))
	assert.Len(t, v.Lines, 1)
}
