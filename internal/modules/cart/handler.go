package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/olambola-backend/internal/modules/catalog"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
)

// VisitorCookie identifies an anonymous storefront visitor.
const VisitorCookie = "olambola_visitor"

// Catalog is the product lookup the cart snapshots from.
type Catalog interface {
	Get(id uuid.UUID) (catalog.Product, bool)
}

// Handler exposes the storefront cart. Visitors are identified by cookie;
// one is issued on first contact.
type Handler struct {
	store   kv.Store
	catalog Catalog
	contact string
	ttl     time.Duration
}

func NewHandler(store kv.Store, catalog Catalog, contact string, ttl time.Duration) *Handler {
	return &Handler{store: store, catalog: catalog, contact: contact, ttl: ttl}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{id}", h.setQuantity)
		r.Delete("/items/{id}", h.removeItem)
		r.Post("/checkout", h.checkout)
	})
}

type cartView struct {
	Lines []Line `json:"lines"`
	Count int    `json:"count"`
	Total string `json:"total"`
}

func view(c *Cart) cartView {
	return cartView{Lines: c.Lines(), Count: c.Count(), Total: c.Total().String()}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.open(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, view(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := c.Clear(r.Context()); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, view(c))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "product_id must be a product id"})
		return
	}
	p, found := h.catalog.Get(req.ProductID)
	if !found {
		respond(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	c, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := c.Add(r.Context(), Product{ID: p.ID, Name: p.Name, Price: p.Price}); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, view(c))
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	var req struct {
		Quantity json.Number `json:"quantity"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	qty, err := req.Quantity.Int64()
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "quantity must be a whole number"})
		return
	}
	if qty > MaxQuantity {
		respond(w, http.StatusBadRequest, map[string]string{"error": ErrQuantityLimit.Error()})
		return
	}
	if qty < 0 {
		qty = 0
	}

	c, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := c.SetQuantity(r.Context(), id, int(qty)); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, view(c))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	c, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := c.Remove(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, view(c))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var cu Customer
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&cu); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := cu.Validate(); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	c, ok := h.open(w, r)
	if !ok {
		return
	}
	handoff, err := c.Checkout(r.Context(), h.contact, cu)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, handoff)
}

// open loads the caller's cart, issuing a visitor cookie when there is none.
func (h *Handler) open(w http.ResponseWriter, r *http.Request) (*Cart, bool) {
	c, err := New(r.Context(), h.store, Key(h.visitor(w, r)))
	if err != nil {
		fail(w, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) visitor(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidCustomer), errors.Is(err, ErrQuantityLimit):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		respond(w, http.StatusRequestTimeout, map[string]string{"error": err.Error()})
	default:
		logger.Error("cart request failed", "error", err)
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
