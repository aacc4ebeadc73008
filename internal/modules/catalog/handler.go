package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// Handler exposes catalog HTTP endpoints. Reads are public; writes go through
// requireAdmin.
type Handler struct {
	store        *Store
	hub          *Hub
	requireAdmin func(http.Handler) http.Handler
}

func NewHandler(store *Store, hub *Hub, requireAdmin func(http.Handler) http.Handler) *Handler {
	return &Handler{store: store, hub: hub, requireAdmin: requireAdmin}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", h.listProducts) // ?category=POULTRY
		r.Get("/products/{id}", h.getProduct)
		if h.hub != nil {
			r.Get("/live", h.hub.ServeWS)
		}

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
		})
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		respond(w, http.StatusOK, h.store.List())
		return
	}
	c, ok := ParseCategory(raw)
	if !ok {
		respond(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown category %q", raw)})
		return
	}
	respond(w, http.StatusOK, h.store.ListByCategory(c))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	p, ok := h.store.Get(id)
	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": ErrNotFound.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	d, img, err := decodeDraft(w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer closeImage(img)
	p, err := h.store.Create(r.Context(), d, img)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	d, img, err := decodeDraft(w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer closeImage(img)
	p, err := h.store.Update(r.Context(), id, d, img)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const (
	maxJSONBytes = 1 << 20
	maxFormBytes = MaxImageSize + 1<<20
)

// decodeDraft reads a product form, either multipart (with an optional
// "image" file) or a JSON body, and validates it. The caller closes the
// returned image with closeImage.
func decodeDraft(w http.ResponseWriter, r *http.Request) (Draft, *Image, error) {
	var (
		d   Draft
		img *Image
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseMultipartForm(MaxImageSize + 1<<20); err != nil {
			return Draft{}, nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
		d.Name = r.FormValue("name")
		d.Category = Category(r.FormValue("category"))
		d.Description = r.FormValue("description")
		d.Size = strings.TrimSpace(r.FormValue("size"))
		d.ImageURL = strings.TrimSpace(r.FormValue("image_url"))

		price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
		if err != nil {
			return Draft{}, nil, fmt.Errorf("%w: price must be a number", ErrInvalidDraft)
		}
		d.Price = price
		if raw := strings.TrimSpace(r.FormValue("kg")); raw != "" {
			kg, err := decimal.NewFromString(raw)
			if err != nil {
				return Draft{}, nil, fmt.Errorf("%w: kg must be a number", ErrInvalidDraft)
			}
			d.Weight = &kg
		}

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return Draft{}, nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		default:
			img = &Image{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
			if err := img.Validate(); err != nil {
				file.Close()
				return Draft{}, nil, err
			}
		}
	} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&d); err != nil {
		return Draft{}, nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	if err := d.Validate(); err != nil {
		closeImage(img)
		return Draft{}, nil, err
	}
	return d, img, nil
}

// closeImage releases the uploaded file behind img, if any.
func closeImage(img *Image) {
	if img == nil {
		return
	}
	if c, ok := img.Body.(io.Closer); ok {
		c.Close()
	}
}

func fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("catalog request failed", "status", status, "error", err)
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidDraft):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case remote.IsNotConfigured(err):
		return http.StatusServiceUnavailable
	case remote.IsRemoteFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
