package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// Handler exposes the admin directory. Every route requires the main admin.
type Handler struct {
	store            *Store
	requireMainAdmin func(http.Handler) http.Handler
}

func NewHandler(store *Store, requireMainAdmin func(http.Handler) http.Handler) *Handler {
	return &Handler{store: store, requireMainAdmin: requireMainAdmin}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/admins", func(r chi.Router) {
		r.Use(h.requireMainAdmin)
		r.Get("/", h.listAdmins)
		r.Post("/", h.createAdmin)
		r.Put("/{id}/password", h.updatePassword)
		r.Delete("/{id}", h.deleteAdmin)
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := h.store.Refresh(r.Context()); err != nil {
			fail(w, err)
			return
		}
	}
	respond(w, http.StatusOK, h.store.List())
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	account, err := h.store.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, account)
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid admin id"})
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.store.UpdatePassword(r.Context(), id, req.Password); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid admin id"})
		return
	}
	if a, ok := h.store.Get(id); ok && a.Role == RoleMainAdmin {
		respond(w, http.StatusConflict, map[string]string{"error": "the main admin cannot be deleted"})
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// isDuplicateKey reports a PostgreSQL unique constraint violation (23505).
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidAccount):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case isDuplicateKey(err):
		status = http.StatusConflict
	case remote.IsNotConfigured(err):
		status = http.StatusServiceUnavailable
	case remote.IsRemoteFailure(err):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		logger.Error("admin request failed", "status", status, "error", err)
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
