package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

type Handler struct {
	service    Service
	middleware *Middleware
}

func NewHandler(service Service, middleware *Middleware) *Handler {
	return &Handler{service: service, middleware: middleware}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/login/shared", h.loginShared)
		r.With(h.middleware.RequireAuthenticated).Post("/logout", h.logout)
		r.With(h.middleware.RequireAuthenticated).Get("/me", h.me)
	})
}

type sessionView struct {
	Token         string    `json:"token,omitempty"`
	Admin         *Identity `json:"admin,omitempty"`
	Authenticated bool      `json:"authenticated"`
	MainAdmin     bool      `json:"main_admin"`
}

func viewOf(token string, s *Session) sessionView {
	v := sessionView{Token: token, Authenticated: s.Authenticated(), MainAdmin: s.IsMainAdmin()}
	if id, ok := s.Identity(); ok {
		v.Admin = &id
	}
	return v
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	token, sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, viewOf(token, sess))
}

func (h *Handler) loginShared(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	token, sess, err := h.service.LoginShared(r.Context(), req.Password)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, viewOf(token, sess))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := FromContext(r.Context())
	if err := sess.Logout(r.Context()); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess, _ := FromContext(r.Context())
	respond(w, http.StatusOK, viewOf("", sess))
}

func fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrSharedLoginDisabled), errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case remote.IsNotConfigured(err):
		status = http.StatusServiceUnavailable
	case remote.IsRemoteFailure(err):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		logger.Error("auth request failed", "status", status, "error", err)
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
