// Package api serves the room credential endpoints used by the web client.
package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/token"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	issuer *token.Issuer
	logger *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(issuer *token.Issuer, logger *zap.Logger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/get-token", h.getToken)
	r.Get("/health", h.healthCheck)

	return r
}

// getToken mints a room access token. The room query parameter is required;
// identity and name fall back to generated defaults.
func (h *Handler) getToken(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Room name is required"})
		return
	}

	identity := r.URL.Query().Get("identity")
	if identity == "" {
		identity = defaultIdentity()
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "User"
	}

	jwt, err := h.issuer.Mint(identity, name, token.Grants{
		RoomJoin:     true,
		Room:         room,
		CanPublish:   true,
		CanSubscribe: true,
	})
	if err != nil {
		h.logger.Error("token mint failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.logger.Info("issued room token",
		zap.String("room", room),
		zap.String("identity", identity))

	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken": jwt,
		"identity":    identity,
		"name":        name,
		"room":        room,
	})
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// defaultIdentity generates an anonymous participant identity.
func defaultIdentity() string {
	id := uuid.New()
	return "user-" + hex.EncodeToString(id[:4])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
