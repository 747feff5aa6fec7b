package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/domain"
	"github.com/elsayed85/quick-rag/internal/service"
)

type Handler struct {
	svc      Asker
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(svc Asker, log *zap.Logger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), log: log}
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Post("/api/ask", h.handleAsk)
}

// askRequest is the wire form of a question; include_sources defaults to false.
type askRequest struct {
	Question       string `json:"question" validate:"required,max=2000"`
	IncludeSources bool   `json:"include_sources"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJson(w, map[string]any{
		"message": "School Books RAG API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /api/ask": "Ask a question about the school books",
			"GET /health":   "Check API and vector index health",
			"GET /metrics":  "Prometheus metrics",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, h.svc.Health(r.Context()))
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.svc.Ask(r.Context(), service.AskRequest{Question: req.Question, IncludeSources: req.IncludeSources})
	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			h.log.Error("ask failed", zap.Error(err), zap.Int("status", code))
		}
		writeError(w, code, err)
		return
	}
	writeJson(w, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	detail := http.StatusText(code)

	if err != nil {
		detail = err.Error()
	}

	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
