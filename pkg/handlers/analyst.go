package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/analyst"
	"github.com/evinsights/analyst-engine/pkg/apperrors"
	"github.com/evinsights/analyst-engine/pkg/repositories"
)

// AskRequest is the request body for POST /api/v1/analyst/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AnalystHandler serves the natural-language query endpoints.
type AnalystHandler struct {
	service      *analyst.Service
	history      *repositories.AnalystHistoryRepository
	historyLimit int
	logger       *zap.Logger

	// The chat assistant is a single shared session; the conversation is
	// mutated per turn and must not see interleaved turns.
	mu           sync.Mutex
	conversation *analyst.Conversation
}

// NewAnalystHandler creates a new AnalystHandler.
func NewAnalystHandler(service *analyst.Service, history *repositories.AnalystHistoryRepository, historyLimit int, logger *zap.Logger) *AnalystHandler {
	return &AnalystHandler{
		service:      service,
		history:      history,
		historyLimit: historyLimit,
		logger:       logger,
		conversation: analyst.NewConversation(10),
	}
}

// RegisterRoutes registers the analyst routes on the given mux.
func (h *AnalystHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/v1/analyst"
	mux.HandleFunc("POST "+base+"/ask", h.Ask)
	mux.HandleFunc("GET "+base+"/history", h.History)
	mux.HandleFunc("DELETE "+base+"/history", h.ClearHistory)
}

// Ask handles POST /api/v1/analyst/ask.
func (h *AnalystHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a question field")
		return
	}

	h.mu.Lock()
	resp, err := h.service.Ask(r.Context(), req.Question, h.conversation)
	h.mu.Unlock()
	if err != nil {
		h.writeAskError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to encode ask response", zap.Error(err))
	}
}

func (h *AnalystHandler) writeAskError(w http.ResponseWriter, err error) {
	var execErr *apperrors.QueryExecutionError

	switch {
	case errors.Is(err, apperrors.ErrEmptyQuestion):
		_ = ErrorResponse(w, http.StatusBadRequest, "empty_question", err.Error())
	case errors.Is(err, apperrors.ErrQuestionRejected):
		_ = ErrorResponse(w, http.StatusBadRequest, "question_rejected", err.Error())
	case errors.Is(err, apperrors.ErrNoQueryFormed):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "no_query_formed", err.Error())
	case errors.As(err, &execErr):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "query_failed", execErr.Error())
	case errors.Is(err, apperrors.ErrConnectivity):
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "database_unavailable", err.Error())
	case errors.Is(err, apperrors.ErrSynthesis):
		_ = ErrorResponse(w, http.StatusBadGateway, "synthesis_failed", err.Error())
	default:
		h.logger.Error("ask failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// History handles GET /api/v1/analyst/history.
func (h *AnalystHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	turns, err := h.history.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list history", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list history")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"turns": turns}); err != nil {
		h.logger.Error("failed to encode history response", zap.Error(err))
	}
}

// ClearHistory handles DELETE /api/v1/analyst/history.
func (h *AnalystHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.history.Clear(r.Context())
	if err != nil {
		h.logger.Error("failed to clear history", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to clear history")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted}); err != nil {
		h.logger.Error("failed to encode clear response", zap.Error(err))
	}
}
