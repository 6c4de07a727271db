package quiz

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/math-quiz/internal/question"
	httperrors "github.com/gokatarajesh/math-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/math-quiz/pkg/http/ws"
)

// HTTPHandlers provides REST endpoints for the question bank and sessions.
type HTTPHandlers struct {
	service *Service
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers. hub may be nil; when set, views
// changed over HTTP are pushed to the session's WebSocket viewers.
func NewHTTPHandlers(service *Service, hub *ws.Hub, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		hub:     hub,
		logger:  logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Register mounts the endpoints on mux.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/bank", h.GetBank)
	mux.HandleFunc("POST /v1/bank/reload", h.ReloadBank)
	mux.HandleFunc("POST /v1/sessions", h.CreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/actions", h.ApplyAction)
}

// BankResponse describes the loaded bank.
type BankResponse struct {
	Subjects []BankSubject   `json:"subjects"`
	Stats    question.Stats  `json:"stats"`
	Notice   string          `json:"notice,omitempty"`
	Issues   []QuestionIssue `json:"issues,omitempty"`
}

type BankSubject struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

type QuestionIssue struct {
	Subject string `json:"subject"`
	Index   int    `json:"index"`
	Problem string `json:"problem"`
}

// GetBank handles GET /v1/bank
func (h *HTTPHandlers) GetBank(w http.ResponseWriter, r *http.Request) {
	bank := h.service.Bank(r.Context())
	httperrors.RespondJSON(w, http.StatusOK, h.bankResponse(bank, h.service.Notice()))
}

// ReloadBank handles POST /v1/bank/reload
func (h *HTTPHandlers) ReloadBank(w http.ResponseWriter, r *http.Request) {
	bank, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("forced reload fell back")
	}
	httperrors.RespondJSON(w, http.StatusOK, h.bankResponse(bank, err))
}

// CreateSession handles POST /v1/sessions
func (h *HTTPHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req Overrides
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	view, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, nil, h.logger)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /v1/sessions/{id}
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, nil, h.logger)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /v1/sessions/{id}
func (h *HTTPHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err, nil, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyAction handles POST /v1/sessions/{id}/actions
func (h *HTTPHandlers) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var action Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if action.Type == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "type is required", "type")
		return
	}

	id := r.PathValue("id")
	view, err := h.service.Apply(r.Context(), id, action)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionBusy) {
			respondServiceError(w, err, nil, h.logger)
			return
		}
		respondServiceError(w, err, &view, h.logger)
		return
	}

	pushView(h.hub, view, h.logger)
	httperrors.RespondJSON(w, http.StatusOK, view)
}

func (h *HTTPHandlers) bankResponse(bank question.Bank, notice error) BankResponse {
	resp := BankResponse{Stats: bank.Stats()}
	for _, s := range bank.Subjects {
		resp.Subjects = append(resp.Subjects, BankSubject{Name: s.Name, Questions: len(s.Questions)})
	}
	for _, issue := range bank.Issues() {
		resp.Issues = append(resp.Issues, QuestionIssue{Subject: issue.Subject, Index: issue.Index, Problem: issue.Problem})
	}
	if notice != nil {
		resp.Notice = notice.Error()
	}
	return resp
}

// respondServiceError writes err with its mapped status. A non-nil view is
// attached so the client can keep rendering the unchanged session.
func respondServiceError(w http.ResponseWriter, err error, view *View, logger zerolog.Logger) {
	code := ErrorCode(err)
	status := httperrors.StatusFor(code)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("session request failed")
		httperrors.RespondInternalError(w, "Internal error")
		return
	}
	if view == nil {
		httperrors.RespondError(w, status, code, err.Error())
		return
	}
	httperrors.RespondErrorWithDetails(w, status, code, err.Error(), map[string]interface{}{"view": view})
}
