package checkin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/risk"
	checkinService "github.com/zhouzirui/neuroguard/backend/internal/service/checkin"
	"github.com/zhouzirui/neuroguard/backend/internal/service/export"
	sessionService "github.com/zhouzirui/neuroguard/backend/internal/service/session"
	"github.com/zhouzirui/neuroguard/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Handler serves sessions, check-ins and the stateless scoring endpoints.
type Handler struct {
	sessions *sessionService.Service
	checkins *checkinService.Service
}

// New creates the check-in handler.
func New(sessions *sessionService.Service, checkins *checkinService.Service) *Handler {
	return &Handler{
		sessions: sessions,
		checkins: checkins,
	}
}

// RegisterRoutes registers check-in routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetSession)
		sr.Delete("/", h.handleDeleteSession)
		sr.Post("/checkins", h.handleAnalyze)
		sr.Get("/checkins", h.handleHistory)
		sr.Delete("/checkins", h.handleReset)
		sr.Get("/checkins/stream", h.handleHistoryStream)
		sr.Get("/export.csv", h.handleExport)
	})
	r.Post("/assess", h.handleAssess)
	r.Post("/crisis", h.handleCrisis)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	entries, err := h.sessions.Entries(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"id":        session.ID,
		"createdAt": session.CreatedAt,
		"checkins":  len(entries),
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	report, err := h.checkins.Analyze(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.checkins.History(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}

// handleHistoryStream replays the session history as Server-Sent Events, one
// "checkin" event per entry followed by a single "end" event.
func (h *Handler) handleHistoryStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	entries, err := h.checkins.History(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	for _, entry := range entries {
		if r.Context().Err() != nil {
			return
		}
		if err := utils.SendSSEEvent(w, flusher, "checkin", entry); err != nil {
			return
		}
	}
	_ = utils.SendSSEEvent(w, flusher, "end", map[string]int{"count": len(entries)})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.checkins.Reset(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	entries, err := h.checkins.History(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "checkins-"+sessionID+".csv"))
	if err := export.WriteCSV(w, entries); err != nil {
		slog.Error("csv export failed", "session", sessionID, "error", err)
	}
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Label      string   `json:"label"`
		Confidence *float64 `json:"confidence"`
		History    []string `json:"history"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Confidence == nil {
		utils.RespondError(w, http.StatusBadRequest, "confidence is required")
		return
	}

	assessment, err := h.checkins.Assess(payload.Label, *payload.Confidence, payload.History)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, assessment)
}

func (h *Handler) handleCrisis(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	matches := h.checkins.DetectCrisis(payload.Text)
	if matches == nil {
		matches = []string{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"crisis":  len(matches) > 0,
		"matches": matches,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var classErr *checkinService.ClassificationError
	switch {
	case errors.Is(err, sessionService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkinService.ErrEmptyText), errors.Is(err, risk.ErrInvalidConfidence):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &classErr):
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":  "emotion analysis unavailable, please try again",
			"reason": string(classErr.Reason),
		})
	default:
		slog.Error("check-in request failed", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
