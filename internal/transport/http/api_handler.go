package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"longevity-frame/internal/app"
	"longevity-frame/internal/config"
	"longevity-frame/internal/domain"
	"longevity-frame/internal/identity"
)

// APIHandler serves the JSON endpoints next to the frame.
type APIHandler struct {
	scores   *app.ScoreService
	manifest config.Manifest
	log      *zap.Logger
	now      func() time.Time
}

func NewAPIHandler(scores *app.ScoreService, manifest config.Manifest, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{scores: scores, manifest: manifest, log: log, now: time.Now}
}

type submitScoresRequest struct {
	Answers []domain.Answer `json:"answers"`
}

type leaderboardResponse struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type scoresResponse struct {
	Scores []domain.HistoryEntry `json:"scores"`
}

type rankResponse struct {
	Rank int `json:"rank"`
}

type webhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Leaderboard returns the top entries, ?limit= defaulting to 10.
func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", app.DefaultLeaderboardLimit)
	entries, err := h.scores.Leaderboard(r.Context(), limit)
	if err != nil {
		h.log.Error("leaderboard", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
}

// UserScores returns the caller's history, newest first.
func (h *APIHandler) UserScores(w http.ResponseWriter, r *http.Request) {
	history, err := h.scores.History(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, "user scores", err)
		return
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: history})
}

// SubmitScores scores and saves an answer set for the caller.
func (h *APIHandler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	who := identity.FromContext(r.Context())
	if who == nil {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req submitScoresRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		writeJSONError(w, http.StatusBadRequest, "answers are required")
		return
	}

	result, err := h.scores.RecordAttempt(r.Context(), app.PersistRequest{
		UserID:   who.UserID,
		Username: who.Username,
		Answers:  req.Answers,
	})
	if err != nil {
		h.writeServiceError(w, "submit scores", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Rank returns the caller's 1-based leaderboard position, or -1.
func (h *APIHandler) Rank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.scores.Rank(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, "user rank", err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Rank: rank})
}

// Manifest serves the mini-app manifest.
func (h *APIHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, map[string]config.Manifest{"miniapp": h.manifest})
}

// Webhook acknowledges mini-app events. Payloads are logged, not acted on.
func (h *APIHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, 256<<10)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookResponse{Error: "Invalid webhook payload"})
		return
	}
	h.log.Info("webhook received", zap.Any("payload", payload))
	writeJSON(w, http.StatusOK, webhookResponse{
		Success:   true,
		Message:   "Webhook received successfully",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// WebhookHealth lets the hosting platform probe the webhook URL.
func (h *APIHandler) WebhookHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *APIHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrBankNotFound):
		writeJSONError(w, http.StatusNotFound, "question bank not found")
	default:
		h.log.Error(op, zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
