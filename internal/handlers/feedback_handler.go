package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"zia/internal/feedback"
	"zia/internal/models"
	"zia/internal/utils"
)

// FeedbackService is the part of the feedback manager the HTTP layer uses
type FeedbackService interface {
	SubmitFeedback(requestID string, isPositive bool) error
	GetFeedbackSince(since time.Time, limit int) ([]models.AIFeedback, error)
	ExportToJSONL(feedback []models.AIFeedback) ([]byte, error)
	GetFeedbackStats() (*feedback.Stats, error)
}

type FeedbackHandler struct {
	feedbackManager FeedbackService
	logger          *zap.Logger
	now             func() time.Time
}

func NewFeedbackHandler(feedbackManager FeedbackService, logger *zap.Logger) *FeedbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackHandler{
		feedbackManager: feedbackManager,
		logger:          logger,
		now:             time.Now,
	}
}

// SubmitFeedbackRequest represents the request body for feedback submission
type SubmitFeedbackRequest struct {
	IsPositive bool `json:"is_positive"`
}

// SubmitFeedback handles POST /api/v1/feedback/{request_id}
func (fh *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")
	if requestID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "request_id is required",
		})
		return
	}

	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "invalid request body",
		})
		return
	}

	err := fh.feedbackManager.SubmitFeedback(requestID, req.IsPositive)
	switch {
	case errors.Is(err, feedback.ErrContextNotFound):
		utils.WriteJSON(w, http.StatusNotFound, models.Resp{
			OK:   false,
			Info: "request not found or expired",
		})
		return
	case errors.Is(err, feedback.ErrAlreadyRated):
		utils.WriteJSON(w, http.StatusConflict, models.Resp{
			OK:   false,
			Info: "feedback already submitted",
		})
		return
	case err != nil:
		fh.logger.Error("failed to submit feedback", zap.String("request_id", requestID), zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to submit feedback",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: "feedback submitted successfully",
	})
}

// ExportFeedback handles GET /api/v1/feedback/export
// Query params:
// - days: number of days to look back (default: 7)
// - limit: maximum number of records (optional)
// - format: "jsonl" (default) or "json"
func (fh *FeedbackHandler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	days := positiveIntParam(r, "days", 7)
	limit := positiveIntParam(r, "limit", 0)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "jsonl"
	}
	if format != "jsonl" && format != "json" {
		utils.WriteJSON(w, http.StatusBadRequest, models.Resp{
			OK:   false,
			Info: "format must be jsonl or json",
		})
		return
	}

	since := fh.now().AddDate(0, 0, -days)
	records, err := fh.feedbackManager.GetFeedbackSince(since, limit)
	if err != nil {
		fh.logger.Error("failed to get feedback", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to export feedback",
		})
		return
	}

	if len(records) == 0 {
		utils.WriteJSON(w, http.StatusOK, models.Resp{
			OK:   true,
			Info: "no feedback to export",
		})
		return
	}

	if format == "json" {
		utils.WriteJSON(w, http.StatusOK, models.Resp{
			OK:   true,
			Info: records,
		})
		return
	}

	jsonlData, err := fh.feedbackManager.ExportToJSONL(records)
	if err != nil {
		fh.logger.Error("failed to export to JSONL", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to export to JSONL",
		})
		return
	}

	w.Header().Set("Content-Type", "application/jsonl")
	w.Header().Set("Content-Disposition", "attachment; filename=feedback_export.jsonl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(jsonlData)

	fh.logger.Info("exported feedback", zap.Int("records", len(records)), zap.Int("days", days))
}

// GetFeedbackStats handles GET /api/v1/feedback/stats
func (fh *FeedbackHandler) GetFeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := fh.feedbackManager.GetFeedbackStats()
	if err != nil {
		fh.logger.Error("failed to get feedback stats", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, models.Resp{
			OK:   false,
			Info: "failed to get feedback stats",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.Resp{
		OK:   true,
		Info: stats,
	})
}

func positiveIntParam(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
