package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"zia/internal/bot"
	"zia/internal/detector"
	"zia/internal/metrics"
	"zia/internal/middleware"
	"zia/internal/models"
	"zia/internal/utils"
)

// BotResponse carries the replies for one forwarded chat message
type BotResponse struct {
	Handled bool        `json:"handled"`
	Replies []bot.Reply `json:"replies"`
}

type BotHandler struct {
	bot    *bot.Bot
	logger *zap.Logger
}

func NewBotHandler(b *bot.Bot, logger *zap.Logger) *BotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotHandler{
		bot:    b,
		logger: logger,
	}
}

// MessageHandler handles POST /api/v1/bot/messages
func (h *BotHandler) MessageHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.MessageRequest](r)

	replies := h.bot.Handle(r.Context(), bot.Message{
		UserID:    req.UserID,
		Username:  req.Username,
		ChannelID: req.ChannelID,
		Content:   req.Content,
	})
	if replies == nil {
		replies = []bot.Reply{}
	}

	h.logger.Debug("message handled",
		zap.String("user_id", req.UserID),
		zap.String("channel_id", req.ChannelID),
		zap.Int("replies", len(replies)))

	utils.JSON(w, http.StatusOK, BotResponse{
		Handled: len(replies) > 0,
		Replies: replies,
	})
}

// DetectHandler handles POST /api/v1/detect
func (h *BotHandler) DetectHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.DetectRequest](r)

	analysis := detector.Analyze(utils.StripFences(req.Code))
	metrics.RecordDetection(string(analysis.Language))

	utils.JSON(w, http.StatusOK, models.DetectResponse{
		Language: analysis.Language,
		Scores:   analysis.ScoreLabels(),
	})
}
