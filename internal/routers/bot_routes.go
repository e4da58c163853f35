package routers

import (
	"github.com/go-chi/chi/v5"

	"zia/internal/handlers"
	"zia/internal/middleware"
	"zia/internal/models"
)

func BotRoutes(router *chi.Mux, botHandler *handlers.BotHandler) {
	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.MessageRequest]()).Post("/bot/messages", botHandler.MessageHandler)
		r.With(middleware.ValidateRequest[*models.DetectRequest]()).Post("/detect", botHandler.DetectHandler)
	})
}

// FeedbackRoutes is skipped when no feedback store is configured
func FeedbackRoutes(router *chi.Mux, feedbackHandler *handlers.FeedbackHandler) {
	if feedbackHandler == nil {
		return
	}
	router.Route("/api/v1/feedback", func(r chi.Router) {
		r.Get("/export", feedbackHandler.ExportFeedback)
		r.Get("/stats", feedbackHandler.GetFeedbackStats)
		r.Post("/{request_id}", feedbackHandler.SubmitFeedback)
	})
}
