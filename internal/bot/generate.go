package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"zia/internal/metrics"
	"zia/internal/models"
)

type generation struct {
	Text      string
	RequestID string
	Model     string
}

// generate renders the prompt, calls the provider, and caches the exchange so
// it can be rated with the rate command.
func (b *Bot) generate(ctx context.Context, req *Request, mode, variant string, data any) (*generation, error) {
	prompt, err := b.deps.Prompts.BuildPrompt(mode, variant, data)
	if err != nil {
		return nil, fmt.Errorf("build %s prompt: %w", mode, err)
	}

	requestID := b.newID()
	resp, err := b.deps.Provider.GenerateContent(ctx, prompt.System, prompt.User, requestID)
	if err != nil {
		metrics.RecordGeneration(mode, "error")
		return nil, err
	}
	metrics.RecordGeneration(mode, "ok")

	b.logger.Info("generated content",
		zap.String("request_id", requestID),
		zap.String("user_id", req.Message.UserID),
		zap.String("mode", mode),
		zap.String("provider", resp.Metadata.Provider),
		zap.Int("processing_ms", resp.Metadata.ProcessingTime))

	if b.deps.Feedback != nil {
		b.deps.Feedback.StoreRequestContext(&models.RequestContext{
			RequestID:   requestID,
			RequestType: mode,
			Prompt:      prompt.User,
			Response:    resp.Content,
			Model:       resp.Metadata.Model,
			Timestamp:   b.now(),
		})
	}

	return &generation{Text: resp.Content, RequestID: requestID, Model: resp.Metadata.Model}, nil
}

// ratingFooter tells the user how to rate a generated answer
func (b *Bot) ratingFooter(requestID string) string {
	if b.deps.Feedback == nil {
		return ""
	}
	return fmt.Sprintf("Request ID: %s | rate with %srate %s up|down", requestID, b.opts.Prefix, requestID)
}

// joinFooter joins non-empty footer parts
func joinFooter(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += p
	}
	return out
}
