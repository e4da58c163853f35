package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zia/internal/feedback"
)

func (b *Bot) rateCommand() *Command {
	return &Command{
		Name:        "rate",
		Usage:       "rate <request_id> up|down",
		Description: "Rate one of my answers so I can get better.",
		Handler:     b.handleRate,
	}
}

func (b *Bot) handleRate(_ context.Context, req *Request) ([]Reply, error) {
	if b.deps.Feedback == nil {
		return []Reply{textReply("Ratings are not enabled on this bot.")}, nil
	}

	usage := fmt.Sprintf("Usage: `%srate <request_id> up|down`", b.opts.Prefix)
	if len(req.Args) != 2 {
		return []Reply{textReply(usage)}, nil
	}
	requestID := req.Args[0]
	if _, err := uuid.Parse(requestID); err != nil {
		return []Reply{textReply("That does not look like a request ID. " + usage)}, nil
	}

	var positive bool
	switch strings.ToLower(req.Args[1]) {
	case "up", "+", "good", "👍":
		positive = true
	case "down", "-", "bad", "👎":
		positive = false
	default:
		return []Reply{textReply(usage)}, nil
	}

	err := b.deps.Feedback.SubmitFeedback(requestID, positive)
	switch {
	case errors.Is(err, feedback.ErrAlreadyRated):
		return []Reply{textReply("That answer has already been rated. Thanks!")}, nil
	case errors.Is(err, feedback.ErrContextNotFound):
		return []Reply{textReply("I can't find that answer any more. Ratings are only kept for a short while.")}, nil
	case err != nil:
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	b.logger.Info("answer rated",
		zap.String("request_id", requestID),
		zap.String("user_id", req.Message.UserID),
		zap.Bool("positive", positive))
	return []Reply{textReply("Thanks for the feedback! 🙏")}, nil
}
