package bot

import (
	"context"
	"fmt"

	"zia/internal/prompts"
	"zia/internal/render"
)

type askData struct {
	Question string
}

func (b *Bot) askCommand() *Command {
	return &Command{
		Name:        "ask",
		Usage:       "ask <problem>",
		Description: "Get a senior-level breakdown of any DSA problem or concept.",
		Handler:     b.handleAsk,
	}
}

func (b *Bot) handleAsk(ctx context.Context, req *Request) ([]Reply, error) {
	if req.Body == "" {
		return []Reply{textReply(fmt.Sprintf("Please provide a query or a DSA problem to explain. Usage: `%sask <problem>`", b.opts.Prefix))}, nil
	}

	gen, err := b.generate(ctx, req, prompts.ModeAsk, prompts.DefaultVariant, askData{Question: req.Body})
	if err != nil {
		return nil, err
	}

	var replies []Reply
	if len([]rune(gen.Text)) <= render.MaxMessageLength {
		replies = append(replies, textReply(gen.Text))
	} else {
		for _, chunk := range render.SplitMessage(gen.Text, render.MessageChunkLength) {
			replies = append(replies, textReply(chunk))
		}
	}

	if footer := b.ratingFooter(gen.RequestID); footer != "" {
		replies = append(replies, textReply("-# "+footer))
	}
	return replies, nil
}
