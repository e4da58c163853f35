package bot

import (
	"context"
	"fmt"
	"strings"

	"zia/internal/detector"
	"zia/internal/metrics"
	"zia/internal/render"
	"zia/internal/utils"
)

func (b *Bot) detectCommand() *Command {
	return &Command{
		Name:        "detect",
		Usage:       "detect <code>",
		Description: "Show which language I would run your snippet as, and why.",
		Handler:     b.handleDetect,
	}
}

func (b *Bot) handleDetect(_ context.Context, req *Request) ([]Reply, error) {
	code := utils.StripFences(req.Body)
	if code == "" {
		return []Reply{textReply(fmt.Sprintf("Usage: `%sdetect <code>`", b.opts.Prefix))}, nil
	}

	analysis := detector.Analyze(code)
	metrics.RecordDetection(string(analysis.Language))

	var scores strings.Builder
	for _, lang := range detector.Order() {
		fmt.Fprintf(&scores, "%s: %d\n", lang.DisplayName(), analysis.Scores[lang])
	}

	embed := render.NewEmbed("🔎 Language Detection").
		WithColor(render.ColorBlurple).
		WithDescription(fmt.Sprintf("Detected **%s**", analysis.Language.DisplayName())).
		AddField("Scores", render.CodeBlock(strings.TrimRight(scores.String(), "\n"))).
		WithFooter("Heuristic guess. Pass a language explicitly to override.")

	return []Reply{embedReply(embed)}, nil
}
