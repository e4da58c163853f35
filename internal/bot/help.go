package bot

import (
	"context"
	"fmt"
	"strings"
)

func (b *Bot) helpCommand() *Command {
	return &Command{
		Name:        "help",
		Usage:       "help",
		Description: "Show this manual.",
		Handler:     b.handleHelp,
	}
}

func (b *Bot) handleHelp(_ context.Context, _ *Request) ([]Reply, error) {
	p := b.opts.Prefix

	var sb strings.Builder
	sb.WriteString("**🚀 ZIA - FAANG L5 DSA ASSISTANT**\n")
	sb.WriteString("━━━━━━━━━━━━━━\n")
	sb.WriteString("I am Zia, your Senior FAANG Engineer (L5). I'm here to provide professional, optimized, and strictly constructive Data Structures & Algorithms guidance.\n\n")
	sb.WriteString("**Available Commands:**\n")
	for _, cmd := range b.ordered {
		fmt.Fprintf(&sb, "• `%s%s` - %s", p, cmd.Usage, cmd.Description)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&sb, " (aliases: %s)", prefixed(p, cmd.Aliases))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n**How I Communicate:**\n")
	sb.WriteString("> I prioritize intuition and trade-offs. No brute-force, no filler.\n")
	sb.WriteString("> Expect production-ready C++ code and rigorous complexity analysis.\n\n")
	sb.WriteString("**Example Usage:**\n")
	fmt.Fprintf(&sb, "`%sask explain the sliding window technique`\n", p)
	sb.WriteString("━━━━━━━━━━━━━━\n")
	sb.WriteString("*Tip: Don't ask for the \"easiest\" way. Ask for the \"best\" way.*")

	return []Reply{textReply(sb.String())}, nil
}

func prefixed(prefix string, names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "`" + prefix + n + "`"
	}
	return strings.Join(out, ", ")
}
