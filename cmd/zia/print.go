package main

import (
	"fmt"
	"strings"

	"zia/internal/bot"
	"zia/internal/render"
)

const rule = "────────────────────────"

// formatReply renders a reply for a plain terminal
func formatReply(reply bot.Reply) string {
	var sb strings.Builder
	if reply.Content != "" {
		sb.WriteString(reply.Content)
	}
	if reply.Embed != nil {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		writeEmbed(&sb, reply.Embed)
	}
	return sb.String()
}

func writeEmbed(sb *strings.Builder, e *render.Embed) {
	sb.WriteString(rule + "\n")
	if e.Title != "" {
		sb.WriteString(e.Title + "\n")
	}
	if e.Author != "" {
		fmt.Fprintf(sb, "for %s\n", e.Author)
	}
	if e.Description != "" {
		sb.WriteString("\n" + e.Description + "\n")
	}

	var inline []string
	flush := func() {
		if len(inline) > 0 {
			sb.WriteString("\n" + strings.Join(inline, "  |  ") + "\n")
			inline = nil
		}
	}
	for _, f := range e.Fields {
		if f.Inline {
			inline = append(inline, f.Name+": "+f.Value)
			continue
		}
		flush()
		fmt.Fprintf(sb, "\n%s\n%s\n", f.Name, f.Value)
	}
	flush()

	if e.Footer != "" {
		sb.WriteString("\n" + e.Footer + "\n")
	}
	sb.WriteString(rule)
}
