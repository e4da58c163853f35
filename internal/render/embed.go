// Package render builds the chat-facing message shapes: rich embeds and
// plain text chunks sized for the chat platform limits.
package render

import (
	"strings"
	"time"
	"unicode/utf8"
)

// platform limits
const (
	MaxMessageLength     = 2000
	MessageChunkLength   = 1900
	MaxDescriptionLength = 4000
	MaxFieldLength       = 1000
)

// embed colors
const (
	ColorBlue    = 0x0099FF
	ColorAmber   = 0xFFBF00
	ColorGreen   = 0x00FF00
	ColorRed     = 0xFF0000
	ColorBlurple = 0x5865F2
	ColorDanger  = 0xED4245
	ColorPink    = 0xEB459E
)

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Color       int       `json:"color,omitempty"`
	Author      string    `json:"author,omitempty"`
	Fields      []Field   `json:"fields,omitempty"`
	Footer      string    `json:"footer,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

func NewEmbed(title string) *Embed {
	return &Embed{Title: title}
}

func (e *Embed) WithDescription(description string) *Embed {
	e.Description = description
	return e
}

func (e *Embed) WithColor(color int) *Embed {
	e.Color = color
	return e
}

func (e *Embed) WithAuthor(author string) *Embed {
	e.Author = author
	return e
}

func (e *Embed) WithFooter(footer string) *Embed {
	e.Footer = footer
	return e
}

func (e *Embed) WithTimestamp(ts time.Time) *Embed {
	e.Timestamp = ts
	return e
}

func (e *Embed) AddField(name, value string) *Embed {
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
	return e
}

func (e *Embed) AddInlineField(name, value string) *Embed {
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: true})
	return e
}

// Field returns the first field with the given name
func (e *Embed) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CodeBlock wraps text in an unlabelled fence
func CodeBlock(text string) string {
	return "```\n" + text + "\n```"
}

// Truncate keeps the first max characters and marks the cut with "...".
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Clip is like Truncate but the result, ellipsis included, never exceeds max.
func Clip(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// SplitMessage cuts text into chunks of at most max characters, preferring to
// break at the last newline inside each window. Chunks are trimmed.
func SplitMessage(text string, max int) []string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		end := pos + max
		if end < len(runes) {
			if nl := lastNewline(runes, pos, end); nl > pos {
				end = nl
			}
		} else {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[pos:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		pos = end
	}
	return chunks
}

// lastNewline finds the last '\n' in runes[from:to], inclusive of to when in range
func lastNewline(runes []rune, from, to int) int {
	if to >= len(runes) {
		to = len(runes) - 1
	}
	for i := to; i > from; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}
