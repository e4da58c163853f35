package utils

import (
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?i)^```([a-z0-9+#]*)[ \\t]*\\n?")
	fenceClose = regexp.MustCompile("\\n?```\\s*$")
)

func NormalizeCommand(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ExtractFence splits a fenced code block into its info tag and body.
// Text that does not start with a fence is returned trimmed with fenced=false.
func ExtractFence(text string) (tag string, body string, fenced bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return "", text, false
	}

	match := fenceOpen.FindStringSubmatch(text)
	if match != nil {
		tag = strings.ToLower(match[1])
		text = text[len(match[0]):]
	}
	text = fenceClose.ReplaceAllString(text, "")
	return tag, strings.TrimSpace(text), true
}

// StripFences removes a surrounding markdown code fence, if any
func StripFences(text string) string {
	_, body, _ := ExtractFence(text)
	return body
}
