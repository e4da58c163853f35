package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"zia/internal/executor"
	"zia/internal/llm"
	"zia/internal/models"
	"zia/internal/session"
)

// userMessage is the single place collaborator failures become chat text
func (b *Bot) userMessage(err error) string {
	var providerErr *llm.ProviderError
	var execErr *executor.ExecutionError

	switch {
	case errors.Is(err, session.ErrSessionAlreadyActive):
		return fmt.Sprintf("⚠️ You already have an active interview session! Use `%sinterview end` to stop it.", b.opts.Prefix)
	case errors.Is(err, session.ErrNoActiveSession):
		return fmt.Sprintf("❌ No active session. Start one with `%sinterview start`.", b.opts.Prefix)
	case errors.Is(err, executor.ErrUnsupportedLanguage):
		return "Unsupported language. Supported: " + supportedList() + "."
	case errors.As(err, &execErr):
		return "Failed to execute code. The execution service is unavailable right now, please try again later."
	case llm.IsRateLimited(err):
		return "The AI service is rate limited right now. Please try again in a minute."
	case errors.As(err, &providerErr):
		return "Sorry, I encountered an error while processing your request. Please try again later."
	default:
		return "There was an error trying to execute that command!"
	}
}

func cooldownMessage(command string, window time.Duration) string {
	return fmt.Sprintf("Please wait a moment before using the `%s` command again (cooldown: %s).", command, window)
}

func newRequestID() string {
	return uuid.New().String()
}

func supportedList() string {
	tags := models.SupportedLanguagesList()
	for i, tag := range tags {
		tags[i] = "`" + tag + "`"
	}
	return strings.Join(tags, ", ")
}
