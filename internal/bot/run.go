package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"zia/internal/detector"
	"zia/internal/executor"
	"zia/internal/metrics"
	"zia/internal/models"
	"zia/internal/prompts"
	"zia/internal/render"
	"zia/internal/utils"
)

type insightData struct {
	Language      string
	Code          string
	Status        string
	Stdout        string
	Stderr        string
	CompileOutput string
}

func (b *Bot) runCommand() *Command {
	return &Command{
		Name:        "run",
		Aliases:     []string{"py", "python", "cpp", "java"},
		Usage:       "run [language] <code>",
		Description: "Execute C++, Java or Python. The language is detected when omitted.",
		Handler:     b.handleRun,
	}
}

// submission is a run request after language resolution
type submission struct {
	Language models.Language
	Code     string
	Detected bool
}

// resolveSubmission picks the language in this order: command alias, explicit
// first argument, code fence tag, then the detector. Fence tags we cannot run
// are ignored.
func resolveSubmission(req *Request) *submission {
	var lang models.Language
	code := req.Body

	if req.Name != "run" {
		lang, _ = models.ResolveLanguage(req.Name)
	} else if first, rest := splitFirstToken(req.Body); first != "" {
		if resolved, ok := models.ResolveLanguage(first); ok {
			lang, code = resolved, rest
		}
	}

	if strings.HasPrefix(code, "```") {
		tag, body, _ := utils.ExtractFence(code)
		code = body
		if resolved, ok := models.ResolveLanguage(tag); ok {
			lang = resolved
		}
	}

	sub := &submission{Language: lang, Code: strings.TrimSpace(code)}
	if sub.Language == "" && sub.Code != "" {
		sub.Language = detector.Detect(sub.Code)
		sub.Detected = true
	}
	return sub
}

func (b *Bot) handleRun(ctx context.Context, req *Request) ([]Reply, error) {
	p := b.opts.Prefix
	sub := resolveSubmission(req)
	if sub.Code == "" {
		return []Reply{textReply(fmt.Sprintf("Usage: `%srun <language> <code>` or shortcuts like `%spy <code>`\nExample:\n```\n%spy\nprint(\"Hello\")\n```", p, p, p))}, nil
	}
	if sub.Detected {
		metrics.RecordDetection(string(sub.Language))
	}
	if !models.SupportedLanguages[sub.Language] {
		return []Reply{textReply(unsupportedMessage(sub.Language))}, nil
	}
	if len([]rune(sub.Code)) > b.opts.MaxCodeLength {
		return []Reply{textReply(fmt.Sprintf("Code is too long! Please keep it under %d characters.", b.opts.MaxCodeLength))}, nil
	}

	source := executor.Prepare(sub.Language, sub.Code)
	result, err := b.deps.Executor.Execute(ctx, sub.Language, source)
	if err != nil {
		metrics.RecordExecution(b.deps.Executor.Name(), string(sub.Language), "error")
		return nil, err
	}
	metrics.RecordExecution(b.deps.Executor.Name(), string(sub.Language), executionOutcome(result))

	replies := []Reply{embedReply(b.resultEmbed(req, sub, result))}

	// insight failures are logged, never surfaced
	if insight, err := b.insight(ctx, req, sub, result); err != nil {
		b.logger.Warn("insight generation failed",
			zap.String("user_id", req.Message.UserID),
			zap.String("language", string(sub.Language)),
			zap.Error(err))
	} else {
		replies = append(replies, embedReply(insight))
	}

	return replies, nil
}

func executionOutcome(result *executor.Result) string {
	switch {
	case result.CompileOutput != "" && result.Status != "Success":
		return "compile_error"
	case result.Status != "Success":
		return "runtime_error"
	default:
		return "success"
	}
}

func (b *Bot) resultEmbed(req *Request, sub *submission, result *executor.Result) *render.Embed {
	embed := render.NewEmbed(fmt.Sprintf("👨‍💻 Code Execution Result (%s)", strings.ToUpper(string(sub.Language)))).
		WithColor(render.ColorBlurple).
		WithAuthor(req.Message.Username).
		WithTimestamp(b.now())

	if result.Stdout != "" {
		embed.AddField("📤 Output", render.CodeBlock(render.Truncate(result.Stdout, render.MaxFieldLength)))
	}

	if result.Stderr != "" || result.CompileOutput != "" {
		name, content := "⚠️ Runtime Error", result.Stderr
		if result.CompileOutput != "" {
			name, content = "❌ Compilation Error", result.CompileOutput
		}
		embed.WithColor(render.ColorDanger).
			AddField(name, render.CodeBlock(render.Truncate(content, render.MaxFieldLength)))
	}

	if !result.HasOutput() {
		embed.WithDescription(fmt.Sprintf("**Status:** %s (No output)", result.Status))
	}

	footer := fmt.Sprintf("Time: %s | Memory: %s", withUnit(result.Time, "s"), withUnit(result.Memory, "KB"))
	if sub.Detected {
		footer += " | Language auto-detected"
	}
	return embed.WithFooter(footer)
}

func withUnit(value, unit string) string {
	if value == "" || value == "N/A" {
		return "N/A"
	}
	return value + unit
}

func (b *Bot) insight(ctx context.Context, req *Request, sub *submission, result *executor.Result) (*render.Embed, error) {
	variant := "success"
	if result.Failed() || result.Status != "Success" {
		variant = "failure"
	}

	gen, err := b.generate(ctx, req, prompts.ModeInsight, variant, insightData{
		Language:      sub.Language.DisplayName(),
		Code:          sub.Code,
		Status:        result.Status,
		Stdout:        render.Truncate(result.Stdout, render.MaxFieldLength),
		Stderr:        render.Truncate(result.Stderr, render.MaxFieldLength),
		CompileOutput: render.Truncate(result.CompileOutput, render.MaxFieldLength),
	})
	if err != nil {
		return nil, err
	}

	poweredBy := "Powered by Gemini"
	if gen.Model != "" {
		poweredBy = "Powered by " + gen.Model
	}

	return render.NewEmbed("✨ Zia's Insights").
		WithColor(render.ColorPink).
		WithDescription(render.Truncate(gen.Text, render.MaxDescriptionLength)).
		WithFooter(joinFooter(poweredBy, b.ratingFooter(gen.RequestID))), nil
}

func unsupportedMessage(lang models.Language) string {
	return fmt.Sprintf("Unsupported language: `%s`. Supported: %s.", lang, supportedList())
}
