package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zia/internal/detector"
	"zia/internal/metrics"
	"zia/internal/models"
	"zia/internal/parser"
	"zia/internal/prompts"
	"zia/internal/render"
	"zia/internal/session"
	"zia/internal/utils"
)

type problemData struct {
	Topic      string
	Difficulty string
}

type hintData struct {
	Problem   string
	HintsUsed int
}

type evaluateData struct {
	Problem  string
	Language string
	Code     string
}

var difficulties = map[string]string{
	"easy":   "Easy",
	"medium": "Medium",
	"hard":   "Hard",
}

func (b *Bot) interviewCommand() *Command {
	return &Command{
		Name:        "interview",
		Usage:       "interview start|hint|answer <code>|end",
		Description: "Run a timed mock DSA interview with hints and graded answers.",
		Handler:     b.handleInterview,
	}
}

func (b *Bot) handleInterview(ctx context.Context, req *Request) ([]Reply, error) {
	p := b.opts.Prefix
	sub, rest := splitFirstToken(req.Body)

	switch strings.ToLower(sub) {
	case "":
		return []Reply{textReply(fmt.Sprintf("Usage: `%sinterview start`, `%sinterview hint`, `%sinterview answer <code>`, or `%sinterview end`", p, p, p, p))}, nil
	case "start":
		return b.interviewStart(ctx, req, rest)
	case "hint":
		return b.interviewHint(ctx, req)
	case "answer":
		return b.interviewAnswer(ctx, req, rest)
	case "end":
		return b.interviewEnd(req)
	default:
		return []Reply{textReply("Invalid sub-command. Use `start`, `hint`, `answer`, or `end`.")}, nil
	}
}

// parseStartArgs accepts an optional difficulty and a free-form topic in any order
func parseStartArgs(args string) problemData {
	var data problemData
	var topic []string
	for _, arg := range strings.Fields(args) {
		if d, ok := difficulties[strings.ToLower(arg)]; ok && data.Difficulty == "" {
			data.Difficulty = d
			continue
		}
		topic = append(topic, arg)
	}
	data.Topic = strings.Join(topic, " ")
	return data
}

func (b *Bot) interviewStart(ctx context.Context, req *Request, args string) ([]Reply, error) {
	userID := req.Message.UserID
	if _, active := b.deps.Sessions.GetActive(userID); active {
		return nil, session.ErrSessionAlreadyActive
	}

	gen, err := b.generate(ctx, req, prompts.ModeProblem, prompts.DefaultVariant, parseStartArgs(args))
	if err != nil {
		return nil, err
	}

	// a concurrent start may have won while the problem was generating
	sess, err := b.deps.Sessions.Create(userID, gen.Text)
	if err != nil {
		return nil, err
	}
	metrics.SetActiveSessions(b.deps.Sessions.Count())

	fields := sess.ProblemFields
	embed := render.NewEmbed("🧠 DSA Interview: "+placeholder(fields.Title, "Coding Challenge")).
		WithColor(render.ColorBlue).
		AddInlineField("Difficulty", placeholder(fields.Difficulty, "Unknown")).
		AddField("Problem Statement", render.Truncate(placeholder(fields.Statement, "No description provided."), render.MaxFieldLength)).
		AddField("Constraints", render.Truncate(placeholder(fields.Constraints, "Standard competitive programming limits."), render.MaxFieldLength)).
		AddField("Sample I/O", render.CodeBlock(render.Truncate(placeholder(fields.SampleIO, "N/A"), render.MaxFieldLength))).
		WithFooter(joinFooter(
			fmt.Sprintf("Use %sinterview answer <code> to submit your solution.", b.opts.Prefix),
			b.ratingFooter(gen.RequestID)))

	return []Reply{
		textReply("🚀 Generating your DSA problem... Get ready."),
		embedReply(embed),
	}, nil
}

func (b *Bot) interviewHint(ctx context.Context, req *Request) ([]Reply, error) {
	sess, err := b.deps.Sessions.RecordHint(req.Message.UserID)
	if err != nil {
		return nil, err
	}

	variant := "first"
	if sess.HintsUsed > 1 {
		variant = "followup"
	}
	gen, err := b.generate(ctx, req, prompts.ModeHint, variant, hintData{
		Problem:   sess.ProblemText,
		HintsUsed: sess.HintsUsed - 1,
	})
	if err != nil {
		return nil, err
	}

	embed := render.NewEmbed("💡 Interview Hint").
		WithColor(render.ColorAmber).
		WithDescription(render.Truncate(parser.ParseHint(gen.Text), render.MaxDescriptionLength)).
		WithFooter(joinFooter(fmt.Sprintf("Hints used: %d", sess.HintsUsed), b.ratingFooter(gen.RequestID)))

	return []Reply{embedReply(embed)}, nil
}

func (b *Bot) interviewAnswer(ctx context.Context, req *Request, code string) ([]Reply, error) {
	userID := req.Message.UserID
	if _, active := b.deps.Sessions.GetActive(userID); !active {
		return nil, session.ErrNoActiveSession
	}
	if strings.TrimSpace(code) == "" {
		return []Reply{textReply(fmt.Sprintf("Please provide your code solution. Usage: `%sinterview answer <code>`", b.opts.Prefix))}, nil
	}

	sess, err := b.deps.Sessions.RecordAttempt(userID)
	if err != nil {
		return nil, err
	}

	cleaned := utils.StripFences(code)
	lang := detector.Detect(cleaned)
	if tag, _, fenced := utils.ExtractFence(code); fenced {
		if resolved, ok := models.ResolveLanguage(tag); ok {
			lang = resolved
		}
	}

	gen, err := b.generate(ctx, req, prompts.ModeEvaluate, prompts.DefaultVariant, evaluateData{
		Problem:  sess.ProblemText,
		Language: lang.DisplayName(),
		Code:     cleaned,
	})
	if err != nil {
		return nil, err
	}

	feedback := parser.ParseFeedback(gen.Text)
	metrics.RecordVerdict(feedback.Pass)

	color := render.ColorRed
	if feedback.Pass {
		color = render.ColorGreen
	}

	embed := render.NewEmbed("🧠 Interview Feedback").
		WithColor(color).
		AddField("Correctness", fieldValue(feedback.Correctness, "See below")).
		AddField("Complexity", render.Truncate(fmt.Sprintf("Time: %s\nSpace: %s",
			placeholder(feedback.TimeComplexity, "N/A"),
			placeholder(feedback.SpaceComplexity, "N/A")), render.MaxFieldLength)).
		AddField("Edge Cases", fieldValue(feedback.EdgeCases, "N/A")).
		AddField("Optimization", fieldValue(feedback.Optimization, "N/A")).
		AddField("Final Verdict", fieldValue(feedback.Verdict, "N/A")).
		WithFooter(joinFooter(
			fmt.Sprintf("Attempt %d | %s", sess.Attempts, feedback.VerdictLabel()),
			b.ratingFooter(gen.RequestID)))

	if !feedback.Correctness.Present || feedback.Correctness.Value == "" {
		embed.WithDescription(render.Clip(gen.Text, render.MaxDescriptionLength))
	}

	return []Reply{embedReply(embed)}, nil
}

func (b *Bot) interviewEnd(req *Request) ([]Reply, error) {
	sess, err := b.deps.Sessions.End(req.Message.UserID)
	if errors.Is(err, session.ErrNoActiveSession) {
		return []Reply{textReply("❌ You don't have an active interview session.")}, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.SetActiveSessions(b.deps.Sessions.Count())

	embed := render.NewEmbed("🏁 Interview Session Ended").
		WithColor(render.ColorBlue).
		AddInlineField("Duration", fmt.Sprintf("%d minutes", sess.ElapsedMinutes(b.deps.Sessions.Now()))).
		AddInlineField("Hints Used", fmt.Sprintf("%d", sess.HintsUsed)).
		AddInlineField("Attempts", fmt.Sprintf("%d", sess.Attempts)).
		WithDescription("Great effort! Keep practicing to sharpen your skills.")

	return []Reply{embedReply(embed)}, nil
}

// placeholder treats empty sections like missing ones
func placeholder(f parser.Field, fallback string) string {
	if v := f.Or(""); v != "" {
		return v
	}
	return fallback
}

func fieldValue(f parser.Field, fallback string) string {
	return render.Truncate(placeholder(f, fallback), render.MaxFieldLength)
}
