// Package bot turns chat messages into replies. It owns command routing,
// per-user cooldowns and the conversion of collaborator failures into a
// single user-visible message.
package bot

import (
	"context"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"zia/internal/executor"
	"zia/internal/llm"
	"zia/internal/metrics"
	"zia/internal/models"
	"zia/internal/prompts"
	"zia/internal/render"
	"zia/internal/resilience"
	"zia/internal/session"
	"zia/internal/utils"
)

const (
	DefaultPrefix        = "!"
	DefaultCooldown      = 5 * time.Second
	DefaultMaxCodeLength = 5000
)

// Message is one incoming chat message
type Message struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	ChannelID string `json:"channel_id,omitempty"`
	Content   string `json:"content"`
}

// Reply is one outgoing chat message: plain text, an embed, or both
type Reply struct {
	Content string        `json:"content,omitempty"`
	Embed   *render.Embed `json:"embed,omitempty"`
}

func textReply(content string) Reply {
	return Reply{Content: content}
}

func embedReply(embed *render.Embed) Reply {
	return Reply{Embed: embed}
}

// Request is a parsed command invocation
type Request struct {
	Message Message
	// Name is the lower-cased command or alias the user typed
	Name string
	// Args are the whitespace separated arguments
	Args []string
	// Body is everything after the command name, trimmed, newlines kept
	Body string
}

type HandlerFunc func(ctx context.Context, req *Request) ([]Reply, error)

type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Handler     HandlerFunc
}

// FeedbackStore caches generated answers and records their ratings
type FeedbackStore interface {
	StoreRequestContext(ctx *models.RequestContext)
	SubmitFeedback(requestID string, isPositive bool) error
}

type Deps struct {
	Provider llm.Provider
	Prompts  prompts.PromptProvider
	Executor executor.Executor
	Sessions *session.Store
	Feedback FeedbackStore
	Logger   *zap.Logger
}

type Options struct {
	Prefix        string
	Cooldown      time.Duration
	MaxCodeLength int
}

func DefaultOptions() Options {
	return Options{
		Prefix:        DefaultPrefix,
		Cooldown:      DefaultCooldown,
		MaxCodeLength: DefaultMaxCodeLength,
	}
}

type Bot struct {
	deps     Deps
	opts     Options
	logger   *zap.Logger
	cooldown *resilience.Cooldown
	commands map[string]*Command
	ordered  []*Command
	now      func() time.Time
	newID    func() string
}

func New(deps Deps, opts Options) *Bot {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.MaxCodeLength <= 0 {
		opts.MaxCodeLength = DefaultMaxCodeLength
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bot{
		deps:     deps,
		opts:     opts,
		logger:   logger,
		cooldown: resilience.NewCooldown(opts.Cooldown),
		commands: make(map[string]*Command),
		now:      time.Now,
		newID:    newRequestID,
	}
	b.register(b.helpCommand())
	b.register(b.askCommand())
	b.register(b.runCommand())
	b.register(b.interviewCommand())
	b.register(b.detectCommand())
	b.register(b.rateCommand())
	return b
}

func (b *Bot) register(cmd *Command) {
	b.ordered = append(b.ordered, cmd)
	b.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		b.commands[alias] = cmd
	}
}

// Commands lists registered commands in registration order
func (b *Bot) Commands() []*Command {
	return b.ordered
}

func (b *Bot) Prefix() string {
	return b.opts.Prefix
}

func (b *Bot) Close() error {
	return b.cooldown.Close()
}

// Parse splits a message into a command invocation. It reports false for
// messages without the prefix and for unknown commands.
func (b *Bot) Parse(msg Message) (*Request, *Command, bool) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, b.opts.Prefix) {
		return nil, nil, false
	}
	content = strings.TrimSpace(content[len(b.opts.Prefix):])

	name, body := splitFirstToken(content)
	name = utils.NormalizeCommand(name)
	cmd, ok := b.commands[name]
	if !ok {
		return nil, nil, false
	}

	return &Request{
		Message: msg,
		Name:    name,
		Args:    strings.Fields(body),
		Body:    body,
	}, cmd, true
}

// Handle runs the command in msg and returns the replies to send. Messages
// that are not commands produce no replies.
func (b *Bot) Handle(ctx context.Context, msg Message) []Reply {
	req, cmd, ok := b.Parse(msg)
	if !ok {
		return nil
	}

	logger := b.logger.With(
		zap.String("command", cmd.Name),
		zap.String("user_id", msg.UserID))

	if !b.cooldown.Allow(ctx, cmd.Name+":"+msg.UserID) {
		metrics.ObserveCommand(cmd.Name, "cooldown", 0)
		return []Reply{textReply(cooldownMessage(cmd.Name, b.cooldown.Window()))}
	}

	start := b.now()
	replies, err := cmd.Handler(ctx, req)
	elapsed := b.now().Sub(start)

	if err != nil {
		logger.Error("command failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		metrics.ObserveCommand(cmd.Name, "error", elapsed)
		return append(replies, textReply(b.userMessage(err)))
	}

	logger.Info("command handled", zap.Int("replies", len(replies)), zap.Duration("elapsed", elapsed))
	metrics.ObserveCommand(cmd.Name, "ok", elapsed)
	return replies
}

// splitFirstToken returns the first whitespace delimited token and the trimmed remainder
func splitFirstToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}
