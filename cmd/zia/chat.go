package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zia/internal/bot"
	"zia/internal/config"
	"zia/internal/executor"
	_ "zia/internal/executor/docker"
	"zia/internal/llm"
	_ "zia/internal/llm/gemini"
	"zia/internal/prompts"
	"zia/internal/resilience"
	"zia/internal/session"
)

// buildBot wires the same collaborators as the gateway, minus the ratings store
func buildBot(cfg *config.Config, logger *zap.Logger) (*bot.Bot, error) {
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}

	settings := executor.DefaultSettings()
	settings.WandboxURL = cfg.WandboxURL
	settings.WallTime = cfg.ExecTimeout
	exec, err := executor.NewExecutor(cfg.ExecutorBackend, settings)
	if err != nil {
		return nil, fmt.Errorf("init executor: %w", err)
	}

	guard := resilience.DefaultConfig(cfg.Provider)
	guard.Logger = logger

	return bot.New(bot.Deps{
		Provider: llm.NewGuardedProvider(provider, guard),
		Prompts:  promptManager,
		Executor: executor.NewGuarded(exec, resilience.DefaultConfig(exec.Name())),
		Sessions: session.NewStore(),
		Logger:   logger,
	}, bot.Options{
		Prefix:        cfg.Prefix,
		MaxCodeLength: cfg.MaxCodeLength,
	}), nil
}

func newChatCommand(logger func() *zap.Logger) *cobra.Command {
	var (
		userID   string
		username string
		message  string
		history  string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to Zia in the terminal",
		Long:  "Interactive chat with the bot. Messages are sent exactly as typed, so commands need the prefix (for example !help).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			b, err := buildBot(cfg, logger())
			if err != nil {
				return err
			}
			defer b.Close()

			r := newREPL(b, cmd.OutOrStdout(), userID, username)

			text := strings.TrimSpace(message)
			if text == "" && len(args) > 0 {
				text = strings.TrimSpace(strings.Join(args, " "))
			}
			if text != "" {
				r.send(contextOrBackground(cmd.Context()), text)
				return nil
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          r.prompt(),
				HistoryFile:     history,
				InterruptPrompt: "^C",
				EOFPrompt:       ":quit",
			})
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer rl.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Chatting as %s (%s). Type :help for REPL commands, :quit to leave.\n", r.username, r.userID)
			return r.run(contextOrBackground(cmd.Context()), rl)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local", "user id the bot sees")
	cmd.Flags().StringVar(&username, "name", "", "display name (defaults to the user id)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "send one message and exit")
	cmd.Flags().StringVar(&history, "history", "", "readline history file")
	return cmd
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
