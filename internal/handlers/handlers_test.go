package handlers

import (
	"context"
	"errors"
	"testing"
	"text/template"

	"go.uber.org/zap"

	"zia/internal/bot"
	"zia/internal/executor"
	"zia/internal/models"
	"zia/internal/prompts"
	"zia/internal/session"
)

type mockProvider struct {
	generateContentFn func(ctx context.Context, system, prompt, requestID string) (*models.GenerationResponse, error)
	getProviderNameFn func() string
}

func (m *mockProvider) GenerateContent(ctx context.Context, system, prompt, requestID string) (*models.GenerationResponse, error) {
	if m.generateContentFn == nil {
		return &models.GenerationResponse{Content: "mock answer", RequestID: requestID}, nil
	}
	return m.generateContentFn(ctx, system, prompt, requestID)
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

type mockPromptManager struct {
	buildPromptFn  func(mode, variant string, data any) (*prompts.Prompt, error)
	getTemplatesFn func() map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data any) (*prompts.Prompt, error) {
	if m.buildPromptFn == nil {
		return &prompts.Prompt{System: "system", User: "mock prompt"}, nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{
			prompts.ModeAsk: {
				prompts.DefaultVariant: template.Must(template.New("test").Parse("test")),
			},
		}
	}
	return m.getTemplatesFn()
}

type mockExecutor struct{}

func (mockExecutor) Name() string { return "mock" }

func (mockExecutor) Execute(ctx context.Context, lang models.Language, source string) (*executor.Result, error) {
	return &executor.Result{Stdout: "42\n", Status: "Success", Time: "N/A", Memory: "N/A"}, nil
}

type mockPinger struct{ err error }

func (m mockPinger) Ping() error { return m.err }

var errDown = errors.New("down")

func newTestBot(t *testing.T, provider *mockProvider) *bot.Bot {
	t.Helper()
	opts := bot.DefaultOptions()
	opts.Cooldown = 0
	b := bot.New(bot.Deps{
		Provider: provider,
		Prompts:  &mockPromptManager{},
		Executor: mockExecutor{},
		Sessions: session.NewStore(),
		Logger:   zap.NewNop(),
	}, opts)
	t.Cleanup(func() { _ = b.Close() })
	return b
}
