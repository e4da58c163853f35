package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"text/template"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"zia/internal/bot"
	"zia/internal/config"
	"zia/internal/executor"
	"zia/internal/handlers"
	"zia/internal/llm"
	"zia/internal/models"
	"zia/internal/prompts"
	"zia/internal/session"
)

type stubProvider struct{}

func (stubProvider) GenerateContent(context.Context, string, string, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{}, nil
}

func (stubProvider) GetProviderName() string { return "stub" }

type stubPromptManager struct{}

func (stubPromptManager) BuildPrompt(string, string, any) (*prompts.Prompt, error) {
	return &prompts.Prompt{User: "prompt"}, nil
}

func (stubPromptManager) GetTemplates() map[string]map[string]*template.Template {
	return map[string]map[string]*template.Template{}
}

type stubExecutor struct{}

func (stubExecutor) Name() string { return "stub" }

func (stubExecutor) Execute(context.Context, models.Language, string) (*executor.Result, error) {
	return &executor.Result{Status: "Success"}, nil
}

var (
	_ llm.Provider           = (*stubProvider)(nil)
	_ prompts.PromptProvider = (*stubPromptManager)(nil)
	_ executor.Executor      = (*stubExecutor)(nil)
)

func walk(t *testing.T, router *chi.Mux) map[string]bool {
	t.Helper()
	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}
	return paths
}

func TestHealthRoutes(t *testing.T) {
	router := chi.NewRouter()
	handler := handlers.NewHealthHandler(nil, nil, &config.Config{Provider: "gemini"})

	HealthRoutes(router, handler)

	for _, path := range []string{"/healthz", "/metrics"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s route not registered correctly, got status %d", path, rec.Code)
		}
	}
}

func TestBotAndFeedbackRoutesRegisterEndpoints(t *testing.T) {
	router := chi.NewRouter()
	b := bot.New(bot.Deps{
		Provider: stubProvider{},
		Prompts:  stubPromptManager{},
		Executor: stubExecutor{},
		Sessions: session.NewStore(),
	}, bot.DefaultOptions())
	defer b.Close()

	BotRoutes(router, handlers.NewBotHandler(b, zap.NewNop()))
	FeedbackRoutes(router, handlers.NewFeedbackHandler(nil, nil))

	paths := walk(t, router)
	expected := []string{
		"POST /api/v1/bot/messages",
		"POST /api/v1/detect",
		"GET /api/v1/feedback/export",
		"GET /api/v1/feedback/stats",
		"POST /api/v1/feedback/{request_id}",
	}
	for _, route := range expected {
		if !paths[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestFeedbackRoutesSkippedWithoutHandler(t *testing.T) {
	router := chi.NewRouter()
	FeedbackRoutes(router, nil)

	if len(walk(t, router)) != 0 {
		t.Fatal("expected no routes without a feedback handler")
	}
}
