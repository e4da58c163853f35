package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zia/internal/executor"
	"zia/internal/feedback"
	"zia/internal/llm"
	"zia/internal/models"
	"zia/internal/prompts"
	"zia/internal/session"
)

type providerCall struct {
	System string
	Prompt string
}

// fakeProvider answers from a queue; once it is drained the last answer repeats
type fakeProvider struct {
	mu      sync.Mutex
	answers []string
	err     error
	calls   []providerCall
}

func (f *fakeProvider) GenerateContent(ctx context.Context, system, prompt, requestID string) (*models.GenerationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, providerCall{System: system, Prompt: prompt})
	if f.err != nil {
		return nil, f.err
	}
	answer := ""
	if len(f.answers) > 0 {
		answer = f.answers[0]
		if len(f.answers) > 1 {
			f.answers = f.answers[1:]
		}
	}
	return &models.GenerationResponse{
		Content:   answer,
		RequestID: requestID,
		Metadata:  models.GenerationMetadata{Provider: "fake", Model: "fake-model"},
	}, nil
}

func (f *fakeProvider) GetProviderName() string { return "fake" }

func (f *fakeProvider) lastCall(t *testing.T) providerCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls, "provider was never called")
	return f.calls[len(f.calls)-1]
}

type execCall struct {
	Language models.Language
	Source   string
}

type fakeExecutor struct {
	result *executor.Result
	err    error
	calls  []execCall
}

func (f *fakeExecutor) Name() string { return "fake" }

func (f *fakeExecutor) Execute(ctx context.Context, lang models.Language, source string) (*executor.Result, error) {
	f.calls = append(f.calls, execCall{Language: lang, Source: source})
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &executor.Result{Status: "Success", Time: "N/A", Memory: "N/A"}, nil
	}
	return f.result, nil
}

type fakeFeedback struct {
	mu       sync.Mutex
	contexts map[string]*models.RequestContext
	ratings  map[string]bool
}

func newFakeFeedback() *fakeFeedback {
	return &fakeFeedback{
		contexts: make(map[string]*models.RequestContext),
		ratings:  make(map[string]bool),
	}
}

func (f *fakeFeedback) StoreRequestContext(ctx *models.RequestContext) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contexts[ctx.RequestID] = ctx
}

func (f *fakeFeedback) SubmitFeedback(requestID string, isPositive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, rated := f.ratings[requestID]; rated {
		return feedback.ErrAlreadyRated
	}
	if _, ok := f.contexts[requestID]; !ok {
		return feedback.ErrContextNotFound
	}
	f.ratings[requestID] = isPositive
	return nil
}

type harness struct {
	bot      *Bot
	provider *fakeProvider
	exec     *fakeExecutor
	feedback *fakeFeedback
	sessions *session.Store
	clock    *time.Time
}

func newHarness(t *testing.T, answers ...string) *harness {
	t.Helper()

	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	h := &harness{
		provider: &fakeProvider{answers: answers},
		exec:     &fakeExecutor{},
		feedback: newFakeFeedback(),
		clock:    &now,
	}
	h.sessions = session.NewStoreWithClock(func() time.Time { return *h.clock })

	opts := DefaultOptions()
	opts.Cooldown = 0
	h.bot = New(Deps{
		Provider: h.provider,
		Prompts:  pm,
		Executor: h.exec,
		Sessions: h.sessions,
		Feedback: h.feedback,
		Logger:   zap.NewNop(),
	}, opts)
	h.bot.now = func() time.Time { return *h.clock }

	ids := 0
	h.bot.newID = func() string {
		ids++
		return []string{
			"11111111-1111-4111-8111-111111111111",
			"22222222-2222-4222-8222-222222222222",
			"33333333-3333-4333-8333-333333333333",
			"44444444-4444-4444-8444-444444444444",
		}[(ids-1)%4]
	}
	t.Cleanup(func() { _ = h.bot.Close() })
	return h
}

func (h *harness) send(content string) []Reply {
	return h.sendAs("u1", content)
}

func (h *harness) sendAs(userID, content string) []Reply {
	return h.bot.Handle(context.Background(), Message{UserID: userID, Username: "user-" + userID, Content: content})
}

func (h *harness) advance(d time.Duration) {
	*h.clock = h.clock.Add(d)
}

var errBoom = errors.New("boom")

var _ llm.Provider = (*fakeProvider)(nil)
