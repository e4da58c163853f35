package handlers

import (
	"net/http"

	"zia/internal/config"
	"zia/internal/executor"
	"zia/internal/llm"
	"zia/internal/prompts"
	"zia/internal/session"
	"zia/internal/utils"
)

const (
	serviceName    = "zia"
	serviceVersion = "1.0.0"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status         string                    `json:"status"`  // "ready" | "not_ready"
	Service        string                    `json:"service"` // Service name
	Checks         map[string]ReadinessCheck `json:"checks"`  // Individual check results
	ActiveSessions int                       `json:"active_sessions"`
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	executor      executor.Executor
	sessions      *session.Store
	database      Pinger
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
	}
}

func (handler *HealthHandler) WithExecutor(exec executor.Executor) *HealthHandler {
	handler.executor = exec
	return handler
}

func (handler *HealthHandler) WithSessions(store *session.Store) *HealthHandler {
	handler.sessions = store
	return handler
}

// WithDatabase adds an optional check. A failing database degrades ratings
// only, so it is reported but never makes the bot unready.
func (handler *HealthHandler) WithDatabase(db Pinger) *HealthHandler {
	handler.database = db
	return handler
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	fail := func(name, message string) {
		checks[name] = ReadinessCheck{Status: "failed", Message: message}
		allChecksPass = false
	}
	ok := func(name string) {
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	if handler.provider == nil {
		fail("provider", "AI provider not initialized")
	} else {
		ok("provider")
	}

	switch {
	case handler.promptManager == nil:
		fail("prompt_manager", "Prompt manager not initialized")
	case len(handler.promptManager.GetTemplates()) == 0:
		fail("prompt_manager", "No prompt templates loaded")
	default:
		ok("prompt_manager")
	}

	if handler.executor == nil {
		fail("executor", "Code executor not initialized")
	} else {
		ok("executor")
	}

	if handler.config == nil {
		fail("configuration", "Configuration not loaded")
	} else {
		ok("configuration")
	}

	if handler.database != nil {
		if err := handler.database.Ping(); err != nil {
			checks["database"] = ReadinessCheck{Status: "failed", Message: "Feedback database unreachable"}
		} else {
			ok("database")
		}
	}

	response := ReadinessResponse{
		Service: serviceName,
		Checks:  checks,
	}
	if handler.sessions != nil {
		response.ActiveSessions = handler.sessions.Count()
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
