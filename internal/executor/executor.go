package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zia/internal/models"
)

// ErrUnsupportedLanguage is returned before any backend call is made
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Result is the outcome of one compile-and-run
type Result struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Status        string `json:"status"`
	Time          string `json:"time"`
	Memory        string `json:"memory"`
}

// HasOutput reports whether any stream produced text
func (r *Result) HasOutput() bool {
	return r.Stdout != "" || r.Stderr != "" || r.CompileOutput != ""
}

// Failed reports whether compilation or the program reported an error
func (r *Result) Failed() bool {
	return r.Stderr != "" || r.CompileOutput != ""
}

// Executor compiles and runs a source file in some sandbox
type Executor interface {
	Execute(ctx context.Context, lang models.Language, source string) (*Result, error)
	Name() string
}

// ExecutionError wraps failures of the execution backend itself, never of the user's program
type ExecutionError struct {
	Backend string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s executor: %s: %v", e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("%s executor: %s", e.Backend, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Settings configures every backend; each reads only what it needs
type Settings struct {
	WandboxURL  string
	HTTPTimeout time.Duration
	WallTime    time.Duration
	MemoryBytes int64
	NanoCPUs    int64
}

func DefaultSettings() Settings {
	return Settings{
		WandboxURL:  DefaultWandboxURL,
		HTTPTimeout: 30 * time.Second,
		WallTime:    10 * time.Second,
		MemoryBytes: 512 * 1024 * 1024,
		NanoCPUs:    1_000_000_000,
	}
}
