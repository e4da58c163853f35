package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"zia/internal/models"
)

const DefaultWandboxURL = "https://wandbox.org/api/compile.json"

func init() {
	RegisterExecutor("wandbox", func(settings Settings) (Executor, error) {
		return NewWandbox(settings.WandboxURL, &http.Client{Timeout: settings.HTTPTimeout}), nil
	})
}

// Wandbox runs code on the public wandbox.org compile API
type Wandbox struct {
	url    string
	client *http.Client
}

type wandboxRequest struct {
	Compiler string `json:"compiler"`
	Code     string `json:"code"`
	Save     bool   `json:"save"`
}

// status arrives as a string but older deployments send a number
type wandboxResponse struct {
	Status          json.RawMessage `json:"status"`
	Signal          string          `json:"signal"`
	CompilerMessage string          `json:"compiler_message"`
	CompilerError   string          `json:"compiler_error"`
	ProgramMessage  string          `json:"program_message"`
	ProgramError    string          `json:"program_error"`
}

func NewWandbox(url string, client *http.Client) *Wandbox {
	if url == "" {
		url = DefaultWandboxURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Wandbox{url: url, client: client}
}

func (w *Wandbox) Name() string {
	return "wandbox"
}

func (w *Wandbox) Execute(ctx context.Context, lang models.Language, source string) (*Result, error) {
	spec, err := SpecFor(lang)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(wandboxRequest{Compiler: spec.Compiler, Code: source})
	if err != nil {
		return nil, &ExecutionError{Backend: w.Name(), Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &ExecutionError{Backend: w.Name(), Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, &ExecutionError{Backend: w.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ExecutionError{
			Backend: w.Name(),
			Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var out wandboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ExecutionError{Backend: w.Name(), Message: "failed to decode response", Err: err}
	}

	compileOutput := out.CompilerMessage
	if compileOutput == "" {
		compileOutput = out.CompilerError
	}

	return &Result{
		Stdout:        out.ProgramMessage,
		Stderr:        out.ProgramError,
		CompileOutput: compileOutput,
		Status:        statusLine(out.Status),
		Time:          "N/A",
		Memory:        "N/A",
	}, nil
}

func statusLine(raw json.RawMessage) string {
	status := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if status == "0" {
		return "Success"
	}
	return "Exit Code: " + status
}
