package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"zia/internal/bot"
	"zia/internal/executor"
	"zia/internal/models"
	"zia/internal/prompts"
	"zia/internal/render"
	"zia/internal/session"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDetectCommand(t *testing.T) {
	out, err := runRoot(t, "```\ndef solve(nums: List[int]) -> int:\n    return max(nums)\n```", "detect", "--scores")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "python", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "cpp"))
	assert.True(t, strings.HasPrefix(lines[3], "python"))
}

func TestDetectCommandMissingFile(t *testing.T) {
	_, err := runRoot(t, "", "detect", "/definitely/not/here.cpp")
	assert.Error(t, err)
}

func TestParseProblemCommand(t *testing.T) {
	text := "🚀 TITLE: Two Sum\n🚀 DIFFICULTY: Easy\n🚀 STATEMENT:\nFind two numbers.\n"
	out, err := runRoot(t, text, "parse", "problem", "-")
	require.NoError(t, err)

	var got map[string]*string
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.NotNil(t, got["title"])
	assert.Equal(t, "Two Sum", *got["title"])
	assert.Equal(t, "Find two numbers.", *got["statement"])
	assert.Nil(t, got["constraints"], "absent sections are null")
}

func TestParseFeedbackCommand(t *testing.T) {
	text := "🚀 HEADER: Correctness\nWorks.\n🚀 HEADER: Final Verdict\nPASS\n"
	out, err := runRoot(t, text, "parse", "feedback")
	require.NoError(t, err)

	var got struct {
		Sections map[string]*string `yaml:"sections"`
		Pass     bool               `yaml:"pass"`
		Verdict  string             `yaml:"verdict"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.True(t, got.Pass)
	assert.Equal(t, "PASS", got.Verdict)
	assert.Equal(t, "Works.", *got.Sections["correctness"])
	assert.Nil(t, got.Sections["edge_cases"])
}

func TestParseUnknownKind(t *testing.T) {
	_, err := runRoot(t, "text", "parse", "essay")
	assert.ErrorContains(t, err, "unknown section kind")
}

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (s *scriptedReader) SetPrompt(p string) { s.prompts = append(s.prompts, p) }

type echoProvider struct{}

func (echoProvider) GenerateContent(_ context.Context, _, prompt, requestID string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{Content: "insight", RequestID: requestID}, nil
}

func (echoProvider) GetProviderName() string { return "echo" }

type recordingExecutor struct {
	sources []string
}

func (r *recordingExecutor) Name() string { return "recording" }

func (r *recordingExecutor) Execute(_ context.Context, _ models.Language, source string) (*executor.Result, error) {
	r.sources = append(r.sources, source)
	return &executor.Result{Stdout: "3\n", Status: "Success", Time: "N/A", Memory: "N/A"}, nil
}

func newTestREPL(t *testing.T) (*repl, *bytes.Buffer, *recordingExecutor, *session.Store) {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)

	exec := &recordingExecutor{}
	sessions := session.NewStore()
	opts := bot.DefaultOptions()
	opts.Cooldown = 0
	b := bot.New(bot.Deps{
		Provider: echoProvider{},
		Prompts:  pm,
		Executor: exec,
		Sessions: sessions,
		Logger:   zap.NewNop(),
	}, opts)
	t.Cleanup(func() { _ = b.Close() })

	var out bytes.Buffer
	return newREPL(b, &out, "local", ""), &out, exec, sessions
}

func TestREPLSendsMultiLineFences(t *testing.T) {
	r, out, exec, _ := newTestREPL(t)
	in := &scriptedReader{lines: []string{
		"!run ```python",
		"print(1 + 2)",
		"```",
		":quit",
		"!help",
	}}

	require.NoError(t, r.run(context.Background(), in))

	require.Len(t, exec.sources, 1)
	assert.Contains(t, exec.sources[0], "print(1 + 2)")
	assert.Contains(t, out.String(), "👨‍💻 Code Execution Result (PYTHON)")
	assert.Contains(t, out.String(), "bye")
	assert.NotContains(t, out.String(), "Available Commands", "input after :quit is not read")
	assert.Contains(t, in.prompts, "     | ", "continuation prompt while the fence is open")
}

func TestREPLBackslashContinuation(t *testing.T) {
	r, _, exec, _ := newTestREPL(t)
	in := &scriptedReader{lines: []string{"!py \\", "print(3)"}}

	require.NoError(t, r.run(context.Background(), in))
	require.Len(t, exec.sources, 1)
	assert.Contains(t, exec.sources[0], "print(3)")
}

func TestREPLMetaCommands(t *testing.T) {
	r, out, _, _ := newTestREPL(t)
	in := &scriptedReader{lines: []string{
		":user alice",
		`:name "Alice Liddell"`,
		":whoami",
		":user",
		":dance",
		"hello",
	}}

	require.NoError(t, r.run(context.Background(), in))

	text := out.String()
	assert.Contains(t, text, "now chatting as alice (alice)")
	assert.Contains(t, text, "Alice Liddell (alice)")
	assert.Contains(t, text, "usage: :user <id>")
	assert.Contains(t, text, "unknown REPL command :dance")
	assert.Contains(t, text, "(not a command, try !help)")
	assert.Equal(t, "alice", r.userID)
	assert.Contains(t, in.prompts, "Alice Liddell> ")
}

func TestREPLInterruptDropsPendingInput(t *testing.T) {
	r, _, exec, _ := newTestREPL(t)
	in := &scriptedReader{lines: []string{"!py ```", "^C", "!py print(5)", "^C", "!py print(6)"}}

	require.NoError(t, r.run(context.Background(), in))
	require.Len(t, exec.sources, 1, "second interrupt on an empty line exits")
	assert.Contains(t, exec.sources[0], "print(5)")
}

func TestREPLIdentityReachesBot(t *testing.T) {
	r, _, _, sessions := newTestREPL(t)
	in := &scriptedReader{lines: []string{":user bob", "!interview start"}}

	require.NoError(t, r.run(context.Background(), in))
	_, active := sessions.GetActive("bob")
	assert.True(t, active)
}

func TestFormatReply(t *testing.T) {
	embed := render.NewEmbed("🏁 Interview Session Ended").
		WithDescription("Great effort!").
		AddInlineField("Duration", "3 minutes").
		AddInlineField("Hints Used", "1").
		AddField("Notes", "keep going").
		WithFooter("footer")

	got := formatReply(bot.Reply{Content: "hi", Embed: embed})

	assert.True(t, strings.HasPrefix(got, "hi\n"+rule))
	assert.Contains(t, got, "Duration: 3 minutes  |  Hints Used: 1")
	assert.Contains(t, got, "\nNotes\nkeep going\n")
	assert.True(t, strings.HasSuffix(got, "footer\n"+rule))

	assert.Equal(t, "plain", formatReply(bot.Reply{Content: "plain"}))
}
