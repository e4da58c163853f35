package prompts

import (
	"strings"
	"testing"
)

func newManager(t *testing.T) *PromptManager {
	t.Helper()
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("NewPromptManager error: %v", err)
	}
	return pm
}

func TestPromptManagerLoadsAllModes(t *testing.T) {
	pm := newManager(t)

	for _, mode := range []string{ModeAsk, ModeProblem, ModeHint, ModeEvaluate, ModeInsight} {
		if _, ok := pm.GetTemplates()[mode]; !ok {
			t.Fatalf("expected mode %s to be loaded", mode)
		}
	}
	if len(pm.Modes()) != len(pm.GetTemplates()) {
		t.Fatalf("Modes and GetTemplates disagree: %v", pm.Modes())
	}
}

func TestPromptManagerBuildAsk(t *testing.T) {
	pm := newManager(t)

	prompt, err := pm.BuildPrompt(ModeAsk, "", map[string]string{"Question": "explain two pointers"})
	if err != nil {
		t.Fatalf("BuildPrompt error: %v", err)
	}
	if prompt.User != "explain two pointers" {
		t.Fatalf("unexpected user prompt: %q", prompt.User)
	}
	if !strings.Contains(prompt.System, "🚀 INTUITION & APPROACH") {
		t.Fatalf("expected sectioned system instruction, got %s", prompt.System)
	}
}

func TestPromptManagerBuildEvaluate(t *testing.T) {
	pm := newManager(t)

	data := map[string]any{
		"Problem":  "Two Sum",
		"Language": "python",
		"Code":     "def f(): pass",
	}
	prompt, err := pm.BuildPrompt(ModeEvaluate, DefaultVariant, data)
	if err != nil {
		t.Fatalf("BuildPrompt error: %v", err)
	}
	if !containsAll(prompt.User, []string{"Two Sum", "def f(): pass", "🚀 HEADER: Final Verdict"}) {
		t.Fatalf("prompt did not contain expected values: %s", prompt.User)
	}
}

func TestPromptManagerHintVariants(t *testing.T) {
	pm := newManager(t)

	first, err := pm.BuildPrompt(ModeHint, "first", map[string]any{"Problem": "P", "HintsUsed": 0})
	if err != nil {
		t.Fatalf("BuildPrompt error: %v", err)
	}
	followup, err := pm.BuildPrompt(ModeHint, "followup", map[string]any{"Problem": "P", "HintsUsed": 2})
	if err != nil {
		t.Fatalf("BuildPrompt error: %v", err)
	}
	if first.User == followup.User {
		t.Fatal("expected hint variants to differ")
	}
	if !strings.Contains(followup.User, "2 hint(s)") {
		t.Fatalf("expected hint count in followup prompt: %s", followup.User)
	}
}

func TestPromptManagerProblemOptionalFields(t *testing.T) {
	pm := newManager(t)

	prompt, err := pm.BuildPrompt(ModeProblem, "", map[string]string{})
	if err != nil {
		t.Fatalf("BuildPrompt error: %v", err)
	}
	if strings.Contains(prompt.User, "related to") {
		t.Fatalf("did not expect topic clause: %s", prompt.User)
	}

	prompt, err = pm.BuildPrompt(ModeProblem, "", map[string]string{"Topic": "graphs"})
	if err != nil {
		t.Fatalf("BuildPrompt error: %v", err)
	}
	if !strings.Contains(prompt.User, "related to graphs") {
		t.Fatalf("expected topic clause: %s", prompt.User)
	}
}

func TestPromptManagerErrors(t *testing.T) {
	pm := newManager(t)

	if _, err := pm.BuildPrompt("unknown", "", nil); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if _, err := pm.BuildPrompt(ModeInsight, "missing", nil); err == nil {
		t.Fatalf("expected error for missing variant")
	}
}

func containsAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
