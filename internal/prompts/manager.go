package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// mode names, one per template file
const (
	ModeAsk      = "ask"
	ModeProblem  = "problem"
	ModeHint     = "hint"
	ModeEvaluate = "evaluate"
	ModeInsight  = "insight"
)

const DefaultVariant = "default"

// Prompt is a rendered request for the generator
type Prompt struct {
	System string
	User   string
}

// PromptProvider is what handlers and commands depend on
type PromptProvider interface {
	BuildPrompt(mode, variant string, data any) (*Prompt, error)
	GetTemplates() map[string]map[string]*template.Template
}

type PromptManager struct {
	templates map[string]map[string]*template.Template // mode -> variant -> user prompt
	systems   map[string]string                        // mode -> system instruction
}

// loaded prompt template
type PromptTemplate struct {
	SystemInstruction string            `yaml:"system_instruction"`
	BasePrompt        string            `yaml:"base_prompt"`
	Variants          map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		templates: make(map[string]map[string]*template.Template),
		systems:   make(map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds a prompt for the given mode and variant
func (pm *PromptManager) BuildPrompt(mode, variant string, data any) (*Prompt, error) {
	modeTemplates, exists := pm.templates[mode]
	if !exists {
		return nil, fmt.Errorf("template not found for mode: %s", mode)
	}

	if variant == "" {
		variant = DefaultVariant
	}
	tmpl, exists := modeTemplates[variant]
	if !exists {
		return nil, fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s/%s: %w", mode, variant, err)
	}

	return &Prompt{
		System: pm.systems[mode],
		User:   strings.TrimSpace(buf.String()),
	}, nil
}

func (pm *PromptManager) GetTemplates() map[string]map[string]*template.Template {
	return pm.templates
}

// Modes lists loaded modes in sorted order
func (pm *PromptManager) Modes() []string {
	modes := make([]string, 0, len(pm.templates))
	for mode := range pm.templates {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	return modes
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}
		if len(promptTemplate.Variants) == 0 {
			return fmt.Errorf("template file %s defines no variants", entry.Name())
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.templates[name] = make(map[string]*template.Template)
		pm.systems[name] = strings.TrimSpace(promptTemplate.SystemInstruction)

		for variant, body := range promptTemplate.Variants {
			var full strings.Builder
			if promptTemplate.BasePrompt != "" {
				full.WriteString(promptTemplate.BasePrompt)
				full.WriteString("\n\n")
			}
			full.WriteString(body)

			tmpl, err := template.New(name + "/" + variant).Option("missingkey=zero").Parse(full.String())
			if err != nil {
				return fmt.Errorf("failed to compile %s/%s: %w", name, variant, err)
			}
			pm.templates[name][variant] = tmpl
		}
	}

	return nil
}
