package assistant

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.yaml
var promptFS embed.FS

// DefaultLanguage is the prompt set used when none is configured.
const DefaultLanguage = "sv"

// PromptVars are substituted into a prompt set when it is loaded.
type PromptVars struct {
	// Company is the business the assistant represents, e.g. "TechNova AB".
	Company string
	// CompanyDescription is an optional phrase appended to the company name
	// in the system prompt.
	CompanyDescription string
	// DocumentName labels the source document in fallback citation titles.
	DocumentName string
}

// PromptSet is a versioned, language-specific bundle of prompt text.
type PromptSet struct {
	// Version identifies the prompt revision, logged with each answer.
	Version string `yaml:"version"`
	// Language is the ISO code of the prompt language.
	Language string `yaml:"language"`
	// SourceLabel prefixes numbered context excerpts and fallback titles.
	SourceLabel string `yaml:"source_label"`
	// UserLabel and BotLabel name the speakers in interactive clients.
	UserLabel string `yaml:"user_label"`
	BotLabel  string `yaml:"bot_label"`
	// Greeting is the canned reply to small talk.
	Greeting string `yaml:"greeting"`
	// Welcome is the first message an interactive client shows.
	Welcome string `yaml:"welcome"`
	// ErrorMessage is shown to end users when answering fails.
	ErrorMessage string `yaml:"error_message"`
	// System is the system message.
	System string `yaml:"system"`
	// Question is the final user turn. It must contain {question} and {context}.
	Question string `yaml:"question"`
	// DocumentName is copied from PromptVars.
	DocumentName string `yaml:"-"`
}

// LoadPrompts reads the embedded prompt set for lang and renders it with vars.
func LoadPrompts(lang string, vars PromptVars) (*PromptSet, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	raw, err := promptFS.ReadFile("prompts/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("assistant: no prompt set for language %q", lang)
	}
	return ParsePrompts(raw, vars)
}

// ParsePrompts decodes a YAML prompt set and renders its templates.
func ParsePrompts(raw []byte, vars PromptVars) (*PromptSet, error) {
	var ps PromptSet
	if err := yaml.Unmarshal(raw, &ps); err != nil {
		return nil, fmt.Errorf("assistant: failed to parse prompt set: %w", err)
	}

	fields := []struct {
		name string
		val  *string
	}{
		{"greeting", &ps.Greeting},
		{"welcome", &ps.Welcome},
		{"error_message", &ps.ErrorMessage},
		{"system", &ps.System},
		{"question", &ps.Question},
	}
	for _, f := range fields {
		out, err := render(f.name, *f.val, vars)
		if err != nil {
			return nil, err
		}
		*f.val = out
	}

	if ps.System == "" || ps.Greeting == "" || ps.SourceLabel == "" {
		return nil, fmt.Errorf("assistant: prompt set %q is missing system, greeting or source_label", ps.Version)
	}
	if !strings.Contains(ps.Question, "{question}") || !strings.Contains(ps.Question, "{context}") {
		return nil, fmt.Errorf("assistant: prompt set %q question template must contain {question} and {context}", ps.Version)
	}

	if ps.UserLabel == "" {
		ps.UserLabel = "User"
	}
	if ps.BotLabel == "" {
		ps.BotLabel = "Bot"
	}
	ps.DocumentName = vars.DocumentName
	return &ps, nil
}

func render(name, text string, vars PromptVars) (string, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("assistant: invalid %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("assistant: rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
