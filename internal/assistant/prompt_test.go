package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompts(t *testing.T) {
	t.Parallel()

	vars := PromptVars{Company: "Acme", CompanyDescription: "a hardware store", DocumentName: "Acme FAQ"}
	for _, lang := range []string{"sv", "en"} {
		ps, err := LoadPrompts(lang, vars)
		require.NoError(t, err, lang)
		assert.Equal(t, lang, ps.Language)
		assert.NotEmpty(t, ps.Version)
		assert.Contains(t, ps.System, "Acme, a hardware store")
		assert.Contains(t, ps.Greeting, "Acme")
		assert.Contains(t, ps.Question, "{question}")
		assert.Contains(t, ps.Question, "{context}")
		assert.NotContains(t, ps.System, "{{")
		assert.Equal(t, "Acme FAQ", ps.DocumentName)
	}
}

func TestLoadPrompts_DefaultsToSwedish(t *testing.T) {
	t.Parallel()

	ps, err := LoadPrompts("", PromptVars{Company: "TechNova AB"})
	require.NoError(t, err)
	assert.Equal(t, "sv", ps.Language)
	assert.Equal(t, "Källa", ps.SourceLabel)
	assert.True(t, strings.Contains(ps.System, "svenska"))
}

func TestLoadPrompts_SpeakerLabels(t *testing.T) {
	t.Parallel()

	sv, err := LoadPrompts("sv", PromptVars{Company: "TechNova AB"})
	require.NoError(t, err)
	assert.Equal(t, "Du", sv.UserLabel)
	assert.Equal(t, "Bot", sv.BotLabel)

	en, err := LoadPrompts("en", PromptVars{Company: "TechNova AB"})
	require.NoError(t, err)
	assert.Equal(t, "You", en.UserLabel)
	assert.Equal(t, "Bot", en.BotLabel)

	bare, err := ParsePrompts([]byte("version: x\nsource_label: S\ngreeting: hi\nsystem: sys\nquestion: \"{question} {context}\"\n"), PromptVars{})
	require.NoError(t, err)
	assert.Equal(t, "User", bare.UserLabel)
	assert.Equal(t, "Bot", bare.BotLabel)
}

func TestLoadPrompts_UnknownLanguage(t *testing.T) {
	t.Parallel()

	_, err := LoadPrompts("fr", PromptVars{})
	assert.ErrorContains(t, err, "fr")
}

func TestParsePrompts_RequiresPlaceholders(t *testing.T) {
	t.Parallel()

	raw := []byte("version: x\nsource_label: S\ngreeting: hi\nsystem: sys\nquestion: only {question}\n")
	_, err := ParsePrompts(raw, PromptVars{})
	assert.ErrorContains(t, err, "{context}")
}
