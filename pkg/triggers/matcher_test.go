package triggers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	m := NewMatcher([]Entry{
		{Phrase: "ds-component", Skill: "ds-component"},
		{Phrase: "create component", Skill: "ds-component"},
		{Phrase: "ds-accessibility", Skill: "ds-accessibility"},
		{Phrase: "accessibility", Skill: "ds-accessibility"},
		{Phrase: "a11y", Skill: "ds-accessibility"},
		{Phrase: "ds-tokens", Skill: "ds-tokens"},
	}, "")

	tests := []struct {
		name  string
		input string
		skill string
		ok    bool
	}{
		{
			name:  "exact phrase",
			input: "ds-accessibility",
			skill: "ds-accessibility",
			ok:    true,
		},
		{
			name:  "phrase embedded in sentence",
			input: "please fix the accessibility issues in my navbar",
			skill: "ds-accessibility",
			ok:    true,
		},
		{
			name:  "case insensitive",
			input: "Run A11Y checks on this page",
			skill: "ds-accessibility",
			ok:    true,
		},
		{
			name:  "no phrase contained",
			input: "what is the weather today",
			skill: "",
			ok:    false,
		},
		{
			name:  "longest phrase wins",
			input: "ds-accessibility audit please",
			skill: "ds-accessibility",
			ok:    true,
		},
		{
			name:  "empty input",
			input: "",
			skill: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skill, ok := m.Match(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.skill, skill)
		})
	}
}

func TestMatchTieBreak(t *testing.T) {
	t.Run("longer phrase beats shorter regardless of order", func(t *testing.T) {
		m := NewMatcher([]Entry{
			{Phrase: "tokens", Skill: "ds-tokens"},
			{Phrase: "design tokens audit", Skill: "ds-token-audit"},
		}, "")

		skill, ok := m.Match("run a design tokens audit for me")
		require.True(t, ok)
		assert.Equal(t, "ds-token-audit", skill)
	})

	t.Run("equal length keeps first registered", func(t *testing.T) {
		m := NewMatcher([]Entry{
			{Phrase: "navbar", Skill: "first"},
			{Phrase: "button", Skill: "second"},
		}, "")

		skill, ok := m.Match("style the navbar and the button")
		require.True(t, ok)
		assert.Equal(t, "first", skill)
	})
}

func TestMatcherNormalization(t *testing.T) {
	m := NewMatcher([]Entry{
		{Phrase: "  Spaced Phrase  ", Skill: "spaced"},
		{Phrase: "", Skill: "ignored"},
		{Phrase: "orphan", Skill: ""},
	}, "")

	skill, ok := m.Match("this contains a spaced phrase inside")
	require.True(t, ok)
	assert.Equal(t, "spaced", skill)

	_, ok = m.Match("orphan")
	assert.False(t, ok, "entries without a skill are dropped")
}

func TestFallback(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		m := NewMatcher(nil, "design-system")
		name, ok := m.Fallback()
		assert.True(t, ok)
		assert.Equal(t, "design-system", name)
	})

	t.Run("not configured", func(t *testing.T) {
		m := NewMatcher(nil, "")
		_, ok := m.Fallback()
		assert.False(t, ok)
	})
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		skill string
		args  string
		ok    bool
	}{
		{
			name:  "bare command",
			input: "/ds-component",
			skill: "ds-component",
			ok:    true,
		},
		{
			name:  "command with args",
			input: "/ds-component create a card with hover state",
			skill: "ds-component",
			args:  "create a card with hover state",
			ok:    true,
		},
		{
			name:  "leading whitespace",
			input: "   /ds-audit",
			skill: "ds-audit",
			ok:    true,
		},
		{
			name:  "not a command",
			input: "fix accessibility issues",
			ok:    false,
		},
		{
			name:  "bare slash",
			input: "/",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skill, args, ok := ParseCommand(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.skill, skill)
			assert.Equal(t, tt.args, args)
		})
	}
}
