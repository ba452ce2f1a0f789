package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, dir, name, content string) string {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
	return skillDir
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/skills1", "/tmp/skills2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.skillDirs)
	})

	t.Run("with roots", func(t *testing.T) {
		discovery, err := NewDiscovery(WithRoots("/proj", "/plugin"))
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join("/proj", ".dskit", "skills"),
			filepath.Join("/plugin", "skills"),
		}, discovery.skillDirs)
	})

	t.Run("no dirs", func(t *testing.T) {
		_, err := NewDiscovery()
		assert.Error(t, err)
	})

	t.Run("empty plugin root", func(t *testing.T) {
		_, err := NewDiscovery(WithRoots("/proj", ""))
		assert.Error(t, err)
	})
}

func TestDiscoverSkills(t *testing.T) {
	tmpDir := t.TempDir()

	componentDir := writeSkill(t, tmpDir, "ds-component", `---
name: ds-component
description: Scaffold design system components
agent: component-agent
triggers:
  - ds-component
  - create component
arguments:
  - name: component
    description: Component name to scaffold
    required: true
---

# Component Skill

Scaffold a component following the design system conventions.
`)

	writeSkill(t, tmpDir, "ds-tokens", `---
name: ds-tokens
description: Answer design token questions
agent: token-agent
triggers:
  - ds-tokens
  - design tokens
---

# Tokens Skill
`)

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	found, err := discovery.DiscoverSkills(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Lexical order within a directory.
	component := found[0]
	assert.Equal(t, "ds-component", component.Name)
	assert.Equal(t, "Scaffold design system components", component.Description)
	assert.Equal(t, "component-agent", component.Agent)
	assert.Equal(t, []string{"ds-component", "create component"}, component.Triggers)
	assert.Equal(t, componentDir, component.Directory)
	assert.Contains(t, component.Content, "# Component Skill")
	assert.NotContains(t, component.Content, "agent: component-agent")

	require.Len(t, component.Arguments, 1)
	assert.Equal(t, "component", component.Arguments[0].Name)
	assert.True(t, component.Arguments[0].Required)

	assert.Equal(t, "ds-tokens", found[1].Name)
}

func TestDiscoverSkillsPrecedence(t *testing.T) {
	projectDir := t.TempDir()
	pluginDir := t.TempDir()

	writeSkill(t, projectDir, "ds-tokens", `---
name: ds-tokens
description: Project-local token skill
agent: token-agent
---

Local override.
`)
	writeSkill(t, pluginDir, "ds-tokens", `---
name: ds-tokens
description: Plugin token skill
agent: token-agent
---

Global copy.
`)
	writeSkill(t, pluginDir, "ds-audit", `---
name: ds-audit
description: Audit skill
agent: audit-agent
---

Audit.
`)

	discovery, err := NewDiscovery(WithSkillDirs(projectDir, pluginDir))
	require.NoError(t, err)

	found, err := discovery.DiscoverSkills(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "ds-tokens", found[0].Name)
	assert.Equal(t, "Project-local token skill", found[0].Description, "project dir shadows plugin dir")
	assert.Equal(t, "ds-audit", found[1].Name)
}

func TestDiscoverSkillsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	writeSkill(t, tmpDir, "no-agent", `---
name: no-agent
description: Missing the agent field
---

Body.
`)
	writeSkill(t, tmpDir, "no-frontmatter", `# Just Markdown

No frontmatter at all.
`)
	writeSkill(t, tmpDir, "valid", `---
name: valid
description: A valid skill
agent: some-agent
---

Body.
`)
	// A directory without SKILL.md is ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "empty-dir"), 0o755))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	found, err := discovery.DiscoverSkills(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "valid", found[0].Name)
}

func TestDiscoverSkillsMissingDir(t *testing.T) {
	discovery, err := NewDiscovery(WithSkillDirs(filepath.Join(t.TempDir(), "does-not-exist")))
	require.NoError(t, err)

	found, err := discovery.DiscoverSkills(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFilterByAllowlist(t *testing.T) {
	all := []*Skill{
		{Name: "ds-component"},
		{Name: "ds-tokens"},
		{Name: "audit"},
	}

	t.Run("empty patterns keep everything", func(t *testing.T) {
		assert.Equal(t, all, FilterByAllowlist(context.Background(), all, nil))
	})

	t.Run("glob pattern", func(t *testing.T) {
		filtered := FilterByAllowlist(context.Background(), all, []string{"ds-*"})
		require.Len(t, filtered, 2)
		assert.Equal(t, "ds-component", filtered[0].Name)
		assert.Equal(t, "ds-tokens", filtered[1].Name)
	})

	t.Run("exact name", func(t *testing.T) {
		filtered := FilterByAllowlist(context.Background(), all, []string{"audit"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "audit", filtered[0].Name)
	})

	t.Run("invalid pattern is ignored", func(t *testing.T) {
		filtered := FilterByAllowlist(context.Background(), all, []string{"[", "audit"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "audit", filtered[0].Name)
	})
}
