package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

const validV3Config = `version: 3
project:
  name: storefront
  type: application
stack:
  framework: next
  ui_library: shadcn
  state_management: zustand
  testing:
    unit: vitest
    e2e: playwright
customizations:
  - dark-mode
components:
  installed:
    - button
  custom:
    - pricing-table
`

func writeConfig(t *testing.T, projectDir, content string) {
	t.Helper()
	dir := filepath.Join(projectDir, ConfigDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
}

func TestLoadMissing(t *testing.T) {
	file, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StateMissing, file.State)
	assert.Nil(t, file.Config)
}

func TestLoadValid(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, validV3Config)

	file, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, StateValid, file.State)
	assert.Equal(t, 3, file.Version)

	cfg := file.Config
	require.NotNil(t, cfg)
	assert.Equal(t, "storefront", cfg.Project.Name)
	assert.Equal(t, projecttypes.ProjectTypeApplication, cfg.Project.Type)
	assert.Equal(t, projecttypes.FrameworkNext, cfg.Stack.Framework)
	assert.Equal(t, projecttypes.UILibraryShadcn, cfg.Stack.UILibrary)
	assert.Equal(t, "vitest", cfg.Stack.Testing.Unit)
	assert.Equal(t, "playwright", cfg.Stack.Testing.E2E)
	assert.Equal(t, []string{"dark-mode"}, cfg.Customizations)
	assert.Equal(t, []string{"button"}, cfg.Components.Installed)
	assert.Equal(t, []string{"pricing-table"}, cfg.Components.Custom)
}

func TestLoadMalformed(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "version: 3\nproject:\n  name: [unclosed\n")

	file, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, StateMalformed, file.State)
	require.NotNil(t, file.ParseErr)
	assert.Equal(t, Path(projectDir), file.ParseErr.Path)
	assert.Greater(t, file.ParseErr.Line, 0, "the parse error carries a line number")
	assert.Nil(t, file.Config)
}

func TestLoadOutdatedSchema(t *testing.T) {
	t.Run("explicit v1", func(t *testing.T) {
		projectDir := t.TempDir()
		writeConfig(t, projectDir, "version: 1\nname: legacy\nframework: next\ntesting: vitest\n")

		file, err := Load(projectDir)
		require.NoError(t, err)
		assert.Equal(t, StateOutdatedSchema, file.State)
		assert.Equal(t, 1, file.Version)
	})

	t.Run("inferred v1 from flat shape", func(t *testing.T) {
		projectDir := t.TempDir()
		writeConfig(t, projectDir, "name: legacy\nframework: next\n")

		file, err := Load(projectDir)
		require.NoError(t, err)
		assert.Equal(t, StateOutdatedSchema, file.State)
		assert.Equal(t, 1, file.Version)
	})

	t.Run("inferred v2 from testing string", func(t *testing.T) {
		projectDir := t.TempDir()
		writeConfig(t, projectDir, `project:
  name: legacy
stack:
  framework: next
  testing: vitest
`)

		file, err := Load(projectDir)
		require.NoError(t, err)
		assert.Equal(t, StateOutdatedSchema, file.State)
		assert.Equal(t, 2, file.Version)
	})
}

func TestLoadUnknownKeys(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, validV3Config+"zz_extra: true\nlegacy_theme: dark\n")

	file, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, StateValid, file.State)
	assert.Equal(t, []string{"legacy_theme", "zz_extra"}, file.UnknownKeys())
}

func TestLoadWeakTyping(t *testing.T) {
	// A numeric project name is a field problem, not a malformed file.
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `version: 3
project:
  name: 42
  type: application
stack:
  framework: next
  ui_library: shadcn
  state_management: none
  testing:
    unit: vitest
    e2e: none
`)

	file, err := Load(projectDir)
	require.NoError(t, err)
	assert.Equal(t, StateValid, file.State)
	assert.Equal(t, "42", file.Config.Project.Name)
}
