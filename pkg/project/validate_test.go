package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjnuk/dskit/pkg/report"
)

// issueByCode returns the first issue with the given code, failing the
// test when absent.
func issueByCode(t *testing.T, rep *report.Report, code string) report.Issue {
	t.Helper()
	for _, issue := range rep.Issues {
		if issue.Code == code {
			return issue
		}
	}
	t.Fatalf("no issue with code %q in %+v", code, rep.Issues)
	return report.Issue{}
}

func addComponentFile(t *testing.T, root string, parts ...string) {
	t.Helper()
	full := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("# component\n"), 0o644))
}

func TestValidateHealthy(t *testing.T) {
	projectDir := t.TempDir()
	pluginRoot := t.TempDir()
	writeConfig(t, projectDir, validV3Config)
	addComponentFile(t, pluginRoot, "components", "button.md")
	addComponentFile(t, projectDir, ConfigDirName, "components", "pricing-table.md")

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, pluginRoot).Validate(file)
	assert.Empty(t, rep.Issues)
	assert.Equal(t, report.StatusHealthy, rep.Status())
}

func TestValidateMissingConfig(t *testing.T) {
	projectDir := t.TempDir()
	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, t.TempDir()).Validate(file)
	assert.Equal(t, report.StatusCritical, rep.Status())

	issue := issueByCode(t, rep, "config-missing")
	assert.Equal(t, report.SeverityCritical, issue.Severity)
	assert.Contains(t, issue.Suggestion, "dskit init")
}

func TestValidateMalformedConfig(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "stack: [broken\n")

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, t.TempDir()).Validate(file)
	assert.Equal(t, report.StatusCritical, rep.Status())

	issue := issueByCode(t, rep, "config-malformed")
	assert.Equal(t, report.SeverityCritical, issue.Severity)
}

func TestValidateOutdatedSchema(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "version: 1\nframework: next\n")

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, t.TempDir()).Validate(file)
	assert.Equal(t, report.StatusNeedsRepair, rep.Status())

	issue := issueByCode(t, rep, "schema-outdated")
	assert.Equal(t, report.SeverityHigh, issue.Severity)
	assert.Contains(t, issue.Suggestion, "dskit migrate")
	// Outdated schema short-circuits; field checks never run on an old shape.
	assert.Len(t, rep.Issues, 1)
}

func TestValidateFieldIssues(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `version: 3
project:
  type: application
stack:
  framework: nextjs
  ui_library: shadcn
  state_management: zustand
  testing:
    unit: vitest
    e2e: playwright
`)

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, t.TempDir()).Validate(file)
	assert.Equal(t, report.StatusNeedsRepair, rep.Status())

	missing := issueByCode(t, rep, "missing-field")
	assert.Equal(t, "project.name", missing.Path)
	assert.Equal(t, report.SeverityHigh, missing.Severity)

	invalid := issueByCode(t, rep, "invalid-enum")
	assert.Equal(t, "stack.framework", invalid.Path)
	assert.Equal(t, report.SeverityHigh, invalid.Severity)
	assert.Contains(t, invalid.Message, `"nextjs"`)
	assert.Equal(t, `did you mean "next"?`, invalid.Suggestion)
}

func TestValidateUnknownKey(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, validV3Config+"theme_overrides: {}\n")

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, t.TempDir()).Validate(file)
	issue := issueByCode(t, rep, "unknown-key")
	assert.Equal(t, "theme_overrides", issue.Path)
	assert.Equal(t, report.SeverityMedium, issue.Severity)
	assert.False(t, issue.AutoFixable, "removal needs confirmation")
}

func TestValidateDuplicates(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `version: 3
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
  - dark-mode
`)

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, t.TempDir()).Validate(file)
	// LOW findings are advisory, the overall status stays healthy.
	assert.Equal(t, report.StatusHealthy, rep.Status())

	issue := issueByCode(t, rep, "duplicate-entry")
	assert.Equal(t, "customizations", issue.Path)
	assert.Equal(t, report.SeverityLow, issue.Severity)
	assert.True(t, issue.AutoFixable)
	assert.Len(t, rep.AutoFixable(), 1)
}

func TestValidateReferences(t *testing.T) {
	projectDir := t.TempDir()
	pluginRoot := t.TempDir()
	writeConfig(t, projectDir, validV3Config)
	// button.md exists in the plugin catalog, pricing-table.md does not
	// exist under the project.
	addComponentFile(t, pluginRoot, "components", "button.md")

	file, err := Load(projectDir)
	require.NoError(t, err)

	rep := NewValidator(projectDir, pluginRoot).Validate(file)
	assert.Equal(t, report.StatusHealthy, rep.Status())

	issue := issueByCode(t, rep, "reference-inconsistency")
	assert.Equal(t, "components.custom", issue.Path)
	assert.Equal(t, report.SeverityLow, issue.Severity)
	assert.Contains(t, issue.Message, "pricing-table")
}

func TestSuggestEnum(t *testing.T) {
	tests := []struct {
		value string
		valid []string
		want  string
	}{
		{"nextjs", []string{"next", "remix", "vite"}, "next"},
		{"Next.js", []string{"next", "remix", "vite"}, "next"},
		{"REMIX", []string{"next", "remix", "vite"}, "remix"},
		{"shad", []string{"shadcn", "radix", "custom"}, "shadcn"},
		{"angular", []string{"next", "remix", "vite"}, ""},
		{"", []string{"next"}, ""},
		{"!!", []string{"next"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestEnum(tt.value, tt.valid))
		})
	}
}
