package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	projecttypes "github.com/cjnuk/dskit/pkg/types/project"

	"github.com/cjnuk/dskit/pkg/report"
)

// Validator runs the diagnostic pass over a loaded configuration. Roots
// are needed for cross-reference checks: installed components ship with
// the plugin, custom components live under the project config directory.
type Validator struct {
	projectDir string
	pluginRoot string
}

// NewValidator creates a validator for the given roots.
func NewValidator(projectDir, pluginRoot string) *Validator {
	return &Validator{projectDir: projectDir, pluginRoot: pluginRoot}
}

// Validate runs the full pass and accumulates every finding into one
// report. Structural states (missing, malformed, outdated schema) short
// circuit: there is nothing sound to validate field-by-field.
func (v *Validator) Validate(file *File) *report.Report {
	rep := report.New("audit")

	switch file.State {
	case StateMissing:
		rep.Add(report.Issue{
			Severity:   report.SeverityCritical,
			Code:       "config-missing",
			Message:    fmt.Sprintf("no configuration found at %s", file.Path),
			Suggestion: "run 'dskit init' to create one",
		})
		return rep
	case StateMalformed:
		issue := report.Issue{
			Severity:   report.SeverityCritical,
			Code:       "config-malformed",
			Message:    file.ParseErr.Error(),
			Suggestion: "fix the file by hand or reset it with 'dskit init --force'",
		}
		rep.Add(issue)
		return rep
	case StateOutdatedSchema:
		rep.Add(report.Issue{
			Severity:   report.SeverityHigh,
			Code:       "schema-outdated",
			Path:       "version",
			Message:    fmt.Sprintf("configuration uses schema version %d, current is %d", file.Version, CurrentVersion),
			Suggestion: "run 'dskit migrate' to upgrade",
		})
		return rep
	}

	cfg := file.Config

	v.checkRequired(rep, "project.name", cfg.Project.Name != "")
	v.checkEnum(rep, "project.type", string(cfg.Project.Type), projecttypes.ProjectTypes())
	v.checkEnum(rep, "stack.framework", string(cfg.Stack.Framework), projecttypes.Frameworks())
	v.checkEnum(rep, "stack.ui_library", string(cfg.Stack.UILibrary), projecttypes.UILibraries())
	v.checkEnum(rep, "stack.state_management", string(cfg.Stack.StateManagement), projecttypes.StateManagements())
	v.checkEnum(rep, "stack.testing.unit", cfg.Stack.Testing.Unit, projecttypes.UnitRunners())
	v.checkEnum(rep, "stack.testing.e2e", cfg.Stack.Testing.E2E, projecttypes.E2ERunners())

	for _, key := range file.UnknownKeys() {
		rep.Add(report.Issue{
			Severity:   report.SeverityMedium,
			Code:       "unknown-key",
			Path:       key,
			Message:    fmt.Sprintf("unknown top-level key '%s'", key),
			Suggestion: "remove it with 'dskit repair' (requires confirmation)",
		})
	}

	v.checkDuplicates(rep, "customizations", cfg.Customizations)
	v.checkDuplicates(rep, "components.installed", cfg.Components.Installed)
	v.checkDuplicates(rep, "components.custom", cfg.Components.Custom)

	for _, ref := range v.CheckReferences(cfg) {
		rep.Add(report.Issue{
			Severity:   report.SeverityLow,
			Code:       "reference-inconsistency",
			Path:       ref.Field,
			Message:    ref.Error(),
			Suggestion: fmt.Sprintf("remove '%s' with 'dskit repair' (requires confirmation)", ref.Name),
		})
	}

	return rep
}

// checkRequired records a HIGH issue when a required field is absent.
func (v *Validator) checkRequired(rep *report.Report, path string, present bool) {
	if present {
		return
	}
	rep.Add(report.Issue{
		Severity: report.SeverityHigh,
		Code:     "missing-field",
		Path:     path,
		Message:  "required field is missing",
	})
}

// checkEnum records issues for absent or invalid enum fields. Invalid
// values carry a suggestion when a close valid value exists.
func (v *Validator) checkEnum(rep *report.Report, path, value string, valid []string) {
	if value == "" {
		v.checkRequired(rep, path, false)
		return
	}
	for _, candidate := range valid {
		if value == candidate {
			return
		}
	}
	issue := report.Issue{
		Severity: report.SeverityHigh,
		Code:     "invalid-enum",
		Path:     path,
		Message:  fmt.Sprintf("invalid enum value %q, expected one of [%s]", value, strings.Join(valid, ", ")),
	}
	if suggestion := SuggestEnum(value, valid); suggestion != "" {
		issue.Suggestion = fmt.Sprintf("did you mean %q?", suggestion)
	}
	rep.Add(issue)
}

// checkDuplicates records a LOW auto-fixable issue for repeated entries.
func (v *Validator) checkDuplicates(rep *report.Report, path string, values []string) {
	seen := make(map[string]bool)
	for _, value := range values {
		if seen[value] {
			rep.Add(report.Issue{
				Severity:    report.SeverityLow,
				Code:        "duplicate-entry",
				Path:        path,
				Message:     fmt.Sprintf("duplicate entry '%s'", value),
				AutoFixable: true,
			})
			continue
		}
		seen[value] = true
	}
}

// CheckReferences verifies that every component named in the config has a
// corresponding file: installed components under the plugin catalog,
// custom components under the project config directory.
func (v *Validator) CheckReferences(cfg *projecttypes.Config) []ReferenceInconsistencyError {
	var refs []ReferenceInconsistencyError
	for _, name := range dedupe(cfg.Components.Installed) {
		want := filepath.Join(v.pluginRoot, "components", name+".md")
		if !fileExists(want) {
			refs = append(refs, ReferenceInconsistencyError{Field: "components.installed", Name: name, WantPath: want})
		}
	}
	for _, name := range dedupe(cfg.Components.Custom) {
		want := filepath.Join(v.projectDir, ConfigDirName, "components", name+".md")
		if !fileExists(want) {
			refs = append(refs, ReferenceInconsistencyError{Field: "components.custom", Name: name, WantPath: want})
		}
	}
	return refs
}

// SuggestEnum proposes the closest valid enum value for an invalid one,
// or "" when nothing is close. "nextjs" suggests "next", "Remix" suggests
// "remix".
func SuggestEnum(value string, valid []string) string {
	normalized := normalizeEnum(value)
	if normalized == "" {
		return ""
	}
	for _, candidate := range valid {
		if normalizeEnum(candidate) == normalized {
			return candidate
		}
	}
	for _, candidate := range valid {
		nc := normalizeEnum(candidate)
		if nc != "" && (strings.HasPrefix(normalized, nc) || strings.HasPrefix(nc, normalized)) {
			return candidate
		}
	}
	return ""
}

func normalizeEnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
