package project

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cjnuk/dskit/pkg/logger"
	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// RepairOptions controls which fixes the repair pass is allowed to apply.
// Confirm gates every non-safe fix; AutoApprove answers yes to all of
// them. The safe subset (list dedupe) never needs confirmation.
type RepairOptions struct {
	AutoApprove bool
	Confirm     func(question string) bool
}

func (o RepairOptions) confirm(question string) bool {
	if o.AutoApprove {
		return true
	}
	if o.Confirm == nil {
		return false
	}
	return o.Confirm(question)
}

// RepairResult describes what a repair pass did and would write.
type RepairResult struct {
	Applied []string // human-readable descriptions of applied fixes
	Skipped []string // proposed fixes the user declined
	Diff    string   // unified diff of the pending change, empty if none
	Changed bool
	NewRaw  []byte
}

// Repair computes and applies fixes to a valid-state configuration.
// Missing, malformed, and outdated records abort with their respective
// errors; repair never guesses values and never touches an unparseable
// file. The returned result holds the pending bytes; nothing is written
// until WriteRepaired is called.
func (v *Validator) Repair(ctx context.Context, file *File, opts RepairOptions) (*RepairResult, error) {
	switch file.State {
	case StateMissing:
		return nil, &MissingConfigError{Dir: filepath.Dir(file.Path)}
	case StateMalformed:
		return nil, file.ParseErr
	case StateOutdatedSchema:
		return nil, &SchemaMismatchError{Path: file.Path, Version: file.Version}
	}

	raw := deepCopyMap(file.RawMap)
	result := &RepairResult{}

	// Safe subset: deduplicate list-valued fields. Idempotent, applied
	// without confirmation.
	for _, path := range [][]string{
		{"customizations"},
		{"components", "installed"},
		{"components", "custom"},
	} {
		if removed := dedupeAt(raw, path); removed > 0 {
			result.Applied = append(result.Applied,
				fmt.Sprintf("removed %d duplicate entries from %s", removed, strings.Join(path, ".")))
		}
	}

	// Invalid enum values with a close valid candidate, gated.
	for _, field := range enumFields() {
		current, ok := stringAt(raw, field.path)
		if !ok || current == "" || contains(field.valid, current) {
			continue
		}
		suggestion := SuggestEnum(current, field.valid)
		if suggestion == "" {
			continue
		}
		path := strings.Join(field.path, ".")
		if opts.confirm(fmt.Sprintf("replace %s %q with %q?", path, current, suggestion)) {
			setAt(raw, field.path, suggestion)
			result.Applied = append(result.Applied, fmt.Sprintf("corrected %s: %q -> %q", path, current, suggestion))
		} else {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: %q", path, current))
		}
	}

	// Unknown top-level keys, gated: reported keys are only removed with
	// explicit confirmation, never silently dropped.
	for _, key := range file.UnknownKeys() {
		if opts.confirm(fmt.Sprintf("remove unknown top-level key '%s'?", key)) {
			delete(raw, key)
			result.Applied = append(result.Applied, fmt.Sprintf("removed unknown key '%s'", key))
		} else {
			result.Skipped = append(result.Skipped, fmt.Sprintf("unknown key '%s'", key))
		}
	}

	// Dangling component references, gated. Advisory findings, removal is
	// the user's call.
	if file.Config != nil {
		for _, ref := range v.CheckReferences(file.Config) {
			path := strings.Split(ref.Field, ".")
			if opts.confirm(fmt.Sprintf("remove '%s' from %s (no file at %s)?", ref.Name, ref.Field, ref.WantPath)) {
				removeFromList(raw, path, ref.Name)
				result.Applied = append(result.Applied, fmt.Sprintf("removed dangling reference '%s' from %s", ref.Name, ref.Field))
			} else {
				result.Skipped = append(result.Skipped, fmt.Sprintf("%s: '%s'", ref.Field, ref.Name))
			}
		}
	}

	if len(result.Applied) == 0 {
		// Nothing was fixed; never rewrite the file for formatting alone.
		logger.G(ctx).Debug("repair produced no changes")
		return result, nil
	}

	newRaw, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render repaired configuration")
	}
	result.NewRaw = newRaw
	result.Changed = true
	result.Diff = udiff.Unified(file.Path, file.Path+" (repaired)", string(file.Raw), string(newRaw))
	return result, nil
}

// WriteRepaired persists a repair result. The file system is treated as a
// single-writer resource: if the file on disk no longer matches the bytes
// that were parsed, the write is refused unless explicitly confirmed.
func WriteRepaired(file *File, result *RepairResult, confirm func(question string) bool) error {
	if result == nil || !result.Changed {
		return nil
	}

	current, err := os.ReadFile(file.Path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to re-read %s", file.Path)
	}
	if err == nil && !bytes.Equal(current, file.Raw) {
		if confirm == nil || !confirm(fmt.Sprintf("%s changed on disk since it was read; overwrite anyway?", file.Path)) {
			return errors.Errorf("%s changed on disk since it was read, aborting write", file.Path)
		}
	}

	return errors.Wrapf(os.WriteFile(file.Path, result.NewRaw, 0o644), "failed to write %s", file.Path)
}

// Save marshals a typed config and writes it to the project's config
// path, creating the config directory if needed. Used by init and
// migrate, which produce a whole new record rather than editing one.
func Save(projectDir string, cfg *projecttypes.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to render configuration")
	}
	dir := filepath.Join(projectDir, ConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	path := Path(projectDir)
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "failed to write %s", path)
}

type enumField struct {
	path  []string
	valid []string
}

func enumFields() []enumField {
	return []enumField{
		{[]string{"project", "type"}, projecttypes.ProjectTypes()},
		{[]string{"stack", "framework"}, projecttypes.Frameworks()},
		{[]string{"stack", "ui_library"}, projecttypes.UILibraries()},
		{[]string{"stack", "state_management"}, projecttypes.StateManagements()},
		{[]string{"stack", "testing", "unit"}, projecttypes.UnitRunners()},
		{[]string{"stack", "testing", "e2e"}, projecttypes.E2ERunners()},
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// mapAt walks nested maps to the parent of the final path element.
func mapAt(raw map[string]interface{}, path []string) (map[string]interface{}, string, bool) {
	current := raw
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, "", false
		}
		current = next
	}
	return current, path[len(path)-1], true
}

func stringAt(raw map[string]interface{}, path []string) (string, bool) {
	parent, key, ok := mapAt(raw, path)
	if !ok {
		return "", false
	}
	s, ok := parent[key].(string)
	return s, ok
}

func setAt(raw map[string]interface{}, path []string, value interface{}) {
	if parent, key, ok := mapAt(raw, path); ok {
		parent[key] = value
	}
}

// dedupeAt removes repeated entries from a list-valued field, returning
// how many were dropped.
func dedupeAt(raw map[string]interface{}, path []string) int {
	parent, key, ok := mapAt(raw, path)
	if !ok {
		return 0
	}
	list, ok := parent[key].([]interface{})
	if !ok {
		return 0
	}
	seen := make(map[string]bool, len(list))
	var out []interface{}
	removed := 0
	for _, item := range list {
		s, isString := item.(string)
		if isString && seen[s] {
			removed++
			continue
		}
		if isString {
			seen[s] = true
		}
		out = append(out, item)
	}
	if removed > 0 {
		parent[key] = out
	}
	return removed
}

func removeFromList(raw map[string]interface{}, path []string, value string) {
	parent, key, ok := mapAt(raw, path)
	if !ok {
		return
	}
	list, ok := parent[key].([]interface{})
	if !ok {
		return
	}
	var out []interface{}
	for _, item := range list {
		if s, isString := item.(string); isString && s == value {
			continue
		}
		out = append(out, item)
	}
	parent[key] = out
}
