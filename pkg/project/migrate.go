package project

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cjnuk/dskit/pkg/logger"
	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// FillFunc supplies a value for a required field that has no computable
// default during migration. field is the config path (e.g.
// "stack.ui_library"), options the accepted values (nil for free text).
// Tests drive migration with a canned FillFunc; the CLI wires an
// interactive prompt.
type FillFunc func(field string, options []string) (string, error)

// Migrator upgrades outdated configuration records to the current schema.
// Each schema step is a pure transform over the generic tree; user input
// only happens through the Fill callback.
type Migrator struct {
	Fill FillFunc
}

// NewMigrator creates a migrator with the given fill callback.
func NewMigrator(fill FillFunc) *Migrator {
	return &Migrator{Fill: fill}
}

// Migrate upgrades the record to the current schema and returns the
// resulting typed config. The caller is responsible for persisting it.
// Missing and malformed records cannot be migrated: missing requires init,
// malformed requires human action.
func (m *Migrator) Migrate(ctx context.Context, file *File) (*projecttypes.Config, error) {
	switch file.State {
	case StateMissing:
		return nil, &MissingConfigError{Dir: file.Path}
	case StateMalformed:
		return nil, file.ParseErr
	case StateValid:
		return file.Config, nil
	}

	raw := deepCopyMap(file.RawMap)
	version := file.Version

	for version < CurrentVersion {
		logger.G(ctx).WithField("from", version).WithField("to", version+1).Debug("applying schema migration step")
		step, ok := migrations[version]
		if !ok {
			return nil, errors.Errorf("no migration path from schema version %d", version)
		}
		var err error
		raw, err = step(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "migration from schema version %d failed", version)
		}
		version++
	}
	raw["version"] = CurrentVersion

	cfg, err := decodeConfig(raw)
	if err != nil {
		return nil, errors.Wrap(err, "migrated configuration did not decode")
	}

	if err := m.fillMissing(cfg); err != nil {
		return nil, err
	}

	cfg.Customizations = dedupe(cfg.Customizations)
	cfg.Components.Installed = dedupe(cfg.Components.Installed)
	cfg.Components.Custom = dedupe(cfg.Components.Custom)
	cfg.Version = CurrentVersion
	return cfg, nil
}

// migrations maps a schema version to the transform producing the next
// version. Transforms are pure; they never prompt.
var migrations = map[int]func(map[string]interface{}) (map[string]interface{}, error){
	1: migrateV1toV2,
	2: migrateV2toV3,
}

// migrateV1toV2 folds the flat framework/testing root fields into the
// nested stack block.
func migrateV1toV2(raw map[string]interface{}) (map[string]interface{}, error) {
	out := deepCopyMap(raw)
	stack, _ := out["stack"].(map[string]interface{})
	if stack == nil {
		stack = map[string]interface{}{}
	}
	if framework, ok := out["framework"]; ok {
		stack["framework"] = framework
		delete(out, "framework")
	}
	if testing, ok := out["testing"]; ok {
		stack["testing"] = testing
		delete(out, "testing")
	}
	if name, ok := out["name"]; ok {
		project, _ := out["project"].(map[string]interface{})
		if project == nil {
			project = map[string]interface{}{}
		}
		if _, exists := project["name"]; !exists {
			project["name"] = name
		}
		out["project"] = project
		delete(out, "name")
	}
	out["stack"] = stack
	out["version"] = 2
	return out, nil
}

// migrateV2toV3 splits the single stack.testing string into the nested
// unit/e2e pair. A value recognized as a unit runner becomes testing.unit;
// one recognized as an e2e runner becomes testing.e2e. The counterpart is
// left empty for the fill callback.
func migrateV2toV3(raw map[string]interface{}) (map[string]interface{}, error) {
	out := deepCopyMap(raw)
	stack, _ := out["stack"].(map[string]interface{})
	if stack == nil {
		stack = map[string]interface{}{}
		out["stack"] = stack
	}

	testing := map[string]interface{}{"unit": "", "e2e": ""}
	if single, ok := stack["testing"].(string); ok && single != "" {
		if matched := SuggestEnum(single, projecttypes.UnitRunners()); matched != "" {
			testing["unit"] = matched
		} else if matched := SuggestEnum(single, projecttypes.E2ERunners()); matched != "" {
			testing["e2e"] = matched
		}
	} else if m, ok := stack["testing"].(map[string]interface{}); ok {
		// Already nested; keep what is there.
		testing = m
	}
	stack["testing"] = testing
	out["version"] = 3
	return out, nil
}

// fillMissing prompts (via the callback) for every required field the
// transforms could not derive.
func (m *Migrator) fillMissing(cfg *projecttypes.Config) error {
	fill := m.Fill
	if fill == nil {
		fill = func(field string, options []string) (string, error) {
			return "", errors.Errorf("required field %s has no value and no fill callback is configured", field)
		}
	}

	ask := func(field string, current string, options []string, set func(string)) error {
		if current != "" {
			return nil
		}
		value, err := fill(field, options)
		if err != nil {
			return errors.Wrapf(err, "failed to fill %s", field)
		}
		set(value)
		return nil
	}

	steps := []struct {
		field   string
		current string
		options []string
		set     func(string)
	}{
		{"project.name", cfg.Project.Name, nil, func(v string) { cfg.Project.Name = v }},
		{"project.type", string(cfg.Project.Type), projecttypes.ProjectTypes(), func(v string) { cfg.Project.Type = projecttypes.ProjectType(v) }},
		{"stack.framework", string(cfg.Stack.Framework), projecttypes.Frameworks(), func(v string) { cfg.Stack.Framework = projecttypes.Framework(v) }},
		{"stack.ui_library", string(cfg.Stack.UILibrary), projecttypes.UILibraries(), func(v string) { cfg.Stack.UILibrary = projecttypes.UILibrary(v) }},
		{"stack.state_management", string(cfg.Stack.StateManagement), projecttypes.StateManagements(), func(v string) { cfg.Stack.StateManagement = projecttypes.StateManagement(v) }},
		{"stack.testing.unit", cfg.Stack.Testing.Unit, projecttypes.UnitRunners(), func(v string) { cfg.Stack.Testing.Unit = v }},
		{"stack.testing.e2e", cfg.Stack.Testing.E2E, projecttypes.E2ERunners(), func(v string) { cfg.Stack.Testing.E2E = v }},
	}
	for _, step := range steps {
		if err := ask(step.field, step.current, step.options, step.set); err != nil {
			return err
		}
	}
	return nil
}

// deepCopyMap copies a generic YAML tree so transforms never mutate the
// loaded file.
func deepCopyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
