// Package project loads, validates, migrates, and repairs the persisted
// per-project configuration record at .dskit/config.yaml. Validation is a
// state machine over the record: Missing, Malformed, OutdatedSchema, and
// Valid. Structural failures abort; field and reference issues are
// accumulated into a diagnostic report.
package project

import (
	"fmt"
	"strings"
)

// ParseError reports a structurally invalid configuration file. It is
// fatal for the operation that hit it and is never auto-repaired.
type ParseError struct {
	Path string
	Line int // 0 when the location could not be determined
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %s at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaMismatchError reports a record that parses but predates the
// current schema. Recoverable via guided migration.
type SchemaMismatchError struct {
	Path    string
	Version int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s uses schema version %d, current is %d; run migration", e.Path, e.Version, CurrentVersion)
}

// ReferenceInconsistencyError reports a cross-reference between the config
// and the file system that does not hold, e.g. an installed component with
// no component file. Advisory only.
type ReferenceInconsistencyError struct {
	Field    string // config path, e.g. "components.installed"
	Name     string // the dangling entry
	WantPath string // the file that was expected to exist
}

func (e *ReferenceInconsistencyError) Error() string {
	return fmt.Sprintf("%s lists '%s' but %s does not exist", e.Field, e.Name, e.WantPath)
}

// MissingConfigError reports an absent configuration. Operations that need
// a config abort with this rather than guessing values.
type MissingConfigError struct {
	Dir string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("no configuration found under %s; run 'dskit init' first", strings.TrimSuffix(e.Dir, "/"))
}
