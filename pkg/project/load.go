package project

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// CurrentVersion aliases the schema version the validator accepts.
const CurrentVersion = projecttypes.CurrentSchemaVersion

// Config file location, relative to the project directory.
const (
	ConfigDirName  = ".dskit"
	ConfigFileName = "config.yaml"
)

// State is the validation state of a configuration record.
type State string

// Configuration states.
const (
	StateMissing        State = "missing"
	StateMalformed      State = "malformed"
	StateOutdatedSchema State = "outdated-schema"
	StateValid          State = "valid"
)

// Path returns the config file path for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, ConfigDirName, ConfigFileName)
}

// File is a loaded configuration record. RawMap preserves the full parsed
// tree, including keys the typed struct does not know about, so repair can
// act on unknown keys without silently dropping them.
type File struct {
	Path     string
	Raw      []byte
	RawMap   map[string]interface{}
	Config   *projecttypes.Config
	State    State
	Version  int
	ParseErr *ParseError
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func (f *File) malformed(err error) {
	f.State = StateMalformed
	parseErr := &ParseError{Path: f.Path, Err: err}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		parseErr.Line, _ = strconv.Atoi(m[1])
	}
	f.ParseErr = parseErr
}

// Load reads and classifies the configuration for a project directory.
// A missing or malformed file is not an error at this level; the state
// machine records it and callers decide how fatal it is.
func Load(projectDir string) (*File, error) {
	file := &File{Path: Path(projectDir)}

	raw, err := os.ReadFile(file.Path)
	if os.IsNotExist(err) {
		file.State = StateMissing
		return file, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", file.Path)
	}
	file.Raw = raw

	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &rawMap); err != nil {
		file.malformed(err)
		return file, nil
	}
	if rawMap == nil {
		rawMap = map[string]interface{}{}
	}
	file.RawMap = rawMap
	file.Version = detectVersion(rawMap)

	if file.Version < CurrentVersion {
		file.State = StateOutdatedSchema
		return file, nil
	}

	cfg, err := decodeConfig(rawMap)
	if err != nil {
		file.malformed(err)
		return file, nil
	}
	file.Config = cfg
	file.State = StateValid
	return file, nil
}

// detectVersion returns the schema version: the explicit version field
// when present, otherwise inferred from the record's shape. Version 1 kept
// framework and testing at the root; version 2 nested them under stack but
// testing was a single string.
func detectVersion(rawMap map[string]interface{}) int {
	if v, ok := intValue(rawMap["version"]); ok {
		return v
	}

	stack, hasStack := rawMap["stack"].(map[string]interface{})
	if !hasStack {
		if _, hasFramework := rawMap["framework"]; hasFramework {
			return 1
		}
		if _, hasTesting := rawMap["testing"]; hasTesting {
			return 1
		}
		return CurrentVersion
	}

	if _, isString := stack["testing"].(string); isString {
		return 2
	}
	return CurrentVersion
}

func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// decodeConfig decodes the generic tree into the typed config. Weak
// typing keeps scalar mismatches (e.g. a numeric project name) out of the
// malformed state so they surface as field issues instead.
func decodeConfig(rawMap map[string]interface{}) (*projecttypes.Config, error) {
	var cfg projecttypes.Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(rawMap); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	return &cfg, nil
}

// knownTopLevelKeys are the keys the current schema defines.
var knownTopLevelKeys = map[string]bool{
	"version":        true,
	"project":        true,
	"stack":          true,
	"customizations": true,
	"components":     true,
}

// UnknownKeys returns top-level keys the schema does not define, sorted
// for stable reporting.
func (f *File) UnknownKeys() []string {
	var unknown []string
	for key := range f.RawMap {
		if !knownTopLevelKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
