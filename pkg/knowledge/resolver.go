// Package knowledge materializes the text content an agent needs. File
// paths are logical, resolved against three layers in precedence order:
// project-local overrides, the skill's own directory, then the plugin
// root. The most specific hit wins and later layers are not consulted for
// that document.
package knowledge

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Level identifies which layer a document was resolved from.
type Level string

// Resolution layers, most specific first.
const (
	LevelProject Level = "project"
	LevelSkill   Level = "skill"
	LevelPlugin  Level = "plugin"
)

// Resolver locates knowledge files. The plugin root is an explicit
// parameter; nothing is read from the environment.
type Resolver struct {
	projectDir string
	pluginRoot string
}

// NewResolver creates a resolver. projectDir is the working directory the
// project-local overrides hang off; pluginRoot is the installed plugin
// root.
func NewResolver(projectDir, pluginRoot string) *Resolver {
	return &Resolver{projectDir: projectDir, pluginRoot: pluginRoot}
}

type layer struct {
	level Level
	dir   string
}

// layers returns the search layers for a skill, most specific first. The
// skill layer is skipped when no skill directory applies.
func (r *Resolver) layers(skillDir string) []layer {
	layers := []layer{{LevelProject, filepath.Join(r.projectDir, ".dskit", "knowledge")}}
	if skillDir != "" {
		layers = append(layers, layer{LevelSkill, skillDir})
	}
	return append(layers, layer{LevelPlugin, filepath.Join(r.pluginRoot, "knowledge")})
}

// Resolve maps a logical path to the concrete file that wins under the
// precedence rule.
func (r *Resolver) Resolve(skillDir, logicalPath string) (fullPath string, level Level, ok bool) {
	for _, l := range r.layers(skillDir) {
		candidate := filepath.Join(l.dir, filepath.FromSlash(logicalPath))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, l.level, true
		}
	}
	return "", "", false
}

// Exists reports whether the logical path resolves under any layer. It
// satisfies the registry's FileResolver.
func (r *Resolver) Exists(skillDir, logicalPath string) bool {
	_, _, ok := r.Resolve(skillDir, logicalPath)
	return ok
}

// Match is one logical document produced by glob expansion.
type Match struct {
	LogicalPath string
	FullPath    string
	Level       Level
}

// Expand evaluates a doublestar pattern against every layer and returns
// one match per logical path, the most specific layer winning. Matches are
// sorted by logical path for deterministic output.
func (r *Resolver) Expand(skillDir, pattern string) ([]Match, error) {
	seen := make(map[string]bool)
	var matches []Match

	for _, l := range r.layers(skillDir) {
		if _, err := os.Stat(l.dir); err != nil {
			continue
		}
		found, err := doublestar.Glob(os.DirFS(l.dir), pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid knowledge pattern %q", pattern)
		}
		for _, logical := range found {
			if seen[logical] {
				continue
			}
			full := filepath.Join(l.dir, filepath.FromSlash(logical))
			if info, err := os.Stat(full); err != nil || info.IsDir() {
				continue
			}
			seen[logical] = true
			matches = append(matches, Match{LogicalPath: logical, FullPath: full, Level: l.level})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].LogicalPath < matches[j].LogicalPath })
	return matches, nil
}

// SearchedDirs lists the directories consulted for a skill, for error
// reporting.
func (r *Resolver) SearchedDirs(skillDir string) []string {
	var dirs []string
	for _, l := range r.layers(skillDir) {
		dirs = append(dirs, l.dir)
	}
	return dirs
}
