package skills

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/cjnuk/dskit/pkg/logger"
)

const skillFileName = "SKILL.md"

// Discovery finds skill definitions in configured directories. Earlier
// directories take precedence: a project-local skill shadows a plugin-root
// skill of the same name.
type Discovery struct {
	skillDirs []string
}

// Option configures a Discovery.
type Option func(*Discovery) error

// WithSkillDirs sets explicit skill directories, highest precedence first.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		if len(dirs) == 0 {
			return errors.New("at least one skill directory must be specified")
		}
		d.skillDirs = dirs
		return nil
	}
}

// WithRoots derives skill directories from the project directory and the
// plugin root: `<project>/.dskit/skills` shadows `<root>/skills`.
func WithRoots(projectDir, pluginRoot string) Option {
	return func(d *Discovery) error {
		if pluginRoot == "" {
			return errors.New("plugin root must not be empty")
		}
		d.skillDirs = []string{
			filepath.Join(projectDir, ".dskit", "skills"),
			filepath.Join(pluginRoot, "skills"),
		}
		return nil
	}
}

// NewDiscovery creates a skill discovery instance.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if len(d.skillDirs) == 0 {
		return nil, errors.New("no skill directories configured")
	}
	return d, nil
}

// DiscoverSkills returns all skills in declaration order: directory
// precedence first, then lexical order within a directory. The first
// occurrence of a name wins; shadowed duplicates are dropped.
func (d *Discovery) DiscoverSkills(ctx context.Context) ([]*Skill, error) {
	var ordered []*Skill
	seen := make(map[string]bool)

	for _, dir := range d.skillDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).Debug("skill directory not found, skipping")
			continue
		}

		for _, entry := range entries {
			entryPath := filepath.Join(dir, entry.Name())
			info, err := os.Stat(entryPath)
			if err != nil || !info.IsDir() {
				continue
			}

			skill, err := loadSkill(filepath.Join(entryPath, skillFileName))
			if err != nil {
				logger.G(ctx).WithField("dir", entryPath).WithError(err).Debug("skipping skill directory")
				continue
			}

			if seen[skill.Name] {
				continue
			}
			skill.Directory = entryPath
			ordered = append(ordered, skill)
			seen[skill.Name] = true
		}
	}

	return ordered, nil
}

// loadSkill parses a single SKILL.md file.
func loadSkill(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	agent, _ := metaData["agent"].(string)

	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}
	if agent == "" {
		return nil, errors.New("skill agent is required in frontmatter")
	}

	skill := &Skill{
		Name:        name,
		Description: description,
		Agent:       agent,
		Triggers:    triggerList(metaData["triggers"]),
		Content:     extractBody(string(content)),
	}

	args, err := argumentList(metaData["arguments"])
	if err != nil {
		return nil, err
	}
	skill.Arguments = args

	return skill, nil
}

func triggerList(field interface{}) []string {
	items, ok := field.([]interface{})
	if !ok {
		return nil
	}
	var result []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			result = append(result, strings.TrimSpace(s))
		}
	}
	return result
}

func argumentList(field interface{}) ([]Argument, error) {
	items, ok := field.([]interface{})
	if !ok {
		return nil, nil
	}
	var result []Argument
	for _, item := range items {
		arg, ok := argumentEntry(item)
		if !ok || arg.Name == "" {
			return nil, errors.Errorf("argument entry must have a 'name', got %v", item)
		}
		result = append(result, arg)
	}
	return result, nil
}

// argumentEntry handles both map key shapes goldmark-meta may yield.
func argumentEntry(item interface{}) (Argument, bool) {
	var arg Argument
	get := func(m func(key string) interface{}) {
		if s, ok := m("name").(string); ok {
			arg.Name = s
		}
		if s, ok := m("description").(string); ok {
			arg.Description = s
		}
		if b, ok := m("required").(bool); ok {
			arg.Required = b
		}
	}
	switch m := item.(type) {
	case map[string]interface{}:
		get(func(key string) interface{} { return m[key] })
	case map[interface{}]interface{}:
		get(func(key string) interface{} { return m[key] })
	default:
		return arg, false
	}
	return arg, true
}

// extractBody removes the YAML frontmatter block and returns the body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return content
	}
	return strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
}

// FilterByAllowlist keeps skills whose names match any of the glob
// patterns. An empty pattern list keeps everything; patterns that fail to
// compile are ignored with a warning.
func FilterByAllowlist(ctx context.Context, all []*Skill, patterns []string) []*Skill {
	if len(patterns) == 0 {
		return all
	}

	var globs []glob.Glob
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			logger.G(ctx).WithField("pattern", pattern).WithError(err).Warn("invalid skill allowlist pattern, ignoring")
			continue
		}
		globs = append(globs, g)
	}

	var filtered []*Skill
	for _, skill := range all {
		for _, g := range globs {
			if g.Match(skill.Name) {
				filtered = append(filtered, skill)
				break
			}
		}
	}
	return filtered
}
