package agents

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/cjnuk/dskit/pkg/logger"
)

// Processor loads agent definitions from configured directories. Earlier
// directories take precedence, so a project-local agent shadows the
// plugin-root agent of the same name.
type Processor struct {
	agentDirs []string
}

// Option configures a Processor.
type Option func(*Processor) error

// WithAgentDirs sets explicit agent directories, highest precedence first.
func WithAgentDirs(dirs ...string) Option {
	return func(p *Processor) error {
		if len(dirs) == 0 {
			return errors.New("at least one agent directory must be specified")
		}
		p.agentDirs = dirs
		return nil
	}
}

// WithRoots derives the agent directories from the project directory and
// the plugin root: `<project>/.dskit/agents` shadows `<root>/agents`.
func WithRoots(projectDir, pluginRoot string) Option {
	return func(p *Processor) error {
		if pluginRoot == "" {
			return errors.New("plugin root must not be empty")
		}
		p.agentDirs = []string{
			filepath.Join(projectDir, ".dskit", "agents"),
			filepath.Join(pluginRoot, "agents"),
		}
		return nil
	}
}

// NewProcessor creates an agent processor.
func NewProcessor(opts ...Option) (*Processor, error) {
	p := &Processor{}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if len(p.agentDirs) == 0 {
		return nil, errors.New("no agent directories configured")
	}
	return p, nil
}

// findAgentFile searches the configured directories for the named agent.
func (p *Processor) findAgentFile(name string) (string, error) {
	candidates := []string{name + ".md", name}
	for _, dir := range p.agentDirs {
		for _, candidate := range candidates {
			fullPath := filepath.Join(dir, candidate)
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				return fullPath, nil
			}
		}
	}
	return "", errors.Errorf("agent '%s' not found in directories: %v", name, p.agentDirs)
}

// LoadAgent loads a single agent definition by name.
func (p *Processor) LoadAgent(ctx context.Context, name string) (*Agent, error) {
	logger.G(ctx).WithField("agent", name).Debug("loading agent")

	path, err := p.findAgentFile(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read agent file '%s'", path)
	}

	metadata, instructions, err := parseFrontmatter(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse frontmatter in agent '%s'", path)
	}
	if metadata.Name == "" {
		metadata.Name = name
	}

	agent := &Agent{Metadata: metadata, Instructions: instructions, Path: path}
	if err := Validate(agent); err != nil {
		return nil, errors.Wrapf(err, "invalid agent '%s'", name)
	}
	return agent, nil
}

// ListAgents loads every agent from the configured directories. Agents in
// earlier directories shadow later ones of the same name; individually
// broken definitions are logged and skipped.
func (p *Processor) ListAgents(ctx context.Context) ([]*Agent, error) {
	var loaded []*Agent
	seen := make(map[string]bool)

	for _, dir := range p.agentDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).Debug("agent directory not found, skipping")
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".md")
			if seen[name] {
				continue
			}
			agent, err := p.LoadAgent(ctx, name)
			if err != nil {
				logger.G(ctx).WithField("agent", name).WithError(err).Warn("failed to load agent, skipping")
				continue
			}
			loaded = append(loaded, agent)
			seen[name] = true
		}
	}

	logger.G(ctx).WithField("count", len(loaded)).Debug("loaded agents")
	return loaded, nil
}

// Validate checks that an agent definition is complete: a name, at least
// one primary knowledge file, and well-formed conditions.
func Validate(agent *Agent) error {
	if agent.Metadata.Name == "" {
		return errors.New("agent name is required")
	}
	if len(agent.Metadata.PrimaryFiles) == 0 {
		return errors.New("agent must declare at least one primary knowledge file")
	}
	for _, path := range agent.Metadata.PrimaryFiles {
		if strings.TrimSpace(path) == "" {
			return errors.New("primary file path must not be empty")
		}
		if filepath.IsAbs(path) || strings.HasPrefix(filepath.ToSlash(path), "../") {
			return errors.Errorf("knowledge path %q must be relative to the plugin root", path)
		}
	}
	for _, cf := range agent.Metadata.ConditionalFiles {
		if strings.TrimSpace(cf.Path) == "" {
			return errors.Errorf("conditional file for %s has no path", cf.When)
		}
	}
	return nil
}

// parseFrontmatter extracts agent metadata and the instruction body from a
// markdown definition.
func parseFrontmatter(content string) (Metadata, string, error) {
	var metadata Metadata

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
		return metadata, content, errors.Wrap(err, "failed to convert markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return metadata, content, errors.New("missing frontmatter")
	}

	if name, ok := metaData["name"].(string); ok {
		metadata.Name = name
	}
	if description, ok := metaData["description"].(string); ok {
		metadata.Description = description
	}
	metadata.PrimaryFiles = stringList(metaData["primary_files"])

	conditionals, err := conditionalList(metaData["conditional_files"])
	if err != nil {
		return metadata, content, err
	}
	metadata.ConditionalFiles = conditionals

	return metadata, extractBody(content), nil
}

// stringList handles both YAML arrays and comma-separated strings.
func stringList(field interface{}) []string {
	switch v := field.(type) {
	case []interface{}:
		var result []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				result = append(result, strings.TrimSpace(s))
			}
		}
		return result
	case string:
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	default:
		return nil
	}
}

// conditionalList parses the conditional_files frontmatter entries, each a
// map with `when` and `path` keys.
func conditionalList(field interface{}) ([]ConditionalFile, error) {
	items, ok := field.([]interface{})
	if !ok {
		return nil, nil
	}

	var result []ConditionalFile
	for _, item := range items {
		when, path := conditionalEntry(item)
		if when == "" || path == "" {
			return nil, errors.Errorf("conditional file entry must have both 'when' and 'path', got %v", item)
		}
		pred, err := ParsePredicate(when)
		if err != nil {
			return nil, err
		}
		result = append(result, ConditionalFile{When: pred, Path: path})
	}
	return result, nil
}

// conditionalEntry pulls when/path out of a frontmatter map. goldmark-meta
// yields map[interface{}]interface{} keys, so both map shapes are handled.
func conditionalEntry(item interface{}) (when, path string) {
	get := func(m func(key string) interface{}) {
		if s, ok := m("when").(string); ok {
			when = s
		}
		if s, ok := m("path").(string); ok {
			path = s
		}
	}
	switch m := item.(type) {
	case map[string]interface{}:
		get(func(key string) interface{} { return m[key] })
	case map[interface{}]interface{}:
		get(func(key string) interface{} { return m[key] })
	}
	return when, path
}

// extractBody returns the markdown body after the YAML frontmatter block.
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
