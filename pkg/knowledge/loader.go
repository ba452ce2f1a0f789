package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/cjnuk/dskit/pkg/agents"
	"github.com/cjnuk/dskit/pkg/logger"
	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// FileNotFoundError reports a required knowledge file that resolved under
// no layer. Missing primary files are fatal; the agent cannot function
// without its required knowledge.
type FileNotFoundError struct {
	Path     string
	Agent    string
	Searched []string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("required knowledge file '%s' for agent '%s' not found (searched %s)",
		e.Path, e.Agent, strings.Join(e.Searched, ", "))
}

// Document is one loaded knowledge file.
type Document struct {
	LogicalPath string `json:"path"`
	SourcePath  string `json:"source"`
	Level       Level  `json:"level"`
	Content     string `json:"content"`
}

// Loader reads the knowledge files an agent manifest names.
type Loader struct {
	resolver *Resolver
}

// NewLoader creates a loader over the given resolver.
func NewLoader(resolver *Resolver) *Loader {
	return &Loader{resolver: resolver}
}

// Load materializes a manifest: primary files unconditionally, conditional
// files when their predicate matches the project context. Output order
// follows the manifest, so loading twice with the same context yields
// identical results. A missing primary file fails the whole load; a
// missing conditional file is logged and skipped.
func (l *Loader) Load(ctx context.Context, manifest *agents.Manifest, skillDir string, pctx projecttypes.Context) ([]Document, error) {
	var docs []Document

	for _, path := range manifest.PrimaryFiles {
		loaded, err := l.loadPath(ctx, manifest.Agent, skillDir, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}

	for _, cf := range manifest.ConditionalFiles {
		if !cf.When.Matches(pctx) {
			logger.G(ctx).WithField("path", cf.Path).WithField("when", cf.When.String()).
				Debug("conditional knowledge file skipped, predicate does not match")
			continue
		}
		fullPath, level, ok := l.resolver.Resolve(skillDir, cf.Path)
		if !ok {
			logger.G(ctx).WithField("path", cf.Path).WithField("agent", manifest.Agent).
				Warn("conditional knowledge file missing, skipping")
			continue
		}
		doc, err := readDocument(cf.Path, fullPath, level)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// loadPath resolves one primary manifest entry, expanding glob patterns.
func (l *Loader) loadPath(ctx context.Context, agent, skillDir, path string) ([]Document, error) {
	if strings.ContainsAny(path, "*?[{") {
		matches, err := l.resolver.Expand(skillDir, path)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, &FileNotFoundError{Path: path, Agent: agent, Searched: l.resolver.SearchedDirs(skillDir)}
		}
		var docs []Document
		for _, m := range matches {
			doc, err := readDocument(m.LogicalPath, m.FullPath, m.Level)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
		return docs, nil
	}

	fullPath, level, ok := l.resolver.Resolve(skillDir, path)
	if !ok {
		return nil, &FileNotFoundError{Path: path, Agent: agent, Searched: l.resolver.SearchedDirs(skillDir)}
	}
	logger.G(ctx).WithField("path", path).WithField("level", string(level)).Debug("resolved knowledge file")
	doc, err := readDocument(path, fullPath, level)
	if err != nil {
		return nil, err
	}
	return []Document{doc}, nil
}

func readDocument(logicalPath, fullPath string, level Level) (Document, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return Document{}, errors.Wrapf(err, "failed to read knowledge file '%s'", fullPath)
	}
	return Document{
		LogicalPath: logicalPath,
		SourcePath:  fullPath,
		Level:       level,
		Content:     string(content),
	}, nil
}
