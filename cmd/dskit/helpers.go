package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/cjnuk/dskit/pkg/agents"
	"github.com/cjnuk/dskit/pkg/knowledge"
	"github.com/cjnuk/dskit/pkg/logger"
	"github.com/cjnuk/dskit/pkg/project"
	"github.com/cjnuk/dskit/pkg/skills"
	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// pluginRoot resolves the installed plugin root. The root is always an
// explicit parameter from here on; nothing below the CLI reads config or
// environment for it.
func pluginRoot() (string, error) {
	if root := viper.GetString("plugin_root"); root != "" {
		return root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine home directory for default plugin root")
	}
	return filepath.Join(home, ".dskit", "plugin"), nil
}

func workingDir() (string, error) {
	wd, err := os.Getwd()
	return wd, errors.Wrap(err, "failed to determine working directory")
}

// buildRegistry wires discovery, the agent processor, and the knowledge
// resolver, and builds the immutable registry.
func buildRegistry(ctx context.Context) (*skills.Registry, *knowledge.Resolver, error) {
	root, err := pluginRoot()
	if err != nil {
		return nil, nil, err
	}
	wd, err := workingDir()
	if err != nil {
		return nil, nil, err
	}

	discovery, err := skills.NewDiscovery(skills.WithRoots(wd, root))
	if err != nil {
		return nil, nil, err
	}
	processor, err := agents.NewProcessor(agents.WithRoots(wd, root))
	if err != nil {
		return nil, nil, err
	}
	resolver := knowledge.NewResolver(wd, root)

	registry, err := skills.Build(ctx, discovery, processor,
		skills.WithAllowlist(viper.GetStringSlice("skills.allowed")),
		skills.WithFallback(viper.GetString("routing.fallback")),
		skills.WithFileResolver(resolver),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build skill registry")
	}
	return registry, resolver, nil
}

// loadProjectContext derives the predicate context from the project
// record. An unusable record degrades to an empty context: routing still
// works, conditional knowledge simply stays unloaded.
func loadProjectContext(ctx context.Context, features []string) projecttypes.Context {
	wd, err := workingDir()
	if err != nil {
		return projecttypes.Context{Features: features}
	}
	file, err := project.Load(wd)
	if err != nil || file.State != project.StateValid {
		logger.G(ctx).Debug("no valid project configuration, using empty context")
		return projecttypes.Context{Features: features}
	}
	return projecttypes.ContextFromConfig(file.Config, features...)
}
