// Package project defines the persisted project configuration record and
// the typed context the knowledge loader evaluates conditional predicates
// against. The configuration schema is versioned; CurrentSchemaVersion is
// the only shape the validator accepts without migration.
package project

// CurrentSchemaVersion is the schema version written by init and produced
// by migration. Version 1 used a flat framework/testing root, version 2
// folded the stack into a nested block but kept testing as a single string.
const CurrentSchemaVersion = 3

// ProjectType describes what kind of product the project is.
type ProjectType string

// Valid project types.
const (
	ProjectTypeApplication ProjectType = "application"
	ProjectTypeMarketing   ProjectType = "marketing"
	ProjectTypeHybrid      ProjectType = "hybrid"
)

// ProjectTypes lists the accepted project.type values in a stable order.
func ProjectTypes() []string {
	return []string{
		string(ProjectTypeApplication),
		string(ProjectTypeMarketing),
		string(ProjectTypeHybrid),
	}
}

// Framework is the application framework the project is built on.
type Framework string

// Valid frameworks.
const (
	FrameworkNext  Framework = "next"
	FrameworkRemix Framework = "remix"
	FrameworkVite  Framework = "vite"
)

// Frameworks lists the accepted stack.framework values in a stable order.
func Frameworks() []string {
	return []string{
		string(FrameworkNext),
		string(FrameworkRemix),
		string(FrameworkVite),
	}
}

// UILibrary is the component library the design system is built on.
type UILibrary string

// Valid UI libraries.
const (
	UILibraryShadcn UILibrary = "shadcn"
	UILibraryRadix  UILibrary = "radix"
	UILibraryCustom UILibrary = "custom"
)

// UILibraries lists the accepted stack.ui_library values in a stable order.
func UILibraries() []string {
	return []string{
		string(UILibraryShadcn),
		string(UILibraryRadix),
		string(UILibraryCustom),
	}
}

// StateManagement is the client state strategy.
type StateManagement string

// Valid state management choices.
const (
	StateZustand StateManagement = "zustand"
	StateRedux   StateManagement = "redux"
	StateJotai   StateManagement = "jotai"
	StateContext StateManagement = "context"
	StateNone    StateManagement = "none"
)

// StateManagements lists the accepted stack.state_management values.
func StateManagements() []string {
	return []string{
		string(StateZustand),
		string(StateRedux),
		string(StateJotai),
		string(StateContext),
		string(StateNone),
	}
}

// UnitRunners lists the accepted stack.testing.unit values.
func UnitRunners() []string { return []string{"vitest", "jest"} }

// E2ERunners lists the accepted stack.testing.e2e values.
func E2ERunners() []string { return []string{"playwright", "cypress", "none"} }

// Info holds the project identity block.
type Info struct {
	Name string      `yaml:"name" json:"name" mapstructure:"name" jsonschema:"required"`
	Type ProjectType `yaml:"type" json:"type" mapstructure:"type" jsonschema:"required,enum=application,enum=marketing,enum=hybrid"`
}

// Testing holds the nested test runner choices introduced in schema v3.
type Testing struct {
	Unit string `yaml:"unit" json:"unit" mapstructure:"unit" jsonschema:"required,enum=vitest,enum=jest"`
	E2E  string `yaml:"e2e" json:"e2e" mapstructure:"e2e" jsonschema:"required,enum=playwright,enum=cypress,enum=none"`
}

// Stack holds the technology choices the knowledge loader keys off.
type Stack struct {
	Framework       Framework       `yaml:"framework" json:"framework" mapstructure:"framework" jsonschema:"required,enum=next,enum=remix,enum=vite"`
	UILibrary       UILibrary       `yaml:"ui_library" json:"ui_library" mapstructure:"ui_library" jsonschema:"required,enum=shadcn,enum=radix,enum=custom"`
	StateManagement StateManagement `yaml:"state_management" json:"state_management" mapstructure:"state_management" jsonschema:"required,enum=zustand,enum=redux,enum=jotai,enum=context,enum=none"`
	Testing         Testing         `yaml:"testing" json:"testing" mapstructure:"testing" jsonschema:"required"`
}

// Components tracks which design-system components the project carries.
// Installed components come from the plugin catalog; custom components are
// project-authored and live under the project config directory.
type Components struct {
	Installed []string `yaml:"installed" json:"installed" mapstructure:"installed"`
	Custom    []string `yaml:"custom" json:"custom" mapstructure:"custom"`
}

// Config is the persisted per-project configuration record.
type Config struct {
	Version        int        `yaml:"version" json:"version" mapstructure:"version" jsonschema:"required"`
	Project        Info       `yaml:"project" json:"project" mapstructure:"project" jsonschema:"required"`
	Stack          Stack      `yaml:"stack" json:"stack" mapstructure:"stack" jsonschema:"required"`
	Customizations []string   `yaml:"customizations" json:"customizations" mapstructure:"customizations"`
	Components     Components `yaml:"components" json:"components" mapstructure:"components"`
}

// Context is the typed evaluation context for conditional knowledge
// predicates. It is derived from the validated config plus any per-request
// hints (requested features) supplied by the caller.
type Context struct {
	ProjectType ProjectType
	Framework   Framework
	UILibrary   UILibrary
	Features    []string
	Components  []string
}

// ContextFromConfig derives a predicate context from a validated config.
// features are request-scoped hints, e.g. "virtualization" when the user
// asked for a virtualized list.
func ContextFromConfig(cfg *Config, features ...string) Context {
	ctx := Context{Features: features}
	if cfg == nil {
		return ctx
	}
	ctx.ProjectType = cfg.Project.Type
	ctx.Framework = cfg.Stack.Framework
	ctx.UILibrary = cfg.Stack.UILibrary
	ctx.Components = append(ctx.Components, cfg.Components.Installed...)
	ctx.Components = append(ctx.Components, cfg.Components.Custom...)
	return ctx
}

// HasFeature reports whether a request-scoped feature hint is set.
func (c Context) HasFeature(name string) bool {
	for _, f := range c.Features {
		if f == name {
			return true
		}
	}
	return false
}

// HasComponent reports whether the project carries the named component.
func (c Context) HasComponent(name string) bool {
	for _, comp := range c.Components {
		if comp == name {
			return true
		}
	}
	return false
}
