// Package agents loads agent definitions from markdown files with YAML
// frontmatter. An agent names the knowledge files it needs: primary files
// are always loaded, conditional files carry a typed predicate evaluated
// against the project context.
package agents

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	projecttypes "github.com/cjnuk/dskit/pkg/types/project"
)

// PredicateKind is the closed set of condition keys a conditional
// knowledge file may use.
type PredicateKind string

// Supported predicate kinds.
const (
	PredicateProjectType PredicateKind = "project-type"
	PredicateFramework   PredicateKind = "framework"
	PredicateUILibrary   PredicateKind = "ui-library"
	PredicateFeature     PredicateKind = "feature"
	PredicateComponent   PredicateKind = "component"
)

// Predicate is a parsed `when` condition of the form `kind:value`.
type Predicate struct {
	Kind  PredicateKind
	Value string
}

// ParsePredicate parses a `kind:value` condition string. Unknown kinds are
// an error so misspelled conditions fail at registry build time instead of
// silently never matching.
func ParsePredicate(s string) (Predicate, error) {
	kind, value, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || value == "" {
		return Predicate{}, errors.Errorf("invalid predicate %q, expected kind:value", s)
	}
	p := Predicate{Kind: PredicateKind(strings.TrimSpace(kind)), Value: strings.TrimSpace(value)}
	switch p.Kind {
	case PredicateProjectType, PredicateFramework, PredicateUILibrary, PredicateFeature, PredicateComponent:
		return p, nil
	default:
		return Predicate{}, errors.Errorf("unknown predicate kind %q in %q", kind, s)
	}
}

// Matches evaluates the predicate against a project context.
func (p Predicate) Matches(ctx projecttypes.Context) bool {
	switch p.Kind {
	case PredicateProjectType:
		return string(ctx.ProjectType) == p.Value
	case PredicateFramework:
		return string(ctx.Framework) == p.Value
	case PredicateUILibrary:
		return string(ctx.UILibrary) == p.Value
	case PredicateFeature:
		return ctx.HasFeature(p.Value)
	case PredicateComponent:
		return ctx.HasComponent(p.Value)
	}
	return false
}

// String returns the canonical `kind:value` form.
func (p Predicate) String() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.Value)
}

// ConditionalFile pairs a knowledge file path with the predicate that
// gates loading it.
type ConditionalFile struct {
	When Predicate
	Path string
}

// Metadata is the YAML frontmatter of an agent definition file.
type Metadata struct {
	Name             string
	Description      string
	PrimaryFiles     []string
	ConditionalFiles []ConditionalFile
}

// Agent is a loaded agent definition. Instructions is the markdown body
// after the frontmatter; the external assistant runtime consumes it.
type Agent struct {
	Metadata     Metadata
	Instructions string
	Path         string
}

// Manifest is what the registry hands to the knowledge loader: the agent
// name plus its ordered knowledge file lists.
type Manifest struct {
	Agent            string
	PrimaryFiles     []string
	ConditionalFiles []ConditionalFile
}

// Manifest derives the load manifest for the agent.
func (a *Agent) Manifest() *Manifest {
	return &Manifest{
		Agent:            a.Metadata.Name,
		PrimaryFiles:     a.Metadata.PrimaryFiles,
		ConditionalFiles: a.Metadata.ConditionalFiles,
	}
}
