package skills

import (
	"context"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/cjnuk/dskit/pkg/agents"
	"github.com/cjnuk/dskit/pkg/logger"
	"github.com/cjnuk/dskit/pkg/triggers"
)

// FileResolver locates a knowledge file for a skill, reporting whether it
// exists under any of the configured roots. Implemented by
// knowledge.Resolver.
type FileResolver interface {
	Exists(skillDir, path string) bool
}

// Collision is a trigger phrase registered by more than one skill. The
// matcher never routes a colliding phrase; collisions are surfaced at
// build time instead.
type Collision struct {
	Phrase string
	Skills []string
}

// ResolvedSkill is the result of a registry lookup: the skill, its agent,
// and the agent's knowledge manifest.
type ResolvedSkill struct {
	Skill    *Skill
	Agent    *agents.Agent
	Manifest *agents.Manifest
}

// Registry is the immutable skill table built once at startup.
type Registry struct {
	ordered    []*Skill
	byName     map[string]*Skill
	agents     map[string]*agents.Agent
	collisions []Collision
	fallback   string
	matcher    *triggers.Matcher
}

// BuildOption configures registry construction.
type BuildOption func(*buildConfig)

type buildConfig struct {
	allowlist []string
	fallback  string
	resolver  FileResolver
}

// WithAllowlist restricts the registry to skills whose names match any of
// the glob patterns.
func WithAllowlist(patterns []string) BuildOption {
	return func(c *buildConfig) { c.allowlist = patterns }
}

// WithFallback sets the general-purpose skill used when no trigger
// matches.
func WithFallback(name string) BuildOption {
	return func(c *buildConfig) { c.fallback = name }
}

// WithFileResolver enables primary-file existence validation during build.
func WithFileResolver(r FileResolver) BuildOption {
	return func(c *buildConfig) { c.resolver = r }
}

// Build discovers skills, loads their agents, and validates the whole
// table. Validation failures are accumulated so one broken skill does not
// hide the rest; any hard failure fails the build.
func Build(ctx context.Context, discovery *Discovery, processor *agents.Processor, opts ...BuildOption) (*Registry, error) {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	discovered, err := discovery.DiscoverSkills(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "skill discovery failed")
	}
	discovered = FilterByAllowlist(ctx, discovered, cfg.allowlist)

	reg := &Registry{
		ordered:  discovered,
		byName:   make(map[string]*Skill, len(discovered)),
		agents:   make(map[string]*agents.Agent),
		fallback: cfg.fallback,
	}

	var result *multierror.Error
	for _, skill := range discovered {
		reg.byName[skill.Name] = skill

		if _, loaded := reg.agents[skill.Agent]; !loaded {
			agent, err := processor.LoadAgent(ctx, skill.Agent)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "skill '%s' references agent '%s'", skill.Name, skill.Agent))
				continue
			}
			reg.agents[skill.Agent] = agent
		}

		if cfg.resolver != nil {
			agent := reg.agents[skill.Agent]
			for _, path := range agent.Metadata.PrimaryFiles {
				if hasGlobMeta(path) {
					continue // glob patterns are checked at load time
				}
				if !cfg.resolver.Exists(skill.Directory, path) {
					result = multierror.Append(result, errors.Errorf(
						"agent '%s' (skill '%s') requires knowledge file '%s' which does not exist under any root",
						skill.Agent, skill.Name, path))
				}
			}
		}
	}

	reg.collisions = findCollisions(discovered)
	for _, collision := range reg.collisions {
		logger.G(ctx).WithField("phrase", collision.Phrase).
			WithField("skills", collision.Skills).
			Warn("trigger phrase registered by multiple skills, phrase disabled")
	}

	if cfg.fallback != "" {
		if _, ok := reg.byName[cfg.fallback]; !ok {
			logger.G(ctx).WithField("skill", cfg.fallback).Warn("fallback skill not in registry, fallback disabled")
			reg.fallback = ""
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	reg.matcher = triggers.NewMatcher(reg.TriggerEntries(), reg.fallback)
	return reg, nil
}

// findCollisions returns trigger phrases registered by more than one
// skill, sorted by phrase for stable reporting.
func findCollisions(discovered []*Skill) []Collision {
	owners := make(map[string][]string)
	for _, skill := range discovered {
		seen := make(map[string]bool)
		for _, phrase := range skill.Triggers {
			key := strings.ToLower(strings.TrimSpace(phrase))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			owners[key] = append(owners[key], skill.Name)
		}
	}

	var collisions []Collision
	for phrase, names := range owners {
		if len(names) > 1 {
			collisions = append(collisions, Collision{Phrase: phrase, Skills: names})
		}
	}
	sort.Slice(collisions, func(i, j int) bool { return collisions[i].Phrase < collisions[j].Phrase })
	return collisions
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// Resolve looks up a skill and returns it with its agent and manifest.
func (r *Registry) Resolve(name string) (*ResolvedSkill, error) {
	skill, ok := r.byName[name]
	if !ok {
		return nil, &UnknownSkillError{Name: name}
	}
	agent := r.agents[skill.Agent]
	return &ResolvedSkill{Skill: skill, Agent: agent, Manifest: agent.Manifest()}, nil
}

// Skills returns all skills in declaration order.
func (r *Registry) Skills() []*Skill {
	return r.ordered
}

// Collisions returns the trigger collisions found at build time.
func (r *Registry) Collisions() []Collision {
	return r.collisions
}

// Fallback returns the configured fallback skill name, empty if none.
func (r *Registry) Fallback() string {
	return r.fallback
}

// TriggerEntries returns the matcher table in declaration order, with
// colliding phrases removed.
func (r *Registry) TriggerEntries() []triggers.Entry {
	disabled := make(map[string]bool, len(r.collisions))
	for _, collision := range r.collisions {
		disabled[collision.Phrase] = true
	}

	var entries []triggers.Entry
	for _, skill := range r.ordered {
		for _, phrase := range skill.Triggers {
			if disabled[strings.ToLower(strings.TrimSpace(phrase))] {
				continue
			}
			entries = append(entries, triggers.Entry{Phrase: phrase, Skill: skill.Name})
		}
	}
	return entries
}

// NewMatcher builds the trigger matcher for this registry.
func (r *Registry) NewMatcher() *triggers.Matcher {
	return triggers.NewMatcher(r.TriggerEntries(), r.fallback)
}

// Route resolves free text to a skill: the explicit `/skill-name` command
// surface first, then trigger matching, then the fallback skill. args is
// the remaining command text for the explicit surface.
func (r *Registry) Route(input string) (resolved *ResolvedSkill, args string, err error) {
	if name, rest, ok := triggers.ParseCommand(input); ok {
		resolved, err = r.Resolve(name)
		return resolved, rest, err
	}

	name, ok := r.matcher.Match(input)
	if !ok {
		fallback, hasFallback := r.matcher.Fallback()
		if !hasFallback {
			return nil, "", &UnknownSkillError{Input: strings.TrimSpace(input)}
		}
		name = fallback
	}
	resolved, err = r.Resolve(name)
	return resolved, "", err
}
