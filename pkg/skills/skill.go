// Package skills discovers skill definitions and builds the immutable
// registry that routes user requests. Skills are packaged as directories
// containing a SKILL.md file whose YAML frontmatter names the skill, its
// trigger phrases, and the agent that consumes it.
package skills

import "fmt"

// Argument is a named argument a skill accepts on its command surface.
type Argument struct {
	Name        string
	Description string
	Required    bool
}

// Skill is a discovered skill definition.
type Skill struct {
	Name        string     // unique name from frontmatter
	Description string     // short description
	Agent       string     // name of the agent that consumes this skill
	Triggers    []string   // ordered trigger phrases
	Arguments   []Argument // command-surface arguments
	Directory   string     // full path to the skill directory
	Content     string     // SKILL.md body without frontmatter
}

// UnknownSkillError reports a lookup for a skill name that is not in the
// registry, or a routing request that matched no trigger with no fallback
// configured.
type UnknownSkillError struct {
	Name  string // requested skill name, empty when no trigger matched
	Input string // original input text for no-match failures
}

func (e *UnknownSkillError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown skill '%s'", e.Name)
	}
	return fmt.Sprintf("no skill matches %q and no fallback is configured", e.Input)
}
