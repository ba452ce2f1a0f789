// Package triggers maps free-text user requests to skill names. Matching
// is a pure lookup: case-insensitive substring containment of registered
// trigger phrases, with a deterministic tie-break.
package triggers

import "strings"

// Entry is one trigger phrase registered to a skill. Entries are ordered
// by registry declaration order.
type Entry struct {
	Phrase string
	Skill  string
}

// Matcher resolves free text to a skill name.
type Matcher struct {
	entries  []entry
	fallback string
}

type entry struct {
	phrase string // lowercased
	skill  string
}

// NewMatcher builds a matcher from ordered trigger entries. fallback is
// the skill returned by Fallback when nothing matches; empty means no
// fallback is configured.
func NewMatcher(entries []Entry, fallback string) *Matcher {
	m := &Matcher{fallback: fallback}
	for _, e := range entries {
		phrase := strings.ToLower(strings.TrimSpace(e.Phrase))
		if phrase == "" || e.Skill == "" {
			continue
		}
		m.entries = append(m.entries, entry{phrase: phrase, skill: e.Skill})
	}
	return m
}

// Match returns the best-matching skill for the input. A phrase matches
// when it is contained in the input, case-insensitively. When several
// phrases match, the longest phrase wins; remaining ties go to the phrase
// registered first. ok is false when nothing matches; that is not an
// error, the caller may fall back to Fallback().
func (m *Matcher) Match(input string) (skill string, ok bool) {
	lower := strings.ToLower(input)

	var best entry
	for _, e := range m.entries {
		if !strings.Contains(lower, e.phrase) {
			continue
		}
		// Strictly longer replaces; equal length keeps the earlier entry.
		if !ok || len(e.phrase) > len(best.phrase) {
			best = e
			ok = true
		}
	}
	if !ok {
		return "", false
	}
	return best.skill, true
}

// Fallback returns the configured fallback skill name and whether one is
// configured.
func (m *Matcher) Fallback() (string, bool) {
	return m.fallback, m.fallback != ""
}

// ParseCommand recognizes the explicit command surface `/skill-name
// [args...]`. It returns the skill name and the remaining argument text.
func ParseCommand(input string) (skill, args string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	rest := strings.TrimPrefix(trimmed, "/")
	if rest == "" {
		return "", "", false
	}
	name, remainder, _ := strings.Cut(rest, " ")
	return name, strings.TrimSpace(remainder), true
}
