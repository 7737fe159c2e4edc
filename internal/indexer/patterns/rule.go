package patterns

import (
	"fmt"
	"regexp"
)

// Rule is a single textual detection rule. Group fields hold capture-group
// indices; zero means the rule does not capture that role.
type Rule struct {
	Expr string

	Name       int
	Params     int
	Return     int
	Extends    int
	Implements int
	Module     int
	Items      int

	// List marks rules whose Name group holds a comma-separated list of
	// names, e.g. `export { a, b }`.
	List bool

	// DefaultClause marks import rules where a bare identifier in the Items
	// group is a default import (`import React from "react"`).
	DefaultClause bool
}

// Matcher is a compiled Rule.
type Matcher struct {
	Rule
	re *regexp.Regexp
}

// Match holds the capture groups of a successful match.
type Match struct {
	groups []string
}

func compile(r Rule) (Matcher, error) {
	re, err := regexp.Compile(r.Expr)
	if err != nil {
		return Matcher{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, r.Expr, err)
	}
	n := re.NumSubexp()
	for _, g := range []int{r.Name, r.Params, r.Return, r.Extends, r.Implements, r.Module, r.Items} {
		if g < 0 || g > n {
			return Matcher{}, fmt.Errorf("%w: %q: group %d out of range (%d groups)", ErrInvalidPattern, r.Expr, g, n)
		}
	}
	return Matcher{Rule: r, re: re}, nil
}

// Find returns the leftmost match of the rule on line.
func (m Matcher) Find(line string) (Match, bool) {
	groups := m.re.FindStringSubmatch(line)
	if groups == nil {
		return Match{}, false
	}
	return Match{groups: groups}, true
}

// String returns the source expression.
func (m Matcher) String() string {
	return m.Expr
}

// Group returns capture group i, or "" when i is zero or the group did not
// participate in the match.
func (m Match) Group(i int) string {
	if i <= 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

// Has reports whether group i is defined and captured non-empty text.
func (m Match) Has(i int) bool {
	return m.Group(i) != ""
}
