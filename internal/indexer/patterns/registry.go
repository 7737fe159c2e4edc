package patterns

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidPattern indicates a built-in rule that does not compile. It is
	// a configuration bug and fatal at startup.
	ErrInvalidPattern = errors.New("invalid detection pattern")
)

// Set is the compiled rule set for one language.
type Set struct {
	Language     string
	AsyncKeyword string

	Imports   []Matcher
	Exports   []Matcher
	Functions []Matcher
	Classes   []Matcher
}

// Registry maps language tags to compiled rule sets. A Registry is read-only
// after construction.
type Registry struct {
	sets     map[string]*Set
	fallback *Set
}

// New compiles the built-in rule tables.
func New() (*Registry, error) {
	return NewFromDefinitions(builtin, fallback)
}

// NewFromDefinitions compiles the given tables into a Registry.
func NewFromDefinitions(defs map[string]Definition, fb Definition) (*Registry, error) {
	r := &Registry{sets: make(map[string]*Set, len(defs))}

	for lang, def := range defs {
		set, err := compileSet(lang, def)
		if err != nil {
			return nil, err
		}
		r.sets[lang] = set
	}

	set, err := compileSet("", fb)
	if err != nil {
		return nil, err
	}
	r.fallback = set

	return r, nil
}

// Lookup returns the rule set for lang. ok is false for unsupported or empty
// languages; callers then use Fallback.
func (r *Registry) Lookup(lang string) (*Set, bool) {
	set, ok := r.sets[lang]
	return set, ok
}

// Fallback returns the generic cross-language rule set.
func (r *Registry) Fallback() *Set {
	return r.fallback
}

// Resolve returns the rule set for lang, or the fallback.
func (r *Registry) Resolve(lang string) *Set {
	if set, ok := r.Lookup(lang); ok {
		return set
	}
	return r.fallback
}

// Languages lists the registered language tags in sorted order.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.sets))
	for lang := range r.sets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func compileSet(lang string, def Definition) (*Set, error) {
	set := &Set{Language: lang, AsyncKeyword: def.AsyncKeyword}

	groups := []struct {
		rules []Rule
		dst   *[]Matcher
	}{
		{def.Imports, &set.Imports},
		{def.Exports, &set.Exports},
		{def.Functions, &set.Functions},
		{def.Classes, &set.Classes},
	}
	for _, g := range groups {
		for _, rule := range g.rules {
			m, err := compile(rule)
			if err != nil {
				if lang == "" {
					return nil, fmt.Errorf("fallback rules: %w", err)
				}
				return nil, fmt.Errorf("%s rules: %w", lang, err)
			}
			*g.dst = append(*g.dst, m)
		}
	}

	return set, nil
}
