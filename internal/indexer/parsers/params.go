package parsers

import "strings"

// splitParameters splits a raw parameter list on top-level commas and keeps
// the name part of each parameter: the text before a type annotation ':' or a
// default value '='.
func splitParameters(raw string) []string {
	params := []string{}
	for _, part := range splitTopLevel(raw) {
		name := part
		if i := strings.IndexAny(name, ":="); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			params = append(params, name)
		}
	}
	return params
}

// splitTopLevel splits on commas that are not nested in (), [], {} or <>.
func splitTopLevel(raw string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range raw {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, raw[start:])
}

// splitList splits a comma-separated identifier list, dropping blanks.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// exportNames turns `a, b as c, 'd'` into [a c d].
func exportNames(raw string) []string {
	var out []string
	for _, part := range splitList(raw) {
		fields := strings.Fields(part)
		name := fields[len(fields)-1]
		name = strings.Trim(name, `'"`)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// importItems turns an import clause such as `React, { useState as s }` or
// `(a, b)` into the referenced names [React useState].
func importItems(clause string) []string {
	cleaned := strings.NewReplacer("{", ",", "}", ",", "(", ",", ")", ",").Replace(clause)
	items := []string{}
	for _, part := range splitList(cleaned) {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		items = append(items, fields[0])
	}
	return items
}

// isDefaultClause reports whether an import clause starts with a bare
// identifier binding rather than a destructuring or namespace import.
func isDefaultClause(clause string) bool {
	if clause == "" {
		return false
	}
	switch clause[0] {
	case '{', '*', '[', '(':
		return false
	}
	return true
}
