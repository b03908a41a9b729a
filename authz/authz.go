package authz

import "strings"

// Checker answers whether subject (a role name) holds permission.
type Checker interface {
	HasPermission(subject, permission string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(subject, permission string) bool

func (f CheckerFunc) HasPermission(subject, permission string) bool {
	return f(subject, permission)
}

// pattern is a parsed "resource:action" grant. A part equal to "*" matches
// anything. A grant without ":" has an empty action and matches only the
// same plain string, or everything when it is "*".
type pattern struct {
	resource, action string
	plain            bool
}

func parsePattern(s string) pattern {
	res, act, ok := strings.Cut(s, ":")
	return pattern{resource: res, action: act, plain: !ok}
}

func (p pattern) matches(required pattern) bool {
	if p.plain && p.resource == "*" {
		return true
	}
	if p.plain != required.plain {
		return false
	}
	return wild(p.resource, required.resource) && (p.plain || wild(p.action, required.action))
}

func wild(pat, v string) bool { return pat == "*" || pat == v }

// MatchPattern reports whether grant covers required. "*", "*:*",
// "article:*" and "*:read" are wildcards.
func MatchPattern(grant, required string) bool {
	return parsePattern(grant).matches(parsePattern(required))
}

// MapChecker is a static role table. Unknown subjects hold nothing.
type MapChecker struct {
	grants map[string][]pattern
}

// NewMapChecker parses role → grant patterns once.
//
//	authz.NewMapChecker(map[string][]string{
//	    "admin":  {"*:*"},
//	    "editor": {"article:*"},
//	})
func NewMapChecker(roles map[string][]string) *MapChecker {
	c := &MapChecker{grants: make(map[string][]pattern, len(roles))}
	for role, grants := range roles {
		for _, g := range grants {
			c.grants[role] = append(c.grants[role], parsePattern(strings.TrimSpace(g)))
		}
	}
	return c
}

func (c *MapChecker) HasPermission(subject, permission string) bool {
	req := parsePattern(permission)
	for _, g := range c.grants[subject] {
		if g.matches(req) {
			return true
		}
	}
	return false
}
