package transport

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const scopeSeparator = "/"

var componentPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Scope is a hierarchical channel name such as /robot/camera/left/.
// Its string form always starts and ends with a slash.
type Scope struct {
	components []string
}

// RootScope is "/".
var RootScope = Scope{}

// ParseScope normalizes s into a Scope. Empty components are collapsed, so
// "a//b" and "/a/b/" parse to the same scope.
func ParseScope(s string) (Scope, error) {
	var components []string
	for _, part := range strings.Split(s, scopeSeparator) {
		if part == "" {
			continue
		}
		if !componentPattern.MatchString(part) {
			return Scope{}, errors.Wrapf(ErrInvalidScope, "component %q in %q", part, s)
		}
		components = append(components, part)
	}
	return Scope{components: components}, nil
}

// MustParseScope is ParseScope that panics on error.
func MustParseScope(s string) Scope {
	scope, err := ParseScope(s)
	if err != nil {
		panic(err)
	}
	return scope
}

// Components returns a copy of the scope's path components.
func (s Scope) Components() []string {
	return append([]string(nil), s.components...)
}

// String returns the normalized form, e.g. "/a/b/".
func (s Scope) String() string {
	if len(s.components) == 0 {
		return scopeSeparator
	}
	return scopeSeparator + strings.Join(s.components, scopeSeparator) + scopeSeparator
}

// IsRoot reports whether s is "/".
func (s Scope) IsRoot() bool { return len(s.components) == 0 }

// Concat appends child's components to s.
func (s Scope) Concat(child Scope) Scope {
	out := make([]string, 0, len(s.components)+len(child.components))
	out = append(out, s.components...)
	out = append(out, child.components...)
	return Scope{components: out}
}

// IsSubScopeOf reports whether s lies strictly below other.
func (s Scope) IsSubScopeOf(other Scope) bool {
	if len(s.components) <= len(other.components) {
		return false
	}
	for i, c := range other.components {
		if s.components[i] != c {
			return false
		}
	}
	return true
}

// Equal reports whether both scopes name the same path.
func (s Scope) Equal(other Scope) bool {
	return s.String() == other.String()
}

// SuperScopes returns every ancestor from the root down, optionally
// followed by s itself.
func (s Scope) SuperScopes(includeSelf bool) []Scope {
	n := len(s.components)
	if includeSelf {
		n++
	}
	out := make([]Scope, 0, n)
	for i := 0; i < len(s.components); i++ {
		out = append(out, Scope{components: s.components[:i:i]})
	}
	if includeSelf {
		out = append(out, s)
	}
	return out
}
