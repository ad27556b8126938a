package safety

import (
	"strings"

	"coq-sweep/internal/scan"
)

// DefaultProtectedSuffix marks proof source files
const DefaultProtectedSuffix = ".v"

// DefaultProtectedNames returns the names that always survive a sweep
func DefaultProtectedNames() []string {
	return []string{
		"_CoqProject",
		"README.md",
		".gitignore",
		"remove.py",
	}
}

// Policy decides which entries a sweep keeps. It is immutable after construction.
type Policy struct {
	names  map[string]struct{}
	suffix string
}

// NewPolicy creates a policy from a protected name list and a protected suffix
func NewPolicy(names []string, suffix string) *Policy {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &Policy{names: set, suffix: suffix}
}

// DefaultPolicy returns the built-in policy
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultProtectedNames(), DefaultProtectedSuffix)
}

// WithName returns a copy of p that also protects name
func (p *Policy) WithName(name string) *Policy {
	names := p.Names()
	return NewPolicy(append(names, name), p.suffix)
}

// Names returns the protected names in no particular order
func (p *Policy) Names() []string {
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	return out
}

// Suffix returns the protected suffix
func (p *Policy) Suffix() string {
	return p.suffix
}

// IsProtectedName reports an exact match against the protected name set
func (p *Policy) IsProtectedName(name string) bool {
	_, ok := p.names[name]
	return ok
}

// HasProtectedSuffix reports whether name ends with the protected suffix.
// The match is on the trailing characters only: "data.v.bak" does not match.
func (p *Policy) HasProtectedSuffix(name string) bool {
	return p.suffix != "" && strings.HasSuffix(name, p.suffix)
}

// Evaluate applies the keep rules in order: protected name, regular file
// check, protected suffix. Anything left is deleted.
func (p *Policy) Evaluate(e scan.Entry) scan.Decision {
	if p.IsProtectedName(e.Name) {
		return scan.Keep(e, scan.ReasonProtectedName)
	}
	if !e.IsRegular() {
		return scan.Keep(e, scan.ReasonNotRegular)
	}
	if p.HasProtectedSuffix(e.Name) {
		return scan.Keep(e, scan.ReasonProtectedSuffix)
	}
	return scan.Delete(e)
}
