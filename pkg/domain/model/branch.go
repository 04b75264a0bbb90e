package model

import (
	"regexp"

	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// BranchPattern is a configured branch matcher
type BranchPattern struct {
	raw string
	re  *regexp.Regexp
}

// String returns the pattern as configured
func (p BranchPattern) String() string {
	return p.raw
}

// Matches reports whether the leftmost match of the pattern is non-empty and
// covers the whole branch name. "rel" therefore does not match "release".
func (p BranchPattern) Matches(branch string) bool {
	m := p.re.FindString(branch)
	return m != "" && m == branch
}

// BranchMatcher is the ordered set of configured branch patterns
type BranchMatcher struct {
	patterns []BranchPattern
}

// NewBranchMatcher compiles patterns in declaration order
func NewBranchMatcher(patterns []string) (*BranchMatcher, error) {
	m := &BranchMatcher{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid branch pattern",
				goerr.V("pattern", p),
				goerr.T(types.ErrTagInvalidConfig),
			)
		}
		m.patterns = append(m.patterns, BranchPattern{raw: p, re: re})
	}
	return m, nil
}

// Patterns returns the compiled patterns in declaration order
func (m *BranchMatcher) Patterns() []BranchPattern {
	return m.patterns
}

// Match evaluates every pattern and returns the last one that matches the branch
func (m *BranchMatcher) Match(branch string) (BranchPattern, bool) {
	var (
		matched BranchPattern
		found   bool
	)
	for _, p := range m.patterns {
		if p.Matches(branch) {
			matched = p
			found = true
		}
	}
	return matched, found
}
