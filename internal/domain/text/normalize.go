// Package text turns free-form text into comparable keyword sets.
package text

import (
	"sort"
	"strings"
)

// TokenSet is a set of lowercase alphanumeric tokens.
// Frequency and order are discarded.
type TokenSet map[string]struct{}

// Normalize lowercases s, replaces every rune outside [a-z0-9] with a space
// and collects the remaining whitespace-separated tokens.
func Normalize(s string) TokenSet {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}

	fields := strings.Fields(b.String())
	set := make(TokenSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Len returns the number of distinct tokens.
func (s TokenSet) Len() int { return len(s) }

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Intersect returns tokens present in both sets.
func (s TokenSet) Intersect(other TokenSet) TokenSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(TokenSet)
	for tok := range small {
		if large.Has(tok) {
			out[tok] = struct{}{}
		}
	}
	return out
}

// Difference returns tokens of s that are absent from other.
func (s TokenSet) Difference(other TokenSet) TokenSet {
	out := make(TokenSet)
	for tok := range s {
		if !other.Has(tok) {
			out[tok] = struct{}{}
		}
	}
	return out
}

// Sorted returns the tokens in lexical order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Text renders the set as sorted tokens joined by single spaces.
// Normalize(s.Text()) yields a set equal to s.
func (s TokenSet) Text() string {
	return strings.Join(s.Sorted(), " ")
}
