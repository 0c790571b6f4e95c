// Package slug turns heading text into URL anchors.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases s, strips diacritics, drops '.', '(' and '?', and replaces every
// other character outside [a-z0-9] with a dash. Dash runs collapse and are trimmed.
func Make(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range folded {
		switch {
		case r == '.' || r == '(' || r == '?':
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

// Registry hands out unique slugs within one document. Repeats get -1, -2, ... suffixes.
type Registry struct {
	seen map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: map[string]int{}}
}

// Unique returns Make(s), suffixed when it was already handed out.
func (r *Registry) Unique(s string) string {
	base := Make(s)
	n, ok := r.seen[base]
	r.seen[base] = n + 1
	if !ok {
		return base
	}
	candidate := base + "-" + strconv.Itoa(n)
	for {
		if _, taken := r.seen[candidate]; !taken {
			r.seen[candidate] = 1
			return candidate
		}
		n++
		r.seen[base] = n + 1
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// Reserve marks s as used without transforming it.
func (r *Registry) Reserve(s string) {
	r.seen[s]++
}
