package markdown

import "bytes"

// Target is the destination token of a bracketed link, "](dest", in raw source.
// Start and End delimit Dest in the source.
type Target struct {
	Start int
	End   int
	Dest  string
}

// FindLinkTargets scans raw source for every "](" and returns the destination that
// follows it. The destination ends at whitespace, ')' or a quote. This is a textual scan:
// it does not parse Markdown and so also sees links inside code.
func FindLinkTargets(src []byte) []Target {
	var out []Target
	marker := []byte("](")
	for off := 0; ; {
		i := bytes.Index(src[off:], marker)
		if i < 0 {
			return out
		}
		start := off + i + len(marker)
		end := start
		for end < len(src) && !isDestinationEnd(src[end]) {
			end++
		}
		if end > start {
			out = append(out, Target{Start: start, End: end, Dest: string(src[start:end])})
		}
		off = start
	}
}

func isDestinationEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ')', '"', '\'':
		return true
	}
	return false
}
