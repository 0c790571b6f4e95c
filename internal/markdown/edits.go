package markdown

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Edit is a byte-range replacement against an original source.
// Start and End are offsets into the source, End exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("invalid edits: overlapping ranges")

// ApplyEdits applies non-overlapping edits to source in a single pass.
// All offsets refer to the original source; the input slice is not modified.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b Edit) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	var out bytes.Buffer
	out.Grow(len(source))
	pos := 0
	for i, e := range sorted {
		switch {
		case e.Start < 0 || e.End < 0:
			return nil, fmt.Errorf("invalid edit[%d]: negative range", i)
		case e.End < e.Start:
			return nil, fmt.Errorf("invalid edit[%d]: end before start", i)
		case e.End > len(source):
			return nil, fmt.Errorf("invalid edit[%d]: range out of bounds", i)
		case e.Start < pos:
			return nil, ErrOverlappingEdits
		}
		out.Write(source[pos:e.Start])
		out.Write(e.Replacement)
		pos = e.End
	}
	out.Write(source[pos:])
	return out.Bytes(), nil
}
