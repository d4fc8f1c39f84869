package bom

import (
	"github.com/jlctools/jlcsearch/models"
)

// PartFinder is the slice of the catalog store the matcher queries.
type PartFinder interface {
	MatchBOM(comment, footprint string) (*models.Part, error)
}

// Matcher reconciles BOM lines against the catalog store.
type Matcher struct {
	store PartFinder
}

func NewMatcher(store PartFinder) *Matcher {
	return &Matcher{store: store}
}

// Match finds the best in-catalog candidate for the line, writes its vendor
// id into VendorPartHint, and reports whether anything matched. Found or
// not found is the whole contract; there is no confidence score.
func (m *Matcher) Match(line *Line) (*models.Part, bool) {
	part, err := m.store.MatchBOM(line.Comment, line.Footprint)
	if err != nil {
		// Query errors read the same as no match to the caller.
		return nil, false
	}

	line.VendorPartHint = part.LCSCPart
	return part, true
}

// MatchAll matches every line in place and returns how many were found.
func (m *Matcher) MatchAll(lines []Line) int {
	found := 0
	for i := range lines {
		if _, ok := m.Match(&lines[i]); ok {
			found++
		}
	}
	return found
}
