package valueobject

import "fmt"

// ComparisonResult is the outcome of comparing two source snippets. It is
// plain data: structural mismatches are reported here, never as errors.
type ComparisonResult struct {
	// Equal is true iff Differences is empty.
	Equal bool `json:"equal" yaml:"equal"`

	// Differences lists human-readable mismatch records in pre-order
	// (root to leaf, left to right), truncated at the first mismatch
	// along each compared path.
	Differences []string `json:"differences" yaml:"differences"`

	// Language is the canonical identifier the comparison ran under.
	Language string `json:"language" yaml:"language"`

	// FallbackUsed reports that no grammar was available and the texts
	// were compared as whitespace-normalized strings instead.
	FallbackUsed bool `json:"fallback_used" yaml:"fallback_used"`
}

// NewComparisonResult builds a result from an accumulated difference list,
// enforcing the Equal/Differences invariant.
func NewComparisonResult(language Language, differences []string, fallbackUsed bool) ComparisonResult {
	if differences == nil {
		differences = []string{}
	}
	return ComparisonResult{
		Equal:        len(differences) == 0,
		Differences:  differences,
		Language:     language.Name(),
		FallbackUsed: fallbackUsed,
	}
}

// ChildPath derives the path label for a descent into the i-th named child.
// Paths start at "root" and grow as "{parent}.{childType}[{index}]". The
// child type is always taken from the expected side for determinism.
func ChildPath(parent, childType string, index int) string {
	return fmt.Sprintf("%s.%s[%d]", parent, childType, index)
}

// RootPath is the path label of the two root nodes under comparison.
const RootPath = "root"
