package service

import (
	"codeparity/internal/domain/valueobject"
	"fmt"
	"strings"
	"unicode"
)

// maxCompareDepth bounds the comparison recursion so adversarially deep
// trees cannot exhaust the stack. Subtrees past the cap are reported with a
// single notice instead of being descended. This is an implementation
// constraint, not a correctness condition: ordinary source never comes
// close.
const maxCompareDepth = 10000

// textPreviewLength is the maximum number of raw characters of node text
// quoted per side in a text-mismatch message. Difference messages are for
// human diagnosis; a large string literal should not flood the output.
const textPreviewLength = 50

// compareNodes recursively compares two syntax nodes and appends
// human-readable difference records to diffs. Checks run in strict order,
// each short-circuiting descent into this subtree on mismatch:
//
//  1. node type label
//  2. whitespace-stripped node text
//  3. named child count
//  4. per-index recursive descent
//
// A mismatch stops descent into the current subtree only; sibling indices
// already scheduled by the caller are still compared independently.
func compareNodes(expected, actual *valueobject.SyntaxNode, path string, depth int, diffs *[]string) {
	// Both sides present is guaranteed by the caller's count check; a
	// grammar handing out nil children despite its counts is skipped
	// defensively rather than crashed on.
	if expected == nil || actual == nil {
		return
	}

	if depth > maxCompareDepth {
		*diffs = append(*diffs, fmt.Sprintf(
			"Comparison depth limit reached at %s; subtree not compared", path))
		return
	}

	if expected.Type != actual.Type {
		*diffs = append(*diffs, fmt.Sprintf(
			"Node type mismatch at %s: expected %q, got %q", path, expected.Type, actual.Type))
		return
	}

	if stripWhitespace(expected.Text) != stripWhitespace(actual.Text) {
		*diffs = append(*diffs, fmt.Sprintf(
			"Text mismatch at %s (%s): expected %q, got %q",
			path, expected.Type, previewText(expected.Text), previewText(actual.Text)))
		return
	}

	// Text equality does not short-circuit the structural checks: in
	// degenerate grammars equal text can still carry differing shapes.
	expectedCount := expected.NamedChildCount()
	actualCount := actual.NamedChildCount()
	if expectedCount != actualCount {
		*diffs = append(*diffs, fmt.Sprintf(
			"Named child count mismatch at %s (%s): expected %d, got %d",
			path, expected.Type, expectedCount, actualCount))
		return
	}

	for i := range expectedCount {
		expectedChild := expected.NamedChild(i)
		actualChild := actual.NamedChild(i)
		if expectedChild == nil || actualChild == nil {
			continue
		}
		// The path label is derived from the expected side's child type
		// for determinism.
		childPath := valueobject.ChildPath(path, expectedChild.Type, i)
		compareNodes(expectedChild, actualChild, childPath, depth+1, diffs)
	}
}

// stripWhitespace removes every whitespace character. Node-level text
// comparison tolerates formatting exactly; this is stricter than the
// fallback's collapse-to-single-space normalization.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// collapseWhitespace trims the text and collapses each whitespace run to a
// single space, the looser normalization used by fallback mode.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// previewText shortens raw node text for difference messages, appending an
// ellipsis marker when text was cut. Truncation counts runes, never
// splitting a multibyte character.
func previewText(s string) string {
	if len(s) <= textPreviewLength {
		return s
	}

	runes := []rune(s)
	if len(runes) <= textPreviewLength {
		return s
	}
	return string(runes[:textPreviewLength]) + "..."
}
