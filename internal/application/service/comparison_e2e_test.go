package service

import (
	"codeparity/internal/adapter/outbound/treesitter"
	"codeparity/internal/domain/valueobject"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests exercise the full path through the tree-sitter adapter with
// real grammars.

func newRealService(t *testing.T) *ComparisonService {
	t.Helper()
	svc, err := NewComparisonService(treesitter.NewTreeSitterSyntaxParser())
	require.NoError(t, err)
	return svc
}

func TestCompare_Reflexive(t *testing.T) {
	svc := newRealService(t)
	source := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"

	result, err := svc.Compare(context.Background(), source, source, "go")
	require.NoError(t, err)

	assert.True(t, result.Equal)
	assert.Empty(t, result.Differences)
	assert.False(t, result.FallbackUsed)
}

func TestCompare_FormattingInsensitive(t *testing.T) {
	svc := newRealService(t)

	expected := "package main\n\nfunc add(a, b int) int {\n\treturn a + b\n}\n"
	actual := "package main\nfunc add(a,b int) int { return a+b }\n"

	result, err := svc.Compare(context.Background(), expected, actual, "go")
	require.NoError(t, err)

	assert.True(t, result.Equal, "differences: %v", result.Differences)
}

func TestCompare_RenamedIdentifier(t *testing.T) {
	svc := newRealService(t)

	expected := "package main\n\nvar count = 1\n"
	actual := "package main\n\nvar total = 1\n"

	result, err := svc.Compare(context.Background(), expected, actual, "go")
	require.NoError(t, err)

	assert.False(t, result.Equal)
	require.NotEmpty(t, result.Differences)
	assert.Contains(t, strings.Join(result.Differences, "\n"), "mismatch")
}

func TestCompare_ExtraArgument(t *testing.T) {
	svc := newRealService(t)

	expected := "package main\n\nfunc main() {\n\tf(a, b)\n}\n"
	actual := "package main\n\nfunc main() {\n\tf(a, b, c)\n}\n"

	result, err := svc.Compare(context.Background(), expected, actual, "go")
	require.NoError(t, err)

	assert.False(t, result.Equal)
	joined := strings.Join(result.Differences, "\n")
	assert.Contains(t, joined, "Named child count mismatch")
}

func TestCompare_DifferencePathsStartAtRoot(t *testing.T) {
	svc := newRealService(t)

	expected := "package main\n\nvar x = 1\n"
	actual := "package other\n\nvar x = 1\n"

	result, err := svc.Compare(context.Background(), expected, actual, "go")
	require.NoError(t, err)

	require.NotEmpty(t, result.Differences)
	for _, diff := range result.Differences {
		assert.Contains(t, diff, "root")
	}
}

func TestCompare_UnknownLanguageFallsBack(t *testing.T) {
	svc := newRealService(t)

	t.Run("equal after whitespace collapse", func(t *testing.T) {
		result, err := svc.Compare(context.Background(), "a  b", "a b", "notalanguage")
		require.NoError(t, err)

		assert.True(t, result.Equal)
		assert.True(t, result.FallbackUsed)
	})

	t.Run("unequal plain strings", func(t *testing.T) {
		var result valueobject.ComparisonResult
		var err error
		require.NotPanics(t, func() {
			result, err = svc.Compare(context.Background(), "a b", "ab", "notalanguage")
		})
		require.NoError(t, err)

		assert.False(t, result.Equal)
		assert.True(t, result.FallbackUsed)
		require.Len(t, result.Differences, 1)
	})
}

func TestCompare_Idempotent(t *testing.T) {
	svc := newRealService(t)

	expected := "package main\n\nvar count = 1\n"
	actual := "package main\n\nvar total = 2\n"

	first, err := svc.Compare(context.Background(), expected, actual, "go")
	require.NoError(t, err)
	second, err := svc.Compare(context.Background(), expected, actual, "go")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
