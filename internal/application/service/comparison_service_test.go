package service

import (
	"codeparity/internal/adapter/outbound/treesitter/errors"
	"codeparity/internal/domain/valueobject"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubParser implements outbound.SyntaxParser with canned trees keyed by
// source text, or a fixed error for every parse.
type stubParser struct {
	trees    map[string]*valueobject.SyntaxNode
	parseErr error
}

func (p *stubParser) Parse(
	ctx context.Context,
	source []byte,
	language valueobject.Language,
) (*valueobject.SyntaxTree, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}

	root, ok := p.trees[string(source)]
	if !ok {
		return nil, parsererrors.NewParseFailureError(language.Name(), "no canned tree for source")
	}

	return valueobject.NewSyntaxTree(ctx, language, root, source, valueobject.ParseMetadata{})
}

func (p *stubParser) SupportedLanguages() []string {
	return []string{valueobject.LanguageGo}
}

func newTestService(t *testing.T, parser *stubParser) *ComparisonService {
	t.Helper()
	svc, err := NewComparisonService(parser)
	require.NoError(t, err)
	return svc
}

func TestNewComparisonService_NilParser(t *testing.T) {
	svc, err := NewComparisonService(nil)
	require.Error(t, err)
	assert.Nil(t, svc)
}

func TestComparisonService_InvalidLanguage(t *testing.T) {
	svc := newTestService(t, &stubParser{})

	tests := []struct {
		name       string
		languageID string
	}{
		{name: "empty identifier", languageID: ""},
		{name: "whitespace only", languageID: "   "},
		{name: "invalid characters", languageID: "go lang!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compare(context.Background(), "a", "a", tt.languageID)
			require.Error(t, err)
		})
	}
}

func TestComparisonService_EqualTrees(t *testing.T) {
	root := &valueobject.SyntaxNode{Type: "source_file", Text: "package main"}
	parser := &stubParser{trees: map[string]*valueobject.SyntaxNode{
		"package main":  root,
		"package  main": root,
	}}
	svc := newTestService(t, parser)

	result, err := svc.Compare(context.Background(), "package main", "package  main", "go")
	require.NoError(t, err)

	assert.True(t, result.Equal)
	assert.Empty(t, result.Differences)
	assert.Equal(t, "go", result.Language)
	assert.False(t, result.FallbackUsed)
}

func TestComparisonService_DifferentTrees(t *testing.T) {
	parser := &stubParser{trees: map[string]*valueobject.SyntaxNode{
		"func f() {}": {Type: "function_declaration", Text: "func f() {}"},
		"var x int":   {Type: "var_declaration", Text: "var x int"},
	}}
	svc := newTestService(t, parser)

	result, err := svc.Compare(context.Background(), "func f() {}", "var x int", "go")
	require.NoError(t, err)

	assert.False(t, result.Equal)
	require.Len(t, result.Differences, 1)
	assert.Contains(t, result.Differences[0], "Node type mismatch at root")
}

func TestComparisonService_LanguageAliasNormalized(t *testing.T) {
	root := &valueobject.SyntaxNode{Type: "source_file", Text: "x"}
	parser := &stubParser{trees: map[string]*valueobject.SyntaxNode{"x": root}}
	svc := newTestService(t, parser)

	result, err := svc.Compare(context.Background(), "x", "x", "GoLang")
	require.NoError(t, err)

	assert.Equal(t, "go", result.Language)
}

func TestComparisonService_Fallback(t *testing.T) {
	unavailable := parsererrors.NewGrammarUnavailableError("notalanguage")

	t.Run("whitespace-collapsed equal texts match", func(t *testing.T) {
		svc := newTestService(t, &stubParser{parseErr: unavailable})

		result, err := svc.Compare(context.Background(), "a  b", "a b", "notalanguage")
		require.NoError(t, err)

		assert.True(t, result.Equal)
		assert.True(t, result.FallbackUsed)
		assert.Empty(t, result.Differences)
	})

	t.Run("removed whitespace is a difference in fallback mode", func(t *testing.T) {
		svc := newTestService(t, &stubParser{parseErr: unavailable})

		result, err := svc.Compare(context.Background(), "a b", "ab", "notalanguage")
		require.NoError(t, err)

		assert.False(t, result.Equal)
		assert.True(t, result.FallbackUsed)
		require.Len(t, result.Differences, 1)
		assert.Contains(t, result.Differences[0], "AST comparison unavailable")
		assert.Contains(t, result.Differences[0], "notalanguage")
	})

	t.Run("notice never leaks parse error detail", func(t *testing.T) {
		parseErr := errors.New("segfault in grammar shared object at 0xdeadbeef")
		svc := newTestService(t, &stubParser{parseErr: parseErr})

		result, err := svc.Compare(context.Background(), "left", "right", "go")
		require.NoError(t, err)

		require.Len(t, result.Differences, 1)
		assert.NotContains(t, result.Differences[0], "segfault")
		assert.NotContains(t, result.Differences[0], "0xdeadbeef")
	})

	t.Run("fallback results are deterministic across runs", func(t *testing.T) {
		svc := newTestService(t, &stubParser{parseErr: unavailable})

		first, err := svc.Compare(context.Background(), "a b", "ab", "notalanguage")
		require.NoError(t, err)
		second, err := svc.Compare(context.Background(), "a b", "ab", "notalanguage")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestComparisonService_EmptyInputs(t *testing.T) {
	emptyRoot := &valueobject.SyntaxNode{Type: "source_file", Text: ""}
	parser := &stubParser{trees: map[string]*valueobject.SyntaxNode{"": emptyRoot}}
	svc := newTestService(t, parser)

	result, err := svc.Compare(context.Background(), "", "", "go")
	require.NoError(t, err)

	assert.True(t, result.Equal)
}

func TestComparisonService_ConcurrentUse(t *testing.T) {
	root := &valueobject.SyntaxNode{Type: "source_file", Text: "x"}
	other := &valueobject.SyntaxNode{Type: "source_file", Text: "y"}
	parser := &stubParser{trees: map[string]*valueobject.SyntaxNode{"x": root, "y": other}}
	svc := newTestService(t, parser)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Compare(context.Background(), "x", "x", "go")
			assert.NoError(t, err)
			assert.True(t, result.Equal)
		}()
	}
	wg.Wait()
}
