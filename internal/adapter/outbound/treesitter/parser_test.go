package treesitter

import (
	"codeparity/internal/adapter/outbound/treesitter/errors"
	"codeparity/internal/domain/valueobject"
	"context"
	"sync"
	"testing"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLanguage(t *testing.T, name string) valueobject.Language {
	t.Helper()
	lang, err := valueobject.NewLanguage(name)
	require.NoError(t, err)
	return lang
}

func TestTreeSitterSyntaxParser_ParseGo(t *testing.T) {
	parser := NewTreeSitterSyntaxParser()
	source := []byte("package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")

	tree, err := parser.Parse(context.Background(), source, mustLanguage(t, "go"))
	require.NoError(t, err)
	require.NotNil(t, tree)

	root := tree.RootNode()
	require.NotNil(t, root)
	assert.Equal(t, "source_file", root.Type)
	assert.Positive(t, root.NamedChildCount())
	assert.Positive(t, tree.Metadata().NodeCount)
	assert.Positive(t, tree.Metadata().MaxDepth)
}

func TestTreeSitterSyntaxParser_ParsePython(t *testing.T) {
	parser := NewTreeSitterSyntaxParser()
	source := []byte("def add(a, b):\n    return a + b\n")

	tree, err := parser.Parse(context.Background(), source, mustLanguage(t, "python"))
	require.NoError(t, err)

	assert.Equal(t, "module", tree.RootNode().Type)
	assert.Positive(t, tree.RootNode().NamedChildCount())
}

func TestTreeSitterSyntaxParser_EmptySource(t *testing.T) {
	parser := NewTreeSitterSyntaxParser()

	tree, err := parser.Parse(context.Background(), []byte(""), mustLanguage(t, "go"))
	require.NoError(t, err)

	// Empty input still parses to a valid root with no named children.
	assert.Equal(t, "source_file", tree.RootNode().Type)
	assert.Zero(t, tree.RootNode().NamedChildCount())
}

func TestTreeSitterSyntaxParser_MalformedSourceStillParses(t *testing.T) {
	parser := NewTreeSitterSyntaxParser()
	source := []byte("package main\n\nfunc broken( {\n")

	// tree-sitter is error tolerant; malformed input yields ERROR nodes,
	// not a parse failure.
	tree, err := parser.Parse(context.Background(), source, mustLanguage(t, "go"))
	require.NoError(t, err)
	require.NotNil(t, tree.RootNode())
}

func TestTreeSitterSyntaxParser_UnknownLanguage(t *testing.T) {
	parser := NewTreeSitterSyntaxParser()

	var tree *valueobject.SyntaxTree
	var err error
	require.NotPanics(t, func() {
		tree, err = parser.Parse(context.Background(), []byte("hello"), mustLanguage(t, "notalanguage"))
	})
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.True(t, parsererrors.IsGrammarUnavailable(err))
}

func TestTreeSitterSyntaxParser_SupportsLanguage(t *testing.T) {
	parser := NewTreeSitterSyntaxParser()

	assert.True(t, parser.SupportsLanguage(mustLanguage(t, "go")))
	assert.True(t, parser.SupportsLanguage(mustLanguage(t, "python")))

	require.NotPanics(t, func() {
		assert.False(t, parser.SupportsLanguage(mustLanguage(t, "notalanguage")))
	})
}

func TestGrammarResolver_CachesResolvedGrammars(t *testing.T) {
	resolver := NewGrammarResolver()
	ctx := context.Background()

	assert.Empty(t, resolver.CachedLanguages())

	first, err := resolver.Resolve(ctx, mustLanguage(t, "go"))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := resolver.Resolve(ctx, mustLanguage(t, "go"))
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.Equal(t, []string{"go"}, resolver.CachedLanguages())
}

func TestGrammarResolver_UnknownLanguage(t *testing.T) {
	resolver := NewGrammarResolver()

	// The forest registry panics on unknown keys; resolution must turn
	// that into a checked error, never let it escape.
	var grammar *tree_sitter.Language
	var err error
	require.NotPanics(t, func() {
		grammar, err = resolver.Resolve(context.Background(), mustLanguage(t, "notalanguage"))
	})
	require.Error(t, err)
	assert.Nil(t, grammar)
	assert.True(t, parsererrors.IsGrammarUnavailable(err))

	// Failed resolutions are not cached.
	assert.Empty(t, resolver.CachedLanguages())
}

func TestGrammarResolver_ConcurrentResolution(t *testing.T) {
	resolver := NewGrammarResolver()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grammar, err := resolver.Resolve(ctx, mustLanguage(t, "go"))
			assert.NoError(t, err)
			assert.NotNil(t, grammar)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"go"}, resolver.CachedLanguages())
}
