package treesitter

import (
	"codeparity/internal/adapter/outbound/treesitter/errors"
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/domain/valueobject"
	"context"
	"time"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// TreeSitterSyntaxParser implements outbound.SyntaxParser on top of
// go-tree-sitter-bare with grammars resolved through go-sitter-forest.
// Parser instances are transient per call; the only shared state is the
// read-mostly grammar cache, so the type is safe for concurrent use.
type TreeSitterSyntaxParser struct {
	resolver *GrammarResolver
}

// NewTreeSitterSyntaxParser creates a new parser with an empty grammar cache.
func NewTreeSitterSyntaxParser() *TreeSitterSyntaxParser {
	return &TreeSitterSyntaxParser{
		resolver: NewGrammarResolver(),
	}
}

// Parse parses source as the given language and projects the tree-sitter
// output onto the domain SyntaxTree, keeping only named children. It fails
// explicitly and never returns a partial tree; falling back on failure is
// the caller's responsibility.
func (p *TreeSitterSyntaxParser) Parse(
	ctx context.Context,
	source []byte,
	language valueobject.Language,
) (*valueobject.SyntaxTree, error) {
	start := time.Now()

	grammar, err := p.resolver.Resolve(ctx, language)
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, parsererrors.NewParseFailureError(language.Name(), "tree-sitter parse failed").
			WithOperation("parse").
			WithCause(err)
	}
	if tree == nil {
		return nil, parsererrors.NewParseFailureError(language.Name(), "tree-sitter returned no tree").
			WithOperation("parse")
	}
	// Tree memory is released by the library's GC finalizer; v1.7.1 exposes
	// no public Close.

	rootTSNode := tree.RootNode()
	if rootTSNode == nil || rootTSNode.IsNull() {
		return nil, parsererrors.NewParseFailureError(language.Name(), "tree-sitter returned a null root node").
			WithOperation("parse")
	}

	if rootTSNode.HasError() {
		// Malformed input still yields a usable tree with ERROR nodes;
		// comparison over it is deterministic, so this is not a failure.
		slogger.Debug(ctx, "Parsed source contains syntax errors", slogger.Fields{
			"language":      language.Name(),
			"source_length": len(source),
		})
	}

	rootNode, nodeCount, maxDepth := convertNamedNode(rootTSNode, source, 1)

	syntaxTree, err := valueobject.NewSyntaxTree(ctx, language, rootNode, source, valueobject.ParseMetadata{
		ParseDuration: time.Since(start),
		NodeCount:     nodeCount,
		MaxDepth:      maxDepth,
	})
	if err != nil {
		return nil, parsererrors.NewParseFailureError(language.Name(), "failed to build syntax tree").
			WithOperation("convert").
			WithCause(err)
	}

	slogger.Debug(ctx, "Source parsed", slogger.Fields{
		"language":   language.Name(),
		"node_count": nodeCount,
		"max_depth":  maxDepth,
		"duration":   time.Since(start).String(),
	})

	return syntaxTree, nil
}

// SupportedLanguages reports the grammar keys resolved so far. The forest
// registry itself supports far more; this reflects what the process has
// actually loaded.
func (p *TreeSitterSyntaxParser) SupportedLanguages() []string {
	return p.resolver.CachedLanguages()
}

// SupportsLanguage probes the forest registry for a language without
// parsing anything, used by inbound surfaces for early validation.
func (p *TreeSitterSyntaxParser) SupportsLanguage(language valueobject.Language) bool {
	return lookupGrammar(language.Name()) != nil
}

// convertNamedNode converts a tree-sitter node and its named descendants to
// domain SyntaxNodes, returning the node together with the subtree node
// count and maximum depth.
func convertNamedNode(node *tree_sitter.Node, source []byte, depth int) (*valueobject.SyntaxNode, int, int) {
	if node == nil || node.IsNull() {
		return nil, 0, depth - 1
	}

	childCount := int(node.NamedChildCount())
	syntaxNode := &valueobject.SyntaxNode{
		Type:          node.Type(),
		Text:          node.Content(source),
		NamedChildren: make([]*valueobject.SyntaxNode, 0, childCount),
	}

	nodeCount := 1
	maxDepth := depth

	for i := range childCount {
		child := node.NamedChild(uint32(i))
		childNode, childNodes, childDepth := convertNamedNode(child, source, depth+1)
		if childNode == nil {
			continue
		}
		syntaxNode.NamedChildren = append(syntaxNode.NamedChildren, childNode)
		nodeCount += childNodes
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
	}

	return syntaxNode, nodeCount, maxDepth
}
