package valueobject

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyntaxNode is a node of a parsed syntax tree. Only semantically
// significant ("named") children are kept; purely syntactic tokens such as
// punctuation are dropped by the parsing adapter. Children are owned by
// their parent and nodes are never shared across trees.
type SyntaxNode struct {
	// Type is the grammatical category label, e.g. "function_declaration".
	Type string

	// Text is the exact source substring the node spans, including any
	// internal whitespace as originally written.
	Text string

	// NamedChildren holds the ordered, semantically significant children.
	NamedChildren []*SyntaxNode
}

// NamedChildCount returns the number of named children.
func (n *SyntaxNode) NamedChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.NamedChildren)
}

// NamedChild returns the i-th named child, or nil when i is out of range.
func (n *SyntaxNode) NamedChild(i int) *SyntaxNode {
	if n == nil || i < 0 || i >= len(n.NamedChildren) {
		return nil
	}
	return n.NamedChildren[i]
}

// ParseMetadata carries statistics about the parse that produced a tree.
type ParseMetadata struct {
	ParseDuration time.Duration
	NodeCount     int
	MaxDepth      int
}

// SyntaxTree represents a parsed source text as a value object. Trees are
// constructed fresh per comparison, traversed once and then discarded; no
// state survives across comparisons.
type SyntaxTree struct {
	language Language
	rootNode *SyntaxNode
	source   []byte
	metadata ParseMetadata
	metrics  *syntaxTreeMetrics
}

// syntaxTreeMetrics holds OTEL instruments for SyntaxTree construction.
type syntaxTreeMetrics struct {
	parseOperationsCounter metric.Int64Counter
	treeNodeCountHistogram metric.Int64Histogram
	treeDepthHistogram     metric.Int64Histogram
}

// NewSyntaxTree creates a new SyntaxTree value object with validation.
func NewSyntaxTree(
	ctx context.Context,
	language Language,
	rootNode *SyntaxNode,
	source []byte,
	metadata ParseMetadata,
) (*SyntaxTree, error) {
	if language.IsZero() {
		return nil, errors.New("language cannot be empty")
	}
	if rootNode == nil {
		return nil, errors.New("root node cannot be nil")
	}

	metrics, err := initSyntaxTreeMetrics()
	if err != nil {
		// Metrics are best-effort; a tree without instrumentation is still valid.
		metrics = nil
	}

	tree := &SyntaxTree{
		language: language,
		rootNode: rootNode,
		source:   source,
		metadata: metadata,
		metrics:  metrics,
	}

	if metrics != nil {
		attrs := metric.WithAttributes(attribute.String("language", language.Name()))
		metrics.parseOperationsCounter.Add(ctx, 1, attrs)
		metrics.treeNodeCountHistogram.Record(ctx, int64(metadata.NodeCount), attrs)
		metrics.treeDepthHistogram.Record(ctx, int64(metadata.MaxDepth), attrs)
	}

	return tree, nil
}

// Language returns the language the tree was parsed as.
func (t *SyntaxTree) Language() Language {
	return t.language
}

// RootNode returns the root node of the tree.
func (t *SyntaxTree) RootNode() *SyntaxNode {
	return t.rootNode
}

// Source returns the original source text.
func (t *SyntaxTree) Source() []byte {
	return t.source
}

// Metadata returns the parse statistics recorded for the tree.
func (t *SyntaxTree) Metadata() ParseMetadata {
	return t.metadata
}

// NodeCount walks the tree and counts nodes reachable through named children.
func (t *SyntaxTree) NodeCount() int {
	return countNodes(t.rootNode)
}

func countNodes(node *SyntaxNode) int {
	if node == nil {
		return 0
	}
	count := 1
	for _, child := range node.NamedChildren {
		count += countNodes(child)
	}
	return count
}

// MaxDepth walks the tree and returns its maximum depth, counting the root
// as depth 1.
func (t *SyntaxTree) MaxDepth() int {
	return measureDepth(t.rootNode, 1)
}

func measureDepth(node *SyntaxNode, depth int) int {
	if node == nil {
		return depth - 1
	}
	maxDepth := depth
	for _, child := range node.NamedChildren {
		if d := measureDepth(child, depth+1); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// ToSExpression renders the tree as an S-expression of node types, useful in
// logs and test failure output.
func (t *SyntaxTree) ToSExpression() string {
	return nodeToSExpression(t.rootNode)
}

func nodeToSExpression(node *SyntaxNode) string {
	if node == nil {
		return ""
	}
	if len(node.NamedChildren) == 0 {
		return fmt.Sprintf("(%s)", node.Type)
	}

	parts := make([]string, 0, len(node.NamedChildren)+1)
	parts = append(parts, node.Type)
	for _, child := range node.NamedChildren {
		parts = append(parts, nodeToSExpression(child))
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// initSyntaxTreeMetrics initializes OTEL instruments for tree construction.
func initSyntaxTreeMetrics() (*syntaxTreeMetrics, error) {
	meter := otel.Meter("codeparity/syntax_tree")

	parseOps, err := meter.Int64Counter(
		"syntax_tree_operations_total",
		metric.WithDescription("Total number of syntax trees constructed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse operations counter: %w", err)
	}

	nodeCountHist, err := meter.Int64Histogram(
		"syntax_tree_node_count",
		metric.WithDescription("Number of named nodes in constructed syntax trees"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create node count histogram: %w", err)
	}

	depthHist, err := meter.Int64Histogram(
		"syntax_tree_depth",
		metric.WithDescription("Depth of constructed syntax trees"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create depth histogram: %w", err)
	}

	return &syntaxTreeMetrics{
		parseOperationsCounter: parseOps,
		treeNodeCountHistogram: nodeCountHist,
		treeDepthHistogram:     depthHist,
	}, nil
}
