package service

import (
	"codeparity/internal/application/common/logging"
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/domain/valueobject"
	"codeparity/internal/port/outbound"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// ComparisonService is the top-level entry point of the equivalence oracle.
// It parses both inputs, compares the resulting trees node by node and
// degrades to a whitespace-normalized string comparison when no tree can be
// produced. Structural mismatches are returned as data; the only error the
// service surfaces is an invalid argument at the boundary, which makes
// Compare total over text inputs for any language identifier.
//
// The service holds no per-comparison state and is safe for concurrent use.
type ComparisonService struct {
	parser  outbound.SyntaxParser
	metrics *comparisonMetrics
}

// comparisonMetrics holds OTEL instruments for comparison operations.
type comparisonMetrics struct {
	comparisonsCounter   metric.Int64Counter
	differencesHistogram metric.Int64Histogram
	durationHistogram    metric.Float64Histogram
}

// NewComparisonService creates a ComparisonService backed by the given
// syntax parser.
func NewComparisonService(parser outbound.SyntaxParser) (*ComparisonService, error) {
	if parser == nil {
		return nil, errors.New("syntax parser cannot be nil")
	}

	metrics, err := initComparisonMetrics()
	if err != nil {
		// Metrics are best-effort and never fail a comparison.
		metrics = nil
	}

	return &ComparisonService{
		parser:  parser,
		metrics: metrics,
	}, nil
}

// Compare determines whether two source snippets are structurally
// equivalent under the given language identifier.
//
// Both parses run concurrently; they have no ordering dependency and both
// must complete before node comparison begins. If either parse fails for
// any reason the service switches to fallback mode: both texts are trimmed,
// whitespace runs are collapsed to single spaces and the results compared
// exactly, with a single generic notice on inequality. Parse error detail
// is never surfaced through the result.
//
// The returned error is non-nil only for invalid arguments (an empty or
// malformed language identifier); mismatched content is data, not an error.
func (s *ComparisonService) Compare(
	ctx context.Context,
	expectedText, actualText, languageID string,
) (valueobject.ComparisonResult, error) {
	start := time.Now()

	if strings.TrimSpace(languageID) == "" {
		return valueobject.ComparisonResult{}, errors.New("language identifier is required")
	}

	language, err := valueobject.NewLanguage(languageID)
	if err != nil {
		return valueobject.ComparisonResult{}, fmt.Errorf("invalid language identifier: %w", err)
	}

	// The comparison id ties the concurrent parse logs together; it never
	// appears in the result, which must be byte-identical across runs.
	ctx = logging.WithCorrelationID(ctx, uuid.New().String())

	var expectedTree, actualTree *valueobject.SyntaxTree

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		tree, parseErr := s.parser.Parse(groupCtx, []byte(expectedText), language)
		expectedTree = tree
		return parseErr
	})
	group.Go(func() error {
		tree, parseErr := s.parser.Parse(groupCtx, []byte(actualText), language)
		actualTree = tree
		return parseErr
	})

	if waitErr := group.Wait(); waitErr != nil {
		slogger.Debug(ctx, "Parse unavailable, falling back to string comparison", slogger.Fields{
			"language": language.Name(),
			"error":    waitErr.Error(),
		})
		result := s.compareFallback(expectedText, actualText, language)
		s.record(ctx, language, result, time.Since(start))
		return result, nil
	}

	differences := make([]string, 0)
	compareNodes(expectedTree.RootNode(), actualTree.RootNode(), valueobject.RootPath, 1, &differences)

	result := valueobject.NewComparisonResult(language, differences, false)
	s.record(ctx, language, result, time.Since(start))

	slogger.Info(ctx, "Comparison completed", slogger.Fields{
		"language":    language.Name(),
		"equal":       result.Equal,
		"differences": len(result.Differences),
		"duration":    time.Since(start).String(),
	})

	return result, nil
}

// compareFallback compares the raw texts with loose whitespace
// normalization. This is a deliberate degradation for languages without a
// grammar, not an error surface, so the notice stays generic.
func (s *ComparisonService) compareFallback(
	expectedText, actualText string,
	language valueobject.Language,
) valueobject.ComparisonResult {
	if collapseWhitespace(expectedText) == collapseWhitespace(actualText) {
		return valueobject.NewComparisonResult(language, nil, true)
	}

	notice := fmt.Sprintf(
		"AST comparison unavailable for language %q; texts differ as plain strings",
		language.Name())
	return valueobject.NewComparisonResult(language, []string{notice}, true)
}

// record emits comparison metrics when instruments are available.
func (s *ComparisonService) record(
	ctx context.Context,
	language valueobject.Language,
	result valueobject.ComparisonResult,
	duration time.Duration,
) {
	if s.metrics == nil {
		return
	}

	outcome := "different"
	if result.Equal {
		outcome = "equal"
	}
	mode := "ast"
	if result.FallbackUsed {
		mode = "fallback"
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language.Name()),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
	)

	s.metrics.comparisonsCounter.Add(ctx, 1, attrs)
	s.metrics.differencesHistogram.Record(ctx, int64(len(result.Differences)), attrs)
	s.metrics.durationHistogram.Record(ctx, duration.Seconds(), attrs)
}

// initComparisonMetrics initializes OTEL instruments for the service.
func initComparisonMetrics() (*comparisonMetrics, error) {
	meter := otel.Meter("codeparity/comparison")

	comparisons, err := meter.Int64Counter(
		"comparisons_total",
		metric.WithDescription("Total number of comparisons performed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comparisons counter: %w", err)
	}

	differences, err := meter.Int64Histogram(
		"comparison_differences",
		metric.WithDescription("Number of differences found per comparison"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create differences histogram: %w", err)
	}

	durations, err := meter.Float64Histogram(
		"comparison_duration_seconds",
		metric.WithDescription("Duration of comparison operations in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &comparisonMetrics{
		comparisonsCounter:   comparisons,
		differencesHistogram: differences,
		durationHistogram:    durations,
	}, nil
}
