package inbound

import (
	"codeparity/internal/domain/valueobject"
	"context"
)

// ComparisonHandler is the inbound port for structural comparison requests.
// Implementations answer whether two source snippets are equivalent under a
// language identifier; the error return is reserved for invalid arguments.
type ComparisonHandler interface {
	Compare(ctx context.Context, expectedText, actualText, languageID string) (valueobject.ComparisonResult, error)
}
