package service

import (
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/domain/valueobject"
	"codeparity/internal/port/inbound"
	"codeparity/internal/port/outbound"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RecordingComparisonHandler decorates a ComparisonHandler with best-effort
// outcome persistence. Recording failures are logged and swallowed; the
// comparison result is authoritative and never depends on the store.
type RecordingComparisonHandler struct {
	inner   inbound.ComparisonHandler
	records outbound.ComparisonRecordRepository
}

// NewRecordingComparisonHandler wraps a handler with outcome recording.
func NewRecordingComparisonHandler(
	inner inbound.ComparisonHandler,
	records outbound.ComparisonRecordRepository,
) (*RecordingComparisonHandler, error) {
	if inner == nil {
		return nil, errors.New("comparison handler cannot be nil")
	}
	if records == nil {
		return nil, errors.New("comparison record repository cannot be nil")
	}

	return &RecordingComparisonHandler{
		inner:   inner,
		records: records,
	}, nil
}

// Compare delegates to the wrapped handler and records the outcome.
func (h *RecordingComparisonHandler) Compare(
	ctx context.Context,
	expectedText, actualText, languageID string,
) (valueobject.ComparisonResult, error) {
	start := time.Now()

	result, err := h.inner.Compare(ctx, expectedText, actualText, languageID)
	if err != nil {
		// Rejected arguments produce no outcome worth auditing.
		return result, err
	}

	record := outbound.ComparisonRecord{
		ID:              uuid.New(),
		Language:        result.Language,
		Equal:           result.Equal,
		DifferenceCount: len(result.Differences),
		FallbackUsed:    result.FallbackUsed,
		Duration:        time.Since(start),
		CreatedAt:       time.Now().UTC(),
	}

	if saveErr := h.records.Save(ctx, record); saveErr != nil {
		slogger.ErrorWithError(ctx, saveErr, "Failed to record comparison outcome", slogger.Fields{
			"record_id": record.ID.String(),
			"language":  record.Language,
		})
	}

	return result, nil
}
