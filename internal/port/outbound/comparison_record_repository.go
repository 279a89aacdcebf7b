package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ComparisonRecord is an audit row for a completed comparison. Only
// outcome-level data is persisted; the compared sources never leave the
// process.
type ComparisonRecord struct {
	ID              uuid.UUID
	Language        string
	Equal           bool
	DifferenceCount int
	FallbackUsed    bool
	Duration        time.Duration
	CreatedAt       time.Time
}

// ComparisonRecordRepository persists comparison outcomes for auditing.
// Recording is optional infrastructure; comparison results never depend on
// it.
type ComparisonRecordRepository interface {
	Save(ctx context.Context, record ComparisonRecord) error
	FindRecentByLanguage(ctx context.Context, language string, limit int) ([]ComparisonRecord, error)
}
