package recorder

import (
	"time"

	"PadelTracker/internal/model"
)

// SnapshotEvent records one loaded market snapshot.
type SnapshotEvent struct {
	Version  uint64
	Snapshot *model.MarketData
}

// AnalysisEvent records one analysis run.
type AnalysisEvent struct {
	ID        string
	Version   uint64
	Model     string
	Outcome   string // "succeeded" or "failed"
	Result    model.AIAnalysisResult
	Error     string
	Timestamp time.Time
	Duration  time.Duration
}

// Recorder persists price and analysis history.
type Recorder interface {
	RecordSnapshot(evt *SnapshotEvent) error
	RecordAnalysis(evt *AnalysisEvent) error
	Close() error
}
