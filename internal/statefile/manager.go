package statefile

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"PadelTracker/internal/analyst"
	"PadelTracker/internal/recorder"
)

// Manager keeps the latest snapshot and its analysis on disk. It implements
// recorder.Recorder so the dashboard service feeds it like any other sink.
type Manager struct {
	mu       sync.Mutex
	state    *Saved
	version  uint64
	filePath string
	logger   *zap.Logger
}

var _ recorder.Recorder = (*Manager)(nil)

// NewManager creates a Manager, loading any previously saved state.
func NewManager(filePath string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load state file: %w", err)
	}
	if state.Snapshot != nil {
		if err := state.Snapshot.Validate(); err != nil {
			logger.Warn("discarding invalid saved snapshot", zap.String("path", filePath), zap.Error(err))
			state = &Saved{}
		}
	}
	return &Manager{state: state, filePath: filePath, logger: logger}, nil
}

// Saved returns a copy of the persisted state.
func (m *Manager) Saved() Saved {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// MarkRestored binds the saved content to the dashboard version it was
// restored as, so analyses of that version are saved next to it.
func (m *Manager) MarkRestored(version uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version > m.version {
		m.version = version
	}
}

// RecordSnapshot replaces the saved snapshot and drops its stale analysis.
// Snapshots older than the saved one are ignored; overlapping refreshes may
// record out of order.
func (m *Manager) RecordSnapshot(evt *recorder.SnapshotEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if evt.Version < m.version {
		return nil
	}
	m.version = evt.Version
	m.state.Snapshot = evt.Snapshot
	m.state.Analysis = nil
	return m.save()
}

// RecordAnalysis saves successful analyses of the saved snapshot only.
func (m *Manager) RecordAnalysis(evt *recorder.AnalysisEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if evt.Version != m.version || m.state.Snapshot == nil || evt.Outcome != string(analyst.OutcomeSucceeded) {
		return nil
	}
	result := evt.Result
	m.state.Analysis = &result
	return m.save()
}

func (m *Manager) Close() error { return nil }

func (m *Manager) save() error {
	if err := SaveState(m.filePath, m.state); err != nil {
		return fmt.Errorf("save state file: %w", err)
	}
	m.logger.Debug("state file saved", zap.String("path", m.filePath))
	return nil
}
