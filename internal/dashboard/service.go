package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"PadelTracker/internal/analyst"
	"PadelTracker/internal/calculator"
	"PadelTracker/internal/model"
	"PadelTracker/internal/recorder"
)

var (
	ErrNoSnapshot = errors.New("no market snapshot loaded")
	ErrNoAnalysis = errors.New("no analysis for the current snapshot")
	ErrClosed     = errors.New("dashboard service is shutting down")
)

// DefaultAnalysisTimeout bounds one analysis request.
const DefaultAnalysisTimeout = 2 * time.Minute

// SnapshotSource yields validated market snapshots.
type SnapshotSource interface {
	Collect(ctx context.Context) (*model.MarketData, error)
}

// Analyzer produces a recommendation report; it must not fail.
type Analyzer interface {
	AnalyzeDetailed(ctx context.Context, data *model.MarketData) analyst.Report
}

// Service coordinates snapshot refreshes and analyses through the Store.
type Service struct {
	source   SnapshotSource
	analyzer Analyzer
	recorder recorder.Recorder
	store    *Store
	group    singleflight.Group
	logger   *zap.Logger

	// mu guards closed; work is only added to inflight while open.
	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup

	AnalysisTimeout time.Duration
}

// NewService creates a Service with an empty store.
func NewService(source SnapshotSource, a Analyzer, rec recorder.Recorder, logger *zap.Logger) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:          source,
		analyzer:        a,
		recorder:        rec,
		store:           NewStore(),
		logger:          logger,
		AnalysisTimeout: DefaultAnalysisTimeout,
	}
}

// Store exposes the underlying state container.
func (s *Service) Store() *Store { return s.store }

// State returns the current dashboard state.
func (s *Service) State() State { return s.store.State() }

// Refresh replaces the current snapshot wholesale. The previous analysis is
// discarded.
func (s *Service) Refresh(ctx context.Context) (*model.MarketData, error) {
	if !s.begin() {
		return nil, ErrClosed
	}
	defer s.inflight.Done()

	s.store.Dispatch(RefreshStarted{})
	snap, err := s.source.Collect(ctx)
	if err != nil {
		s.store.Dispatch(RefreshFailed{Err: err, At: time.Now()})
		return nil, fmt.Errorf("refresh market data: %w", err)
	}
	st := s.store.Dispatch(SnapshotLoaded{Snapshot: snap, At: time.Now()})

	if err := s.recorder.RecordSnapshot(&recorder.SnapshotEvent{Version: st.Version, Snapshot: snap}); err != nil {
		s.logger.Error("record snapshot", zap.Uint64("version", st.Version), zap.Error(err))
	}
	return snap, nil
}

// Restore loads previously persisted content without recording it again.
// A stored analysis is attached to the restored snapshot.
func (s *Service) Restore(snap *model.MarketData, analysis *model.AIAnalysisResult) error {
	if snap == nil {
		return ErrNoSnapshot
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	st := s.store.Dispatch(SnapshotLoaded{Snapshot: snap, At: time.Now()})
	if analysis != nil && analysis.Recommendation.Valid() {
		s.store.Dispatch(AnalysisCompleted{Version: st.Version, Result: *analysis, At: time.Now()})
	}
	return nil
}

// Snapshot returns the current snapshot.
func (s *Service) Snapshot() (*model.MarketData, error) {
	st := s.store.State()
	if st.Snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return st.Snapshot, nil
}

// Analyze enriches the current snapshot with a recommendation. Concurrent
// calls for the same snapshot share one outbound request. Once issued, the
// request is not cancelled by the caller going away.
func (s *Service) Analyze(ctx context.Context) (model.AIAnalysisResult, error) {
	st := s.store.State()
	if st.Snapshot == nil {
		return model.AIAnalysisResult{}, ErrNoSnapshot
	}
	version, snap := st.Version, st.Snapshot
	if !s.begin() {
		return model.AIAnalysisResult{}, ErrClosed
	}
	defer s.inflight.Done()

	v, _, shared := s.group.Do(strconv.FormatUint(version, 10), func() (any, error) {
		s.store.Dispatch(AnalysisStarted{Version: version})

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.AnalysisTimeout)
		defer cancel()
		report := s.analyzer.AnalyzeDetailed(runCtx, snap)

		next := s.store.Dispatch(AnalysisCompleted{Version: version, Result: report.Result, At: time.Now()})
		if next.Version != version {
			s.logger.Info("dropping analysis of superseded snapshot",
				zap.String("analysis_id", report.ID),
				zap.Uint64("version", version),
				zap.Uint64("current_version", next.Version))
		}
		s.record(version, report)
		return report.Result, nil
	})
	if shared {
		s.logger.Debug("analysis request coalesced", zap.Uint64("version", version))
	}
	return v.(model.AIAnalysisResult), nil
}

// Drain stops accepting refreshes and analyses and waits for the running
// ones to finish recording, or for ctx to end.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.inflight.Add(1)
	return true
}

// Analysis returns the analysis of the current snapshot, if any.
func (s *Service) Analysis() (model.AIAnalysisResult, error) {
	st := s.store.State()
	if st.Snapshot == nil {
		return model.AIAnalysisResult{}, ErrNoSnapshot
	}
	if st.Analysis == nil || st.AnalysisVersion != st.Version {
		return model.AIAnalysisResult{}, ErrNoAnalysis
	}
	return *st.Analysis, nil
}

// Competitors returns the cheapest-first vendor list of the current snapshot.
func (s *Service) Competitors() (CompetitorList, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return CompetitorList{}, err
	}
	return BuildCompetitorList(snap), nil
}

// Chart returns the merged per-day price series of the current snapshot.
func (s *Service) Chart() ([]calculator.ChartRow, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return calculator.MergeHistories(snap.Competitors), nil
}

func (s *Service) record(version uint64, report analyst.Report) {
	evt := &recorder.AnalysisEvent{
		ID:        report.ID,
		Version:   version,
		Model:     report.Model,
		Outcome:   string(report.Outcome),
		Result:    report.Result,
		Timestamp: report.StartedAt,
		Duration:  report.Duration,
	}
	if report.Err != nil {
		evt.Error = report.Err.Error()
	}
	if err := s.recorder.RecordAnalysis(evt); err != nil {
		s.logger.Error("record analysis", zap.String("analysis_id", report.ID), zap.Error(err))
	}
}
