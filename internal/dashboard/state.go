package dashboard

import (
	"time"

	"PadelTracker/internal/model"
)

// State is an immutable view of the dashboard. Reduce never modifies its
// input; callers get independent copies.
type State struct {
	Snapshot *model.MarketData
	// Version increments on every loaded snapshot.
	Version uint64

	Analysis        *model.AIAnalysisResult
	AnalysisVersion uint64
	// AnalyzingVersion is the snapshot version of the request in flight, 0 when idle.
	AnalyzingVersion uint64

	Loading   bool
	LastError string
	UpdatedAt time.Time
}

// Analyzing reports whether an analysis for the current snapshot is in flight.
func (s State) Analyzing() bool {
	return s.AnalyzingVersion != 0 && s.AnalyzingVersion == s.Version
}

// Action is a state transition request.
type Action interface {
	apply(State) State
}

type RefreshStarted struct{}

type SnapshotLoaded struct {
	Snapshot *model.MarketData
	At       time.Time
}

type RefreshFailed struct {
	Err error
	At  time.Time
}

type AnalysisStarted struct {
	Version uint64
}

type AnalysisCompleted struct {
	Version uint64
	Result  model.AIAnalysisResult
	At      time.Time
}

// Reduce applies a to s and returns the next state.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (RefreshStarted) apply(s State) State {
	s.Loading = true
	return s
}

// A new snapshot invalidates any analysis of the previous one.
func (a SnapshotLoaded) apply(s State) State {
	s.Snapshot = a.Snapshot
	s.Version++
	s.Analysis = nil
	s.AnalysisVersion = 0
	s.AnalyzingVersion = 0
	s.Loading = false
	s.LastError = ""
	s.UpdatedAt = a.At
	return s
}

func (a RefreshFailed) apply(s State) State {
	s.Loading = false
	if a.Err != nil {
		s.LastError = a.Err.Error()
	}
	s.UpdatedAt = a.At
	return s
}

func (a AnalysisStarted) apply(s State) State {
	if a.Version == s.Version {
		s.AnalyzingVersion = a.Version
	}
	return s
}

// Results for a superseded snapshot are dropped; among results for the
// current snapshot the last one applied wins.
func (a AnalysisCompleted) apply(s State) State {
	if a.Version != s.Version {
		return s
	}
	result := a.Result
	s.Analysis = &result
	s.AnalysisVersion = a.Version
	s.AnalyzingVersion = 0
	s.UpdatedAt = a.At
	return s
}
